// Package seed loads YAML fixtures describing the permission catalog,
// schedules, users and their time off, and writes them to the database.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/frahmantamala/workforce-attendance/internal/core/common/dates"
	permissionDatamodel "github.com/frahmantamala/workforce-attendance/internal/core/datamodel/permission"
	timeoffDatamodel "github.com/frahmantamala/workforce-attendance/internal/core/datamodel/timeoff"
	userDatamodel "github.com/frahmantamala/workforce-attendance/internal/core/datamodel/user"
	"github.com/frahmantamala/workforce-attendance/internal/employment"
	"github.com/frahmantamala/workforce-attendance/internal/permission"
	"github.com/frahmantamala/workforce-attendance/internal/timeoff"
)

type Fixtures struct {
	Permissions []PermissionFixture `yaml:"permissions"`
	Roles       []RoleFixture       `yaml:"roles"`
	Schedules   []ScheduleFixture   `yaml:"schedules"`
	Users       []UserFixture       `yaml:"users"`
	Holidays    []HolidayFixture    `yaml:"holidays"`
	ClosingDays []ClosingFixture    `yaml:"closing_days"`
}

type PermissionFixture struct {
	ID      string   `yaml:"id"`
	Module  string   `yaml:"module"`
	Section string   `yaml:"section"`
	Actions []string `yaml:"actions"`
}

type RoleFixture struct {
	ID     string              `yaml:"id"`
	Name   string              `yaml:"name"`
	Grants map[string][]string `yaml:"grants"`
}

type ScheduleFixture struct {
	Name string               `yaml:"name"`
	Days []ScheduleDayFixture `yaml:"days"`
}

type ScheduleDayFixture struct {
	Weekday          string `yaml:"weekday"`
	LabouringMinutes int    `yaml:"labouring_minutes"`
	BreakMinutes     int    `yaml:"break_minutes"`
}

type UserFixture struct {
	Email      string              `yaml:"email"`
	Name       string              `yaml:"name"`
	Password   string              `yaml:"password"`
	Department string              `yaml:"department"`
	Inactive   bool                `yaml:"inactive"`
	Schedule   string              `yaml:"schedule"`
	Roles      []string            `yaml:"roles"`
	Grants     map[string][]string `yaml:"grants"`
	Employment []EmploymentFixture `yaml:"employment"`
	Vacations  []AbsenceFixture    `yaml:"vacations"`
	Leaves     []AbsenceFixture    `yaml:"leaves"`
}

type EmploymentFixture struct {
	Status    string `yaml:"status"`
	Effective string `yaml:"effective"`
}

type AbsenceFixture struct {
	Start  string `yaml:"start"`
	End    string `yaml:"end"`
	Status string `yaml:"status"`
	Reason string `yaml:"reason"`
}

type HolidayFixture struct {
	Date string `yaml:"date"`
	Name string `yaml:"name"`
}

type ClosingFixture struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
	Name  string `yaml:"name"`
}

// PasswordHasher turns a fixture password into the stored hash.
type PasswordHasher func(password string) (string, error)

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday, "friday": time.Friday,
	"saturday": time.Saturday,
}

func LoadFile(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Fixtures, error) {
	var fx Fixtures
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	if err := fx.Validate(); err != nil {
		return nil, err
	}
	return &fx, nil
}

// Validate checks references and enumerations before anything is written.
func (fx *Fixtures) Validate() error {
	var errs []error

	roles := map[string]bool{}
	for _, r := range fx.Roles {
		roles[r.ID] = true
	}
	schedules := map[string]bool{}
	for _, s := range fx.Schedules {
		schedules[s.Name] = true
		for _, d := range s.Days {
			if _, ok := weekdays[d.Weekday]; !ok {
				errs = append(errs, fmt.Errorf("schedule %q: unknown weekday %q", s.Name, d.Weekday))
			}
		}
	}

	for _, u := range fx.Users {
		if u.Email == "" || u.Password == "" {
			errs = append(errs, fmt.Errorf("user %q: email and password are required", u.Email))
		}
		if u.Schedule != "" && !schedules[u.Schedule] {
			errs = append(errs, fmt.Errorf("user %q: unknown schedule %q", u.Email, u.Schedule))
		}
		for _, r := range u.Roles {
			if !roles[r] {
				errs = append(errs, fmt.Errorf("user %q: unknown role %q", u.Email, r))
			}
		}
		for _, e := range u.Employment {
			if !employment.Status(e.Status).Valid() {
				errs = append(errs, fmt.Errorf("user %q: unknown employment status %q", u.Email, e.Status))
			}
			if _, err := dates.Parse(e.Effective, time.UTC); err != nil {
				errs = append(errs, fmt.Errorf("user %q: %w", u.Email, err))
			}
		}
		for _, a := range append(append([]AbsenceFixture{}, u.Vacations...), u.Leaves...) {
			if a.Status != "" && !timeoff.RequestStatus(a.Status).Valid() {
				errs = append(errs, fmt.Errorf("user %q: unknown absence status %q", u.Email, a.Status))
			}
		}
	}

	return errors.Join(errs...)
}

// Apply writes the fixtures in one transaction. Catalog rows and users are
// upserted by their natural keys so the seed can be re-run; clear empties
// every seeded table first.
func Apply(ctx context.Context, db *gorm.DB, fx *Fixtures, hash PasswordHasher, clear bool) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if clear {
			if err := clearAll(tx); err != nil {
				return err
			}
		}
		if err := applyCatalog(tx, fx); err != nil {
			return err
		}
		scheduleIDs, err := applySchedules(tx, fx)
		if err != nil {
			return err
		}
		if err := applyUsers(tx, fx, scheduleIDs, hash); err != nil {
			return err
		}
		return applyCalendar(tx, fx)
	})
}

func clearAll(tx *gorm.DB) error {
	tables := []string{
		"timesheet_breaks", "timesheets", "vacations", "leaves_of_absence",
		"employment_events", "user_grants", "user_roles", "users",
		"schedule_days", "schedules", "public_holidays", "closing_days",
		"role_grants", "roles", "permission_definitions",
	}
	for _, t := range tables {
		if err := tx.Exec("DELETE FROM " + t).Error; err != nil {
			return fmt.Errorf("clear %s: %w", t, err)
		}
	}
	return nil
}

func actions(raw []string) string {
	return permission.JoinActions(permission.ParseActions(raw))
}

func applyCatalog(tx *gorm.DB, fx *Fixtures) error {
	for _, p := range fx.Permissions {
		row := permissionDatamodel.PermissionDefinition{ID: p.ID, ModuleID: p.Module, SectionID: p.Section, Actions: actions(p.Actions)}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
			return fmt.Errorf("seed permission %s: %w", p.ID, err)
		}
	}

	for _, r := range fx.Roles {
		role := permissionDatamodel.Role{ID: r.ID, Name: r.Name}
		if err := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoUpdates: clause.AssignmentColumns([]string{"name"})}).Create(&role).Error; err != nil {
			return fmt.Errorf("seed role %s: %w", r.ID, err)
		}
		for pid, acts := range r.Grants {
			grant := permissionDatamodel.RoleGrant{RoleID: r.ID, PermissionID: pid, Actions: actions(acts)}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "role_id"}, {Name: "permission_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"actions"}),
			}).Create(&grant).Error
			if err != nil {
				return fmt.Errorf("seed grant %s/%s: %w", r.ID, pid, err)
			}
		}
	}
	return nil
}

func applySchedules(tx *gorm.DB, fx *Fixtures) (map[string]int64, error) {
	ids := make(map[string]int64, len(fx.Schedules))
	for _, s := range fx.Schedules {
		var row timeoffDatamodel.Schedule
		err := tx.Where("name = ?", s.Name).First(&row).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			row = timeoffDatamodel.Schedule{Name: s.Name}
			if err := tx.Create(&row).Error; err != nil {
				return nil, fmt.Errorf("seed schedule %s: %w", s.Name, err)
			}
		case err != nil:
			return nil, fmt.Errorf("find schedule %s: %w", s.Name, err)
		}

		if err := tx.Where("schedule_id = ?", row.ID).Delete(&timeoffDatamodel.ScheduleDay{}).Error; err != nil {
			return nil, fmt.Errorf("reset schedule %s: %w", s.Name, err)
		}
		for _, d := range s.Days {
			day := timeoffDatamodel.ScheduleDay{
				ScheduleID:       row.ID,
				DayOfWeek:        int(weekdays[d.Weekday]),
				LabouringMinutes: d.LabouringMinutes,
				BreakMinutes:     d.BreakMinutes,
			}
			if err := tx.Create(&day).Error; err != nil {
				return nil, fmt.Errorf("seed schedule %s %s: %w", s.Name, d.Weekday, err)
			}
		}
		ids[s.Name] = row.ID
	}
	return ids, nil
}

func applyUsers(tx *gorm.DB, fx *Fixtures, scheduleIDs map[string]int64, hash PasswordHasher) error {
	for _, u := range fx.Users {
		passwordHash, err := hash(u.Password)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", u.Email, err)
		}

		var row userDatamodel.User
		err = tx.Where("email = ?", u.Email).First(&row).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("find user %s: %w", u.Email, err)
		}
		row.Email = u.Email
		row.Name = u.Name
		row.PasswordHash = passwordHash
		row.Department = u.Department
		row.IsActive = !u.Inactive
		row.ScheduleID = nil
		if id, ok := scheduleIDs[u.Schedule]; ok {
			row.ScheduleID = &id
		}
		if row.ID == 0 {
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("seed user %s: %w", u.Email, err)
			}
		}
		// explicit columns so false and nil are written too
		err = tx.Model(&row).
			Select("name", "password_hash", "department", "is_active", "schedule_id").
			Updates(map[string]any{
				"name":          u.Name,
				"password_hash": passwordHash,
				"department":    u.Department,
				"is_active":     !u.Inactive,
				"schedule_id":   row.ScheduleID,
			}).Error
		if err != nil {
			return fmt.Errorf("seed user %s: %w", u.Email, err)
		}

		if err := replaceUserRows(tx, row.ID, u); err != nil {
			return fmt.Errorf("seed user %s: %w", u.Email, err)
		}
	}
	return nil
}

func replaceUserRows(tx *gorm.DB, userID int64, u UserFixture) error {
	for _, model := range []any{&userDatamodel.UserRole{}, &userDatamodel.UserGrant{}, &userDatamodel.EmploymentEvent{}, &timeoffDatamodel.Vacation{}, &timeoffDatamodel.LeaveOfAbsence{}} {
		if err := tx.Where("user_id = ?", userID).Delete(model).Error; err != nil {
			return err
		}
	}

	for _, r := range u.Roles {
		if err := tx.Create(&userDatamodel.UserRole{UserID: userID, RoleID: r}).Error; err != nil {
			return err
		}
	}
	for pid, acts := range u.Grants {
		if err := tx.Create(&userDatamodel.UserGrant{UserID: userID, PermissionID: pid, Actions: actions(acts)}).Error; err != nil {
			return err
		}
	}
	for _, e := range u.Employment {
		effective, _ := dates.Parse(e.Effective, time.UTC)
		if err := tx.Create(&userDatamodel.EmploymentEvent{UserID: userID, Status: e.Status, EffectiveDate: effective}).Error; err != nil {
			return err
		}
	}
	for _, v := range u.Vacations {
		start, end, err := absenceRange(v)
		if err != nil {
			return err
		}
		row := timeoffDatamodel.Vacation{UserID: userID, StartDate: start, EndDate: end, Status: absenceStatus(v), Reason: v.Reason}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	for _, l := range u.Leaves {
		start, end, err := absenceRange(l)
		if err != nil {
			return err
		}
		row := timeoffDatamodel.LeaveOfAbsence{UserID: userID, StartDate: start, EndDate: end, Status: absenceStatus(l), Reason: l.Reason}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

func applyCalendar(tx *gorm.DB, fx *Fixtures) error {
	for _, h := range fx.Holidays {
		date, err := dates.Parse(h.Date, time.UTC)
		if err != nil {
			return fmt.Errorf("holiday %q: %w", h.Name, err)
		}
		row := timeoffDatamodel.PublicHoliday{Date: date, Name: h.Name}
		err = tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "date"}}, DoUpdates: clause.AssignmentColumns([]string{"name"})}).Create(&row).Error
		if err != nil {
			return fmt.Errorf("seed holiday %s: %w", h.Date, err)
		}
	}

	for _, c := range fx.ClosingDays {
		start, err := dates.Parse(c.Start, time.UTC)
		if err != nil {
			return fmt.Errorf("closing %q: %w", c.Name, err)
		}
		end, err := dates.Parse(c.End, time.UTC)
		if err != nil {
			return fmt.Errorf("closing %q: %w", c.Name, err)
		}
		var existing int64
		if err := tx.Model(&timeoffDatamodel.ClosingDay{}).Where("start_date = ? AND end_date = ?", start, end).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			continue
		}
		if err := tx.Create(&timeoffDatamodel.ClosingDay{StartDate: start, EndDate: end, Name: c.Name}).Error; err != nil {
			return fmt.Errorf("seed closing %s: %w", c.Name, err)
		}
	}
	return nil
}

func absenceRange(a AbsenceFixture) (time.Time, *time.Time, error) {
	start, err := dates.Parse(a.Start, time.UTC)
	if err != nil {
		return time.Time{}, nil, err
	}
	if a.End == "" {
		return start, nil, nil
	}
	end, err := dates.Parse(a.End, time.UTC)
	if err != nil {
		return time.Time{}, nil, err
	}
	return start, &end, nil
}

func absenceStatus(a AbsenceFixture) string {
	if a.Status == "" {
		return string(timeoff.StatusApproved)
	}
	return a.Status
}
