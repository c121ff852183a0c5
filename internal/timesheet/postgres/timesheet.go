package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/workforce-attendance/internal/core/common/dates"
	timesheetDatamodel "github.com/frahmantamala/workforce-attendance/internal/core/datamodel/timesheet"
	"github.com/frahmantamala/workforce-attendance/internal/timesheet"
	"gorm.io/gorm"
)

// TimesheetRepository relies on the unique (user_id, date) index; the *gorm.DB
// must be opened with TranslateError so violations surface as
// gorm.ErrDuplicatedKey.
type TimesheetRepository struct {
	db *gorm.DB
}

func NewTimesheetRepository(db *gorm.DB) timesheet.RepositoryAPI {
	return &TimesheetRepository{db: db}
}

// dateOnly drops the time of day and zone so the date column compares the
// same on every driver.
func dateOnly(t time.Time) time.Time {
	return dates.Day(t, time.UTC)
}

func (r *TimesheetRepository) GetByID(ctx context.Context, id int64) (*timesheet.Timesheet, error) {
	var row timesheetDatamodel.Timesheet
	err := r.db.WithContext(ctx).
		Preload("Breaks", func(db *gorm.DB) *gorm.DB { return db.Order("start_at ASC") }).
		Where("id = ?", id).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, timesheet.ErrNotFound
		}
		return nil, err
	}
	return timesheet.FromDataModel(&row), nil
}

func (r *TimesheetRepository) GetByUserAndDate(ctx context.Context, userID int64, date time.Time) (*timesheet.Timesheet, error) {
	var row timesheetDatamodel.Timesheet
	err := r.db.WithContext(ctx).
		Preload("Breaks", func(db *gorm.DB) *gorm.DB { return db.Order("start_at ASC") }).
		Where("user_id = ? AND date = ?", userID, dateOnly(date)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, timesheet.ErrNotFound
		}
		return nil, err
	}
	return timesheet.FromDataModel(&row), nil
}

func (r *TimesheetRepository) ListByUser(ctx context.Context, userID int64, within dates.Range) ([]*timesheet.Timesheet, error) {
	q := r.db.WithContext(ctx).
		Preload("Breaks", func(db *gorm.DB) *gorm.DB { return db.Order("start_at ASC") }).
		Where("user_id = ? AND date >= ?", userID, dateOnly(within.Start))
	if within.End != nil {
		q = q.Where("date <= ?", dateOnly(*within.End))
	}

	var rows []*timesheetDatamodel.Timesheet
	if err := q.Order("date ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]*timesheet.Timesheet, 0, len(rows))
	for _, row := range rows {
		out = append(out, timesheet.FromDataModel(row))
	}
	return out, nil
}

func (r *TimesheetRepository) Create(ctx context.Context, ts *timesheet.Timesheet) error {
	ts.Date = dateOnly(ts.Date)
	row := timesheet.ToDataModel(ts)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return timesheet.ErrDuplicate
		}
		return err
	}
	ts.ID = row.ID
	ts.CreatedAt = row.CreatedAt
	ts.UpdatedAt = row.UpdatedAt
	return nil
}

// Update saves the timesheet and replaces its breaks.
func (r *TimesheetRepository) Update(ctx context.Context, ts *timesheet.Timesheet) error {
	ts.UpdatedAt = time.Now()
	row := timesheet.ToDataModel(ts)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Breaks").Save(row).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return timesheet.ErrDuplicate
			}
			return err
		}
		if err := tx.Where("timesheet_id = ?", ts.ID).Delete(&timesheetDatamodel.TimesheetBreak{}).Error; err != nil {
			return err
		}
		if len(row.Breaks) == 0 {
			return nil
		}
		return tx.Create(&row.Breaks).Error
	})
}

func (r *TimesheetRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("timesheet_id = ?", id).Delete(&timesheetDatamodel.TimesheetBreak{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&timesheetDatamodel.Timesheet{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return timesheet.ErrNotFound
		}
		return nil
	})
}
