package user

import (
	"context"
	"time"

	errors "github.com/frahmantamala/workforce-attendance/internal"
	userDatamodel "github.com/frahmantamala/workforce-attendance/internal/core/datamodel/user"
	"github.com/frahmantamala/workforce-attendance/internal/employment"
	"github.com/frahmantamala/workforce-attendance/internal/permission"
)

// User is a point-in-time snapshot of an employee together with everything
// the resolvers need: role assignments, individual grants, employment
// history and the assigned schedule.
type User struct {
	ID                int64              `json:"id"`
	Email             string             `json:"email"`
	Name              string             `json:"name"`
	PasswordHash      string             `json:"-"`
	Department        string             `json:"department"`
	IsActive          bool               `json:"is_active"`
	RoleIDs           []string           `json:"role_ids"`
	Grants            permission.Grants  `json:"-"`
	EmploymentHistory employment.History `json:"employment_history"`
	ScheduleID        *int64             `json:"schedule_id,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

func (u *User) AssignedRoleIDs() []string {
	if u == nil {
		return nil
	}
	return u.RoleIDs
}

func (u *User) IndividualGrants() permission.Grants {
	if u == nil {
		return nil
	}
	return u.Grants
}

func (u *User) ActorID() int64 {
	if u == nil {
		return 0
	}
	return u.ID
}

func (u *User) EmploymentStatusOn(date time.Time, loc *time.Location) employment.Status {
	if u == nil {
		return employment.StatusPendingStart
	}
	return u.EmploymentHistory.StatusOn(date, loc)
}

func (u *User) IsEmployedOn(date time.Time, loc *time.Location) bool {
	return employment.IsEmployed(u.EmploymentStatusOn(date, loc))
}

var ErrNotFound = errors.ErrUserNotFound

// Repository returns fresh snapshots on every call.
type Repository interface {
	GetByID(ctx context.Context, userID int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
}

type ctxKey string

const contextUserKey ctxKey = "user"

func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, contextUserKey, u)
}

func FromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(contextUserKey).(*User)
	return u, ok && u != nil
}

// ActorFromContext adapts FromContext to permission.ActorFunc.
func ActorFromContext(ctx context.Context) (permission.Actor, bool) {
	u, ok := FromContext(ctx)
	if !ok {
		return nil, false
	}
	return u, true
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Department:   u.Department,
		IsActive:     u.IsActive,
		ScheduleID:   u.ScheduleID,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
		RoleIDs:      []string{},
		Grants:       permission.Grants{},
	}
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Department:   u.Department,
		IsActive:     u.IsActive,
		ScheduleID:   u.ScheduleID,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// FromDataModelWithRelations assembles the aggregate from its rows.
func FromDataModelWithRelations(u *userDatamodel.User, roles []userDatamodel.UserRole, grants []userDatamodel.UserGrant, events []userDatamodel.EmploymentEvent) *User {
	domainUser := FromDataModel(u)
	for _, r := range roles {
		domainUser.RoleIDs = append(domainUser.RoleIDs, r.RoleID)
	}
	for _, g := range grants {
		domainUser.Grants.Merge(permission.Grants{g.PermissionID: permission.SplitActions(g.Actions)})
	}
	domainUser.EmploymentHistory = make(employment.History, 0, len(events))
	for _, e := range events {
		domainUser.EmploymentHistory = append(domainUser.EmploymentHistory, employment.Event{
			Status:        employment.Status(e.Status),
			EffectiveDate: e.EffectiveDate,
		})
	}
	return domainUser
}
