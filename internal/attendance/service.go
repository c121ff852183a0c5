package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/frahmantamala/workforce-attendance/internal"
	"github.com/frahmantamala/workforce-attendance/internal/core/common/dates"
	"github.com/frahmantamala/workforce-attendance/internal/permission"
	"github.com/frahmantamala/workforce-attendance/internal/timeoff"
	"github.com/frahmantamala/workforce-attendance/internal/timesheet"
	"github.com/frahmantamala/workforce-attendance/internal/user"
)

type TimesheetLister interface {
	ListByUser(ctx context.Context, userID int64, within dates.Range) ([]*timesheet.Timesheet, error)
}

type ServiceAPI interface {
	Report(ctx context.Context, acting *user.User, userID int64, from, to time.Time) (*Report, error)
}

// Service loads a point-in-time snapshot of every record a report needs and
// hands it to the Resolver.
type Service struct {
	users        user.Repository
	timeoff      timeoff.RepositoryAPI
	timesheets   TimesheetLister
	permissions  *permission.Resolver
	resolver     *Resolver
	maxRangeDays int
	logger       *slog.Logger
}

func NewService(users user.Repository, timeoffRepo timeoff.RepositoryAPI, timesheets TimesheetLister, permissions *permission.Resolver, resolver *Resolver, maxRangeDays int, logger *slog.Logger) *Service {
	return &Service{
		users:        users,
		timeoff:      timeoffRepo,
		timesheets:   timesheets,
		permissions:  permissions,
		resolver:     resolver,
		maxRangeDays: maxRangeDays,
		logger:       logger,
	}
}

func (s *Service) Report(ctx context.Context, acting *user.User, userID int64, from, to time.Time) (*Report, error) {
	loc := s.resolver.Location
	from, to = dates.Day(from, loc), dates.Day(to, loc)
	if to.Before(from) {
		return nil, apperrors.ErrInvalidRange
	}
	if s.maxRangeDays > 0 && dates.DaysBetween(from, to, loc) > s.maxRangeDays {
		return nil, apperrors.ErrRangeTooLarge
	}

	namespace := timesheet.PermissionOthers
	if acting.ActorID() == userID {
		namespace = timesheet.PermissionOwns
	}
	if !s.permissions.HasPermission(acting, namespace, permission.ActionRead) {
		s.logger.Warn("attendance report denied", "actor_id", acting.ActorID(), "user_id", userID)
		return nil, apperrors.ErrForbidden
	}

	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	dc, err := s.dayContext(ctx, target, dates.NewRange(from, &to))
	if err != nil {
		return nil, err
	}

	timesheets, err := s.timesheets.ListByUser(ctx, userID, dates.NewRange(from, &to))
	if err != nil {
		return nil, fmt.Errorf("failed to list timesheets: %w", err)
	}

	return s.resolver.ResolveRange(target, from, to, timesheets, dc)
}

func (s *Service) dayContext(ctx context.Context, target *user.User, within dates.Range) (DayContext, error) {
	var (
		dc  DayContext
		err error
	)

	if dc.Vacations, err = s.timeoff.ListVacations(ctx, target.ID, within); err != nil {
		return dc, fmt.Errorf("failed to list vacations: %w", err)
	}
	if dc.Leaves, err = s.timeoff.ListLeaves(ctx, target.ID, within); err != nil {
		return dc, fmt.Errorf("failed to list leaves of absence: %w", err)
	}
	if dc.Holidays, err = s.timeoff.ListHolidays(ctx, within); err != nil {
		return dc, fmt.Errorf("failed to list public holidays: %w", err)
	}
	if dc.ClosingDays, err = s.timeoff.ListClosingDays(ctx, within); err != nil {
		return dc, fmt.Errorf("failed to list closing days: %w", err)
	}

	if target.ScheduleID == nil {
		s.logger.Warn("user has no schedule, every day resolves off schedule", "user_id", target.ID)
		return dc, nil
	}
	dc.Schedule, err = s.timeoff.GetSchedule(ctx, *target.ScheduleID)
	if errors.Is(err, timeoff.ErrScheduleNotFound) {
		s.logger.Warn("assigned schedule not found", "user_id", target.ID, "schedule_id", *target.ScheduleID)
		return dc, nil
	}
	if err != nil {
		return dc, fmt.Errorf("failed to get schedule: %w", err)
	}
	return dc, nil
}
