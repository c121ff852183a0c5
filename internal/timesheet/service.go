package timesheet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/workforce-attendance/internal/core/common/dates"
	"github.com/frahmantamala/workforce-attendance/internal/core/events"
	"github.com/frahmantamala/workforce-attendance/internal/permission"
	"github.com/frahmantamala/workforce-attendance/internal/timeoff"
	"github.com/frahmantamala/workforce-attendance/internal/user"
)

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type ScheduleFinder interface {
	GetSchedule(ctx context.Context, id int64) (*timeoff.Schedule, error)
}

type ServiceAPI interface {
	Get(ctx context.Context, acting *user.User, id int64) (*Timesheet, error)
	List(ctx context.Context, acting *user.User, userID int64, within dates.Range) ([]*Timesheet, error)
	Actions(ctx context.Context, acting *user.User, id int64) (*Actions, error)
	DayActions(ctx context.Context, acting *user.User, userID int64, date time.Time) (*Actions, error)
	Create(ctx context.Context, acting *user.User, dto CreateTimesheetDTO) (*Timesheet, error)
	Update(ctx context.Context, acting *user.User, id int64, dto UpdateTimesheetDTO) (*Timesheet, error)
	Delete(ctx context.Context, acting *user.User, id int64) error
	Approve(ctx context.Context, acting *user.User, id int64, dto ReviewDTO) (*Timesheet, error)
	RequestChanges(ctx context.Context, acting *user.User, id int64, dto ReviewDTO) (*Timesheet, error)
	Reject(ctx context.Context, acting *user.User, id int64, dto ReviewDTO) (*Timesheet, error)
	Resubmit(ctx context.Context, acting *user.User, id int64) (*Timesheet, error)
}

// Service runs the timesheet approval workflow. Every operation works on a
// fresh snapshot of the timesheet and its owner and derives the permitted
// actions from it before changing anything.
type Service struct {
	repo      RepositoryAPI
	users     user.Repository
	schedules ScheduleFinder
	resolver  *permission.Resolver
	publisher EventPublisher
	loc       *time.Location
	now       func() time.Time
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, users user.Repository, schedules ScheduleFinder, resolver *permission.Resolver, publisher EventPublisher, loc *time.Location, logger *slog.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo:      repo,
		users:     users,
		schedules: schedules,
		resolver:  resolver,
		publisher: publisher,
		loc:       loc,
		now:       time.Now,
		logger:    logger,
	}
}

// WithClock replaces the clock used for review timestamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

type snapshot struct {
	timesheet *Timesheet
	target    *user.User
	actions   Actions
}

func (s *Service) load(ctx context.Context, acting *user.User, id int64) (*snapshot, error) {
	ts, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get timesheet: %w", err)
	}

	target, err := s.users.GetByID(ctx, ts.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load timesheet owner: %w", err)
	}

	employed := target.IsEmployedOn(ts.Date, s.loc)
	return &snapshot{
		timesheet: ts,
		target:    target,
		actions:   ActionsFor(s.resolver, ts, target, acting, employed),
	}, nil
}

func (s *Service) Get(ctx context.Context, acting *user.User, id int64) (*Timesheet, error) {
	snap, err := s.load(ctx, acting, id)
	if err != nil {
		return nil, err
	}
	if !snap.actions.CanRead {
		return nil, ErrForbidden
	}
	return snap.timesheet, nil
}

func (s *Service) List(ctx context.Context, acting *user.User, userID int64, within dates.Range) ([]*Timesheet, error) {
	namespace := PermissionOthers
	if acting.ActorID() == userID {
		namespace = PermissionOwns
	}
	if !s.resolver.HasPermission(acting, namespace, permission.ActionRead) {
		return nil, ErrForbidden
	}

	timesheets, err := s.repo.ListByUser(ctx, userID, within)
	if err != nil {
		return nil, fmt.Errorf("failed to list timesheets: %w", err)
	}
	return timesheets, nil
}

func (s *Service) Actions(ctx context.Context, acting *user.User, id int64) (*Actions, error) {
	snap, err := s.load(ctx, acting, id)
	if err != nil {
		return nil, err
	}
	return &snap.actions, nil
}

// DayActions answers for a day of userID, whether or not a timesheet exists.
func (s *Service) DayActions(ctx context.Context, acting *user.User, userID int64, date time.Time) (*Actions, error) {
	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	ts, err := s.repo.GetByUserAndDate(ctx, userID, date)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to get timesheet: %w", err)
	}

	actions := ActionsFor(s.resolver, ts, target, acting, target.IsEmployedOn(date, s.loc))
	return &actions, nil
}

func (s *Service) Create(ctx context.Context, acting *user.User, dto CreateTimesheetDTO) (*Timesheet, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	userID := dto.UserID
	if userID == 0 {
		userID = acting.ActorID()
	}
	date, err := dates.Parse(dto.Date, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("failed to parse date: %w", err)
	}

	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByUserAndDate(ctx, userID, date)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing timesheet: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicate
	}

	actions := ActionsFor(s.resolver, nil, target, acting, target.IsEmployedOn(date, s.loc))
	if !actions.CanCreate {
		s.logger.Warn("timesheet create denied", "actor_id", acting.ActorID(), "user_id", userID, "date", dto.Date)
		return nil, ErrForbidden
	}

	ts := &Timesheet{
		UserID:  userID,
		Date:    date,
		StartAt: dto.StartAt,
		EndAt:   dto.EndAt,
		Breaks:  breaksFromDTO(dto.Breaks),
		Status:  StatusPending,
	}
	ts.RecomputeTotals(s.scheduledMinutes(ctx, target, date))

	if err := s.repo.Create(ctx, ts); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create timesheet: %w", err)
	}

	s.logger.Info("timesheet submitted", "timesheet_id", ts.ID, "user_id", userID, "actor_id", acting.ActorID())
	s.publish(ctx, events.EventTypeTimesheetSubmitted, ts, acting)
	return ts, nil
}

func (s *Service) Update(ctx context.Context, acting *user.User, id int64, dto UpdateTimesheetDTO) (*Timesheet, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	snap, err := s.load(ctx, acting, id)
	if err != nil {
		return nil, err
	}
	if snap.timesheet.Status == StatusRejected {
		return nil, ErrInvalidTransition
	}
	if !snap.actions.CanEdit {
		return nil, ErrForbidden
	}

	ts := snap.timesheet
	ts.StartAt = dto.StartAt
	ts.EndAt = dto.EndAt
	ts.Breaks = breaksFromDTO(dto.Breaks)
	ts.RecomputeTotals(s.scheduledMinutes(ctx, snap.target, ts.Date))

	if err := s.repo.Update(ctx, ts); err != nil {
		return nil, fmt.Errorf("failed to update timesheet: %w", err)
	}

	s.logger.Info("timesheet updated", "timesheet_id", ts.ID, "actor_id", acting.ActorID())
	return ts, nil
}

func (s *Service) Delete(ctx context.Context, acting *user.User, id int64) error {
	snap, err := s.load(ctx, acting, id)
	if err != nil {
		return err
	}
	if !snap.actions.CanDelete {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete timesheet: %w", err)
	}

	s.logger.Info("timesheet deleted", "timesheet_id", id, "actor_id", acting.ActorID())
	s.publish(ctx, events.EventTypeTimesheetDeleted, snap.timesheet, acting)
	return nil
}

func (s *Service) Approve(ctx context.Context, acting *user.User, id int64, dto ReviewDTO) (*Timesheet, error) {
	return s.review(ctx, acting, id, dto, StatusApproved, events.EventTypeTimesheetApproved,
		func(st Status) bool { return st.IsPending() },
		func(a Actions) bool { return a.CanApprove })
}

func (s *Service) RequestChanges(ctx context.Context, acting *user.User, id int64, dto ReviewDTO) (*Timesheet, error) {
	return s.review(ctx, acting, id, dto, StatusRequiresModification, events.EventTypeTimesheetChangesRequested,
		func(st Status) bool { return st == StatusPending },
		func(a Actions) bool { return a.CanRequestChanges })
}

// Reject is gated by the approve permission.
func (s *Service) Reject(ctx context.Context, acting *user.User, id int64, dto ReviewDTO) (*Timesheet, error) {
	return s.review(ctx, acting, id, dto, StatusRejected, events.EventTypeTimesheetRejected,
		func(st Status) bool { return st.IsPending() },
		func(a Actions) bool { return a.CanApprove })
}

func (s *Service) Resubmit(ctx context.Context, acting *user.User, id int64) (*Timesheet, error) {
	snap, err := s.load(ctx, acting, id)
	if err != nil {
		return nil, err
	}
	if snap.timesheet.Status != StatusRequiresModification {
		return nil, ErrInvalidTransition
	}
	if !snap.actions.CanResubmit {
		return nil, ErrForbidden
	}

	ts := snap.timesheet
	ts.Status = StatusPending
	if err := s.repo.Update(ctx, ts); err != nil {
		return nil, fmt.Errorf("failed to resubmit timesheet: %w", err)
	}

	s.logger.Info("timesheet resubmitted", "timesheet_id", ts.ID, "actor_id", acting.ActorID())
	s.publish(ctx, events.EventTypeTimesheetResubmitted, ts, acting)
	return ts, nil
}

func (s *Service) review(ctx context.Context, acting *user.User, id int64, dto ReviewDTO, to Status, eventType string, from func(Status) bool, allowed func(Actions) bool) (*Timesheet, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	snap, err := s.load(ctx, acting, id)
	if err != nil {
		return nil, err
	}
	if !from(snap.timesheet.Status) {
		return nil, ErrInvalidTransition
	}
	if !allowed(snap.actions) {
		s.logger.Warn("timesheet review denied",
			"timesheet_id", id,
			"actor_id", acting.ActorID(),
			"target_status", to)
		return nil, ErrForbidden
	}

	ts := snap.timesheet
	reviewer := acting.ActorID()
	reviewedAt := s.now()
	ts.Status = to
	ts.ReviewNote = dto.Note
	ts.ReviewedBy = &reviewer
	ts.ReviewedAt = &reviewedAt

	if err := s.repo.Update(ctx, ts); err != nil {
		return nil, fmt.Errorf("failed to update timesheet status: %w", err)
	}

	s.logger.Info("timesheet reviewed", "timesheet_id", ts.ID, "status", to, "reviewer_id", reviewer)
	s.publish(ctx, eventType, ts, acting)
	return ts, nil
}

// scheduledMinutes is the labouring time the target's schedule expects on
// date, zero when no schedule applies.
func (s *Service) scheduledMinutes(ctx context.Context, target *user.User, date time.Time) int {
	if target.ScheduleID == nil || s.schedules == nil {
		return 0
	}
	schedule, err := s.schedules.GetSchedule(ctx, *target.ScheduleID)
	if err != nil {
		s.logger.Warn("failed to load schedule, counting all time as overtime",
			"schedule_id", *target.ScheduleID,
			"error", err)
		return 0
	}
	day, ok := schedule.DayFor(date.Weekday())
	if !ok {
		return 0
	}
	return day.LabouringMinutes
}

func (s *Service) publish(ctx context.Context, eventType string, ts *Timesheet, acting *user.User) {
	if s.publisher == nil {
		return
	}
	event := events.NewTimesheetEvent(eventType, ts.ID, ts.UserID, acting.ActorID(), ts.Date.Format(dates.Layout), string(ts.Status), ts.ReviewNote)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish timesheet event", "event_type", eventType, "timesheet_id", ts.ID, "error", err)
	}
}
