package timesheet

import (
	"context"
	"time"

	errors "github.com/frahmantamala/workforce-attendance/internal"
	"github.com/frahmantamala/workforce-attendance/internal/core/common/dates"
	timesheetDatamodel "github.com/frahmantamala/workforce-attendance/internal/core/datamodel/timesheet"
)

// Permission IDs gating self-service and managing other people's timesheets.
const (
	PermissionOwns   = "timesheets.owns"
	PermissionOthers = "timesheets.others"
)

type Status string

const (
	StatusPending              Status = "pending"
	StatusApproved             Status = "approved"
	StatusRequiresModification Status = "requires_modification"
	StatusRejected             Status = "rejected"
)

type Display struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// Display returns the presentation metadata for s. Unknown values get an
// explicit "Unknown" display and ok=false.
func (s Status) Display() (Display, bool) {
	switch s {
	case StatusPending:
		return Display{Label: "Pending", Color: "orange"}, true
	case StatusApproved:
		return Display{Label: "Approved", Color: "green"}, true
	case StatusRequiresModification:
		return Display{Label: "Requires modification", Color: "yellow"}, true
	case StatusRejected:
		return Display{Label: "Rejected", Color: "red"}, true
	}
	return Display{Label: "Unknown", Color: "grey"}, false
}

func (s Status) Valid() bool {
	_, ok := s.Display()
	return ok
}

// IsPending is true while a reviewer can still act on the timesheet.
func (s Status) IsPending() bool {
	return s == StatusPending || s == StatusRequiresModification
}

type Break struct {
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`
}

func (b Break) Minutes() int {
	if !b.EndAt.After(b.StartAt) {
		return 0
	}
	return int(b.EndAt.Sub(b.StartAt) / time.Minute)
}

type Timesheet struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"user_id"`
	Date            time.Time  `json:"date"`
	StartAt         *time.Time `json:"start_at,omitempty"`
	EndAt           *time.Time `json:"end_at,omitempty"`
	Breaks          []Break    `json:"breaks"`
	TotalMinutes    int        `json:"total_minutes"`
	RegularMinutes  int        `json:"regular_minutes"`
	OvertimeMinutes int        `json:"overtime_minutes"`
	BreakMinutes    int        `json:"break_minutes"`
	Status          Status     `json:"status"`
	ReviewNote      string     `json:"review_note,omitempty"`
	ReviewedBy      *int64     `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// RecomputeTotals derives the minute totals from the clock times and breaks.
// Overtime is whatever exceeds scheduledMinutes and is never negative.
func (t *Timesheet) RecomputeTotals(scheduledMinutes int) {
	t.BreakMinutes = 0
	for _, b := range t.Breaks {
		t.BreakMinutes += b.Minutes()
	}

	t.TotalMinutes, t.RegularMinutes, t.OvertimeMinutes = 0, 0, 0
	if t.StartAt == nil || t.EndAt == nil || !t.EndAt.After(*t.StartAt) {
		return
	}

	worked := int(t.EndAt.Sub(*t.StartAt)/time.Minute) - t.BreakMinutes
	if worked < 0 {
		worked = 0
	}
	t.TotalMinutes = worked

	if scheduledMinutes < 0 {
		scheduledMinutes = 0
	}
	if worked > scheduledMinutes {
		t.OvertimeMinutes = worked - scheduledMinutes
	}
	t.RegularMinutes = worked - t.OvertimeMinutes
}

var (
	ErrNotFound          = errors.ErrTimesheetNotFound
	ErrDuplicate         = errors.ErrDuplicateTimesheet
	ErrForbidden         = errors.ErrForbidden
	ErrInvalidTransition = errors.ErrInvalidTransition
)

// RepositoryAPI persists timesheets. At most one timesheet exists per user
// and day; Create reports ErrDuplicate otherwise.
type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*Timesheet, error)
	GetByUserAndDate(ctx context.Context, userID int64, date time.Time) (*Timesheet, error)
	ListByUser(ctx context.Context, userID int64, within dates.Range) ([]*Timesheet, error)
	Create(ctx context.Context, ts *Timesheet) error
	Update(ctx context.Context, ts *Timesheet) error
	Delete(ctx context.Context, id int64) error
}

func FromDataModel(t *timesheetDatamodel.Timesheet) *Timesheet {
	ts := &Timesheet{
		ID:              t.ID,
		UserID:          t.UserID,
		Date:            t.Date,
		StartAt:         t.StartAt,
		EndAt:           t.EndAt,
		Breaks:          make([]Break, 0, len(t.Breaks)),
		TotalMinutes:    t.TotalMinutes,
		RegularMinutes:  t.RegularMinutes,
		OvertimeMinutes: t.OvertimeMinutes,
		BreakMinutes:    t.BreakMinutes,
		Status:          Status(t.Status),
		ReviewNote:      t.ReviewNote,
		ReviewedBy:      t.ReviewedBy,
		ReviewedAt:      t.ReviewedAt,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
	for _, b := range t.Breaks {
		ts.Breaks = append(ts.Breaks, Break{StartAt: b.StartAt, EndAt: b.EndAt})
	}
	return ts
}

func ToDataModel(t *Timesheet) *timesheetDatamodel.Timesheet {
	row := &timesheetDatamodel.Timesheet{
		ID:              t.ID,
		UserID:          t.UserID,
		Date:            t.Date,
		StartAt:         t.StartAt,
		EndAt:           t.EndAt,
		TotalMinutes:    t.TotalMinutes,
		RegularMinutes:  t.RegularMinutes,
		OvertimeMinutes: t.OvertimeMinutes,
		BreakMinutes:    t.BreakMinutes,
		Status:          string(t.Status),
		ReviewNote:      t.ReviewNote,
		ReviewedBy:      t.ReviewedBy,
		ReviewedAt:      t.ReviewedAt,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
	for _, b := range t.Breaks {
		row.Breaks = append(row.Breaks, timesheetDatamodel.TimesheetBreak{
			TimesheetID: t.ID,
			StartAt:     b.StartAt,
			EndAt:       b.EndAt,
		})
	}
	return row
}
