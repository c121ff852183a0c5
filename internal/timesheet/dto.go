package timesheet

import (
	"time"

	"github.com/frahmantamala/workforce-attendance/internal/core/common/dates"
	"github.com/frahmantamala/workforce-attendance/internal/core/common/validation"
)

type BreakDTO struct {
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`
}

// CreateTimesheetDTO is the payload of POST /timesheets. UserID defaults to
// the acting user.
type CreateTimesheetDTO struct {
	UserID  int64      `json:"user_id,omitempty"`
	Date    string     `json:"date"`
	StartAt *time.Time `json:"start_at,omitempty"`
	EndAt   *time.Time `json:"end_at,omitempty"`
	Breaks  []BreakDTO `json:"breaks,omitempty"`
}

func (dto CreateTimesheetDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("date", dto.Date).Required().Date()
	v.Field("end_at", dto.EndAt).NotBefore(dto.StartAt, "start_at")
	for i := range dto.Breaks {
		v.Field("breaks.end_at", &dto.Breaks[i].EndAt).NotBefore(&dto.Breaks[i].StartAt, "breaks.start_at")
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type UpdateTimesheetDTO struct {
	StartAt *time.Time `json:"start_at,omitempty"`
	EndAt   *time.Time `json:"end_at,omitempty"`
	Breaks  []BreakDTO `json:"breaks"`
}

func (dto UpdateTimesheetDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("end_at", dto.EndAt).NotBefore(dto.StartAt, "start_at")
	for i := range dto.Breaks {
		v.Field("breaks.end_at", &dto.Breaks[i].EndAt).NotBefore(&dto.Breaks[i].StartAt, "breaks.start_at")
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// ReviewDTO carries the optional reviewer note of approve, reject and
// request-changes.
type ReviewDTO struct {
	Note string `json:"note,omitempty"`
}

func (dto ReviewDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("note", dto.Note).MaxLength(1000)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

func breaksFromDTO(in []BreakDTO) []Break {
	out := make([]Break, 0, len(in))
	for _, b := range in {
		out = append(out, Break{StartAt: b.StartAt, EndAt: b.EndAt})
	}
	return out
}

// Response decorates a timesheet with its status display.
type Response struct {
	*Timesheet
	Date    string  `json:"date"`
	Display Display `json:"display"`
}

func NewResponse(ts *Timesheet) Response {
	display, _ := ts.Status.Display()
	return Response{
		Timesheet: ts,
		Date:      ts.Date.Format(dates.Layout),
		Display:   display,
	}
}
