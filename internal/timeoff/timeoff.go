package timeoff

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/workforce-attendance/internal/core/common/dates"
	timeoffDatamodel "github.com/frahmantamala/workforce-attendance/internal/core/datamodel/timeoff"
)

type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusApproved  RequestStatus = "approved"
	StatusRejected  RequestStatus = "rejected"
	StatusWithdrawn RequestStatus = "withdrawn"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusWithdrawn:
		return true
	}
	return false
}

var ErrScheduleNotFound = errors.New("schedule not found")

// Absence is a dated request by one user. Vacations and leaves of absence
// share this shape but resolve to different attendance statuses.
type Absence struct {
	ID     int64         `json:"id"`
	UserID int64         `json:"user_id"`
	Range  dates.Range   `json:"-"`
	Status RequestStatus `json:"status"`
	Reason string        `json:"reason,omitempty"`
}

// CoversApproved reports whether the absence belongs to userID, is approved
// and spans date.
func (a Absence) CoversApproved(userID int64, date time.Time, loc *time.Location) bool {
	return a.UserID == userID && a.Status == StatusApproved && a.Range.Covers(date, loc)
}

type Vacation struct {
	Absence
}

type LeaveOfAbsence struct {
	Absence
}

type PublicHoliday struct {
	ID   int64     `json:"id"`
	Date time.Time `json:"date"`
	Name string    `json:"name,omitempty"`
}

type ClosingDay struct {
	ID    int64       `json:"id"`
	Range dates.Range `json:"-"`
	Name  string      `json:"name,omitempty"`
}

type ScheduleDay struct {
	DayOfWeek        time.Weekday `json:"day_of_week"`
	LabouringMinutes int          `json:"labouring_minutes"`
	BreakMinutes     int          `json:"break_minutes"`
}

type Schedule struct {
	ID   int64         `json:"id"`
	Name string        `json:"name"`
	Days []ScheduleDay `json:"days"`
}

// DayFor returns the schedule entry for weekday. A nil schedule has none.
func (s *Schedule) DayFor(weekday time.Weekday) (ScheduleDay, bool) {
	if s == nil {
		return ScheduleDay{}, false
	}
	for _, d := range s.Days {
		if d.DayOfWeek == weekday {
			return d, true
		}
	}
	return ScheduleDay{}, false
}

// RepositoryAPI reads time-off and schedule records. Every call returns a
// fresh snapshot; callers never observe later mutations.
type RepositoryAPI interface {
	ListVacations(ctx context.Context, userID int64, within dates.Range) ([]Vacation, error)
	ListLeaves(ctx context.Context, userID int64, within dates.Range) ([]LeaveOfAbsence, error)
	ListHolidays(ctx context.Context, within dates.Range) ([]PublicHoliday, error)
	ListClosingDays(ctx context.Context, within dates.Range) ([]ClosingDay, error)
	GetSchedule(ctx context.Context, id int64) (*Schedule, error)
}

func rangeFrom(start time.Time, end *time.Time) dates.Range {
	if end == nil {
		return dates.NewRange(start, nil)
	}
	e := *end
	return dates.NewRange(start, &e)
}

func VacationFromDataModel(v *timeoffDatamodel.Vacation) Vacation {
	return Vacation{Absence{
		ID:     v.ID,
		UserID: v.UserID,
		Range:  rangeFrom(v.StartDate, v.EndDate),
		Status: RequestStatus(v.Status),
		Reason: v.Reason,
	}}
}

func VacationToDataModel(v Vacation) *timeoffDatamodel.Vacation {
	return &timeoffDatamodel.Vacation{
		ID:        v.ID,
		UserID:    v.UserID,
		StartDate: v.Range.Start,
		EndDate:   v.Range.End,
		Status:    string(v.Status),
		Reason:    v.Reason,
	}
}

func LeaveFromDataModel(l *timeoffDatamodel.LeaveOfAbsence) LeaveOfAbsence {
	return LeaveOfAbsence{Absence{
		ID:     l.ID,
		UserID: l.UserID,
		Range:  rangeFrom(l.StartDate, l.EndDate),
		Status: RequestStatus(l.Status),
		Reason: l.Reason,
	}}
}

func LeaveToDataModel(l LeaveOfAbsence) *timeoffDatamodel.LeaveOfAbsence {
	return &timeoffDatamodel.LeaveOfAbsence{
		ID:        l.ID,
		UserID:    l.UserID,
		StartDate: l.Range.Start,
		EndDate:   l.Range.End,
		Status:    string(l.Status),
		Reason:    l.Reason,
	}
}

func HolidayFromDataModel(h *timeoffDatamodel.PublicHoliday) PublicHoliday {
	return PublicHoliday{ID: h.ID, Date: h.Date, Name: h.Name}
}

func ClosingDayFromDataModel(c *timeoffDatamodel.ClosingDay) ClosingDay {
	end := c.EndDate
	return ClosingDay{ID: c.ID, Range: dates.NewRange(c.StartDate, &end), Name: c.Name}
}

func ScheduleFromDataModel(s *timeoffDatamodel.Schedule) *Schedule {
	out := &Schedule{ID: s.ID, Name: s.Name, Days: make([]ScheduleDay, 0, len(s.Days))}
	for _, d := range s.Days {
		out.Days = append(out.Days, ScheduleDay{
			DayOfWeek:        time.Weekday(d.DayOfWeek),
			LabouringMinutes: d.LabouringMinutes,
			BreakMinutes:     d.BreakMinutes,
		})
	}
	return out
}
