package attendance

import (
	"time"

	"github.com/frahmantamala/workforce-attendance/internal/core/common/dates"
	"github.com/frahmantamala/workforce-attendance/internal/employment"
	"github.com/frahmantamala/workforce-attendance/internal/timeoff"
	"github.com/frahmantamala/workforce-attendance/internal/timesheet"
	"github.com/frahmantamala/workforce-attendance/internal/user"
)

// DayContext holds the records that may apply to a day. Collections may
// contain entries for other users or other days; the resolver filters them.
type DayContext struct {
	Vacations   []timeoff.Vacation
	Leaves      []timeoff.LeaveOfAbsence
	Holidays    []timeoff.PublicHoliday
	ClosingDays []timeoff.ClosingDay
	// Schedule is the user's assigned schedule; nil means none is assigned.
	Schedule *timeoff.Schedule
}

type Day struct {
	Date              time.Time `json:"-"`
	Status            Status    `json:"status"`
	IsExpectedWorkDay bool      `json:"is_expected_work_day"`
	HolidayName       string    `json:"holiday_name,omitempty"`
}

// Resolver derives attendance statuses. It is stateless apart from its
// location and clock and safe for concurrent use.
type Resolver struct {
	Location *time.Location
	Now      func() time.Time
}

func NewResolver(loc *time.Location) *Resolver {
	if loc == nil {
		loc = time.UTC
	}
	return &Resolver{Location: loc, Now: time.Now}
}

func (r *Resolver) today() time.Time {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	return dates.Today(now(), r.Location)
}

// ResolveDay returns the attendance status of u on date. The first matching
// rule wins:
//
//  1. not employed (pending start or terminated)
//  2. suspended
//  3. approved leave of absence
//  4. no schedule entry for the weekday
//  5. public holiday
//  6. office closing day
//  7. approved vacation
//  8. expected work day: present with a timesheet or when date is today or
//     later, absent otherwise
func (r *Resolver) ResolveDay(u *user.User, date time.Time, ts *timesheet.Timesheet, dc DayContext) Day {
	day := dates.Day(date, r.Location)
	out := Day{Date: day}

	switch u.EmploymentStatusOn(day, r.Location) {
	case employment.StatusPendingStart, employment.StatusTerminated:
		out.Status = StatusNotEmployed
		return out
	case employment.StatusSuspended:
		out.Status = StatusSuspended
		return out
	}

	for _, l := range dc.Leaves {
		if l.CoversApproved(u.ID, day, r.Location) {
			out.Status = StatusLOA
			return out
		}
	}

	if _, scheduled := dc.Schedule.DayFor(day.Weekday()); !scheduled {
		out.Status = StatusOffSchedule
		return out
	}

	for _, h := range dc.Holidays {
		if dates.SameDay(h.Date, day, r.Location) {
			out.Status = StatusHoliday
			out.HolidayName = h.Name
			return out
		}
	}

	for _, c := range dc.ClosingDays {
		if c.Range.Covers(day, r.Location) {
			out.Status = StatusClosed
			return out
		}
	}

	for _, v := range dc.Vacations {
		if v.CoversApproved(u.ID, day, r.Location) {
			out.Status = StatusVacation
			return out
		}
	}

	out.IsExpectedWorkDay = true
	switch {
	case ts != nil:
		out.Status = StatusPresent
	case !day.Before(r.today()):
		out.Status = StatusPresent
	default:
		out.Status = StatusAbsent
	}
	return out
}
