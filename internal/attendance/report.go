package attendance

import (
	"time"

	errors "github.com/frahmantamala/workforce-attendance/internal"
	"github.com/frahmantamala/workforce-attendance/internal/core/common/dates"
	"github.com/frahmantamala/workforce-attendance/internal/timesheet"
	"github.com/frahmantamala/workforce-attendance/internal/user"
)

type Summary struct {
	Days             int            `json:"days"`
	ExpectedWorkDays int            `json:"expected_work_days"`
	Counts           map[Status]int `json:"counts"`
	WorkedMinutes    int            `json:"worked_minutes"`
	OvertimeMinutes  int            `json:"overtime_minutes"`
}

type Report struct {
	UserID  int64       `json:"user_id"`
	From    string      `json:"from"`
	To      string      `json:"to"`
	Days    []ReportDay `json:"days"`
	Summary Summary     `json:"summary"`
}

// ReportDay is a resolved day as rendered in a report.
type ReportDay struct {
	Date string `json:"date"`
	Day
	Display     Display `json:"display"`
	TimesheetID *int64  `json:"timesheet_id,omitempty"`
}

// ResolveRange resolves every day of from..to inclusive. Timesheets are
// matched to days by date; ones belonging to other users are ignored.
func (r *Resolver) ResolveRange(u *user.User, from, to time.Time, timesheets []*timesheet.Timesheet, dc DayContext) (*Report, error) {
	from, to = dates.Day(from, r.Location), dates.Day(to, r.Location)
	if to.Before(from) {
		return nil, errors.ErrInvalidRange
	}

	byDay := make(map[string]*timesheet.Timesheet, len(timesheets))
	for _, ts := range timesheets {
		if ts == nil || ts.UserID != u.ID {
			continue
		}
		byDay[ts.Date.Format(dates.Layout)] = ts
	}

	report := &Report{
		UserID: u.ID,
		From:   from.Format(dates.Layout),
		To:     to.Format(dates.Layout),
		Days:   make([]ReportDay, 0, dates.DaysBetween(from, to, r.Location)),
		Summary: Summary{
			Counts: make(map[Status]int, len(Statuses)),
		},
	}

	dates.EachDay(from, to, r.Location, func(day time.Time) {
		key := day.Format(dates.Layout)
		ts := byDay[key]

		resolved := r.ResolveDay(u, day, ts, dc)
		display, _ := resolved.Status.Display()
		rd := ReportDay{Date: key, Day: resolved, Display: display}
		if resolved.HolidayName != "" {
			rd.Display.Label = resolved.HolidayName
		}

		report.Summary.Days++
		report.Summary.Counts[resolved.Status]++
		if resolved.IsExpectedWorkDay {
			report.Summary.ExpectedWorkDays++
		}
		if ts != nil {
			id := ts.ID
			rd.TimesheetID = &id
			report.Summary.WorkedMinutes += ts.TotalMinutes
			report.Summary.OvertimeMinutes += ts.OvertimeMinutes
		}
		report.Days = append(report.Days, rd)
	})

	return report, nil
}
