package employment

import (
	"sort"
	"time"

	"github.com/frahmantamala/workforce-attendance/internal/core/common/dates"
)

type Status string

const (
	StatusPendingStart Status = "pending_start"
	StatusActive       Status = "active"
	StatusProbation    Status = "probation"
	StatusSuspended    Status = "suspended"
	StatusTerminated   Status = "terminated"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPendingStart, StatusActive, StatusProbation, StatusSuspended, StatusTerminated:
		return true
	}
	return false
}

// IsEmployed is false for statuses where no work is expected.
func IsEmployed(s Status) bool {
	switch s {
	case StatusPendingStart, StatusTerminated, StatusSuspended:
		return false
	}
	return true
}

// Event is a status change that takes effect on EffectiveDate.
type Event struct {
	Status        Status    `json:"status"`
	EffectiveDate time.Time `json:"effective_date"`
}

type History []Event

// StatusOn returns the status in force on date. Events are ordered by
// effective instant, newest first, and the first one whose effective day is
// on or before date wins; with no such event the user has not started yet.
// Events sharing the exact same instant resolve to the one recorded last.
func (h History) StatusOn(date time.Time, loc *time.Location) Status {
	if len(h) == 0 {
		return StatusPendingStart
	}

	sorted := make(History, 0, len(h))
	for i := len(h) - 1; i >= 0; i-- {
		sorted = append(sorted, h[i])
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EffectiveDate.After(sorted[j].EffectiveDate)
	})

	day := dates.Day(date, loc)
	for _, e := range sorted {
		if !dates.Day(e.EffectiveDate, loc).After(day) {
			return e.Status
		}
	}
	return StatusPendingStart
}

func (h History) IsEmployedOn(date time.Time, loc *time.Location) bool {
	return IsEmployed(h.StatusOn(date, loc))
}

// Latest returns the most recent event regardless of date.
func (h History) Latest() (Event, bool) {
	if len(h) == 0 {
		return Event{}, false
	}
	latest := h[0]
	for _, e := range h[1:] {
		if !e.EffectiveDate.Before(latest.EffectiveDate) {
			latest = e
		}
	}
	return latest, true
}
