package dates

import (
	"errors"
	"time"
)

const Layout = "2006-01-02"

var ErrInvalidRange = errors.New("range end is before range start")

// Day returns the calendar day of t as midnight in loc. The day is read in
// t's own location, so date-only values decoded as UTC midnight keep their
// date. Convert instants with t.In(loc) before calling Day.
func Day(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// Today is the current calendar day in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return Day(now.In(loc), loc)
}

func SameDay(a, b time.Time, loc *time.Location) bool {
	return Day(a, loc).Equal(Day(b, loc))
}

// Parse reads a YYYY-MM-DD string as a day in loc.
func Parse(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(Layout, s, loc)
}

// Range is an inclusive span of days. A nil End is open-ended.
type Range struct {
	Start time.Time
	End   *time.Time
}

func NewRange(start time.Time, end *time.Time) Range {
	return Range{Start: start, End: end}
}

func Single(day time.Time) Range {
	d := day
	return Range{Start: day, End: &d}
}

func (r Range) IsOpenEnded() bool {
	return r.End == nil
}

func (r Range) Validate() error {
	if r.End != nil && r.End.Before(r.Start) {
		return ErrInvalidRange
	}
	return nil
}

// Covers reports whether date falls within the range, compared by calendar day.
func (r Range) Covers(date time.Time, loc *time.Location) bool {
	d := Day(date, loc)
	if d.Before(Day(r.Start, loc)) {
		return false
	}
	if r.End == nil {
		return true
	}
	return !d.After(Day(*r.End, loc))
}

// Overlaps reports whether r and o share at least one day.
func (r Range) Overlaps(o Range, loc *time.Location) bool {
	if r.End != nil && Day(o.Start, loc).After(Day(*r.End, loc)) {
		return false
	}
	if o.End != nil && Day(r.Start, loc).After(Day(*o.End, loc)) {
		return false
	}
	return true
}

// EachDay calls fn for every day from..to inclusive.
func EachDay(from, to time.Time, loc *time.Location, fn func(day time.Time)) {
	end := Day(to, loc)
	for d := Day(from, loc); !d.After(end); d = d.AddDate(0, 0, 1) {
		fn(d)
	}
}

// DaysBetween counts the days in from..to inclusive; zero when to precedes from.
func DaysBetween(from, to time.Time, loc *time.Location) int {
	f, t := Day(from, loc), Day(to, loc)
	if t.Before(f) {
		return 0
	}
	n := 0
	for d := f; !d.After(t); d = d.AddDate(0, 0, 1) {
		n++
	}
	return n
}
