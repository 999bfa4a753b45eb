package models

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the wire format for calendar dates.
	DateLayout = "2006-01-02"
	// ClockLayout is the wire format for times of day (24h).
	ClockLayout = "15:04"
)

// DateOnly strips the clock component so two timestamps on the same
// calendar day compare equal.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ParseClock converts an "HH:MM" string to minutes since midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ClockOf formats a timestamp's clock component as "HH:MM".
func ClockOf(t time.Time) string {
	return t.Format(ClockLayout)
}

// DateRange is an inclusive span of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether the two inclusive date spans intersect.
func (r DateRange) Overlaps(o DateRange) bool {
	rs, re := DateOnly(r.Start), DateOnly(r.End)
	os, oe := DateOnly(o.Start), DateOnly(o.End)
	return !rs.After(oe) && !os.After(re)
}

// Contains reports whether o lies entirely within r, endpoints included.
func (r DateRange) Contains(o DateRange) bool {
	rs, re := DateOnly(r.Start), DateOnly(r.End)
	os, oe := DateOnly(o.Start), DateOnly(o.End)
	return !os.Before(rs) && !oe.After(re)
}

// Days returns the inclusive day count of the range. The count is
// calendar-based: both endpoints are re-anchored at UTC midnight first,
// so a DST transition inside the range cannot shift the result.
func (r DateRange) Days() int64 {
	start := utcMidnight(r.Start)
	end := utcMidnight(r.End)
	return int64(end.Sub(start)/(24*time.Hour)) + 1
}

func utcMidnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// TimeRange is a time-of-day span in "HH:MM" (24h).
type TimeRange struct {
	Start string
	End   string
}

// Overlaps reports whether the two time-of-day spans intersect. The
// comparison is deliberately coarse: it is applied to the whole date
// span of a booking, not per overlapping day. Two windows are disjoint
// only when one starts at or after the other ends. Malformed clock
// strings count as overlapping so bad data can never mask a conflict.
func (r TimeRange) Overlaps(o TimeRange) bool {
	rs, err1 := ParseClock(r.Start)
	re, err2 := ParseClock(r.End)
	os, err3 := ParseClock(o.Start)
	oe, err4 := ParseClock(o.End)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return true
	}
	return !(rs >= oe || re <= os)
}

// Window couples a date range with a whole-span time-of-day range, the
// unit the availability checker reasons about.
type Window struct {
	Dates DateRange
	Times TimeRange
}

// Overlaps applies the date test and the coarse time test together.
func (w Window) Overlaps(o Window) bool {
	return w.Dates.Overlaps(o.Dates) && w.Times.Overlaps(o.Times)
}
