package domain

import (
	"fmt"
	"time"
)

const displayLayout = "Jan 02, 2006"

// DateRange is a closed interval of calendar days. Start <= End always holds for
// values built through NewDateRange.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Day returns the calendar day y-m-d as midnight UTC.
func Day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TruncateDay drops the clock part of t, keeping its calendar day in t's location.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return Day(y, m, d)
}

func NewDateRange(start, end time.Time) (DateRange, error) {
	s, e := TruncateDay(start), TruncateDay(end)
	if e.Before(s) {
		return DateRange{}, fmt.Errorf("%w: %s > %s", ErrStartAfterEnd, s.Format(time.DateOnly), e.Format(time.DateOnly))
	}
	return DateRange{Start: s, End: e}, nil
}

// Overlaps reports whether [from, to] intersects the range. Shared endpoints count.
func (r DateRange) Overlaps(from, to time.Time) bool {
	from, to = TruncateDay(from), TruncateDay(to)
	return !to.Before(r.Start) && !from.After(r.End)
}

// Days is the inclusive day count: Jun 10 – Jun 12 is 3 days.
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

func (r DateRange) Equal(o DateRange) bool {
	return r.Start.Equal(o.Start) && r.End.Equal(o.End)
}

func (r DateRange) String() string {
	return r.Start.Format(displayLayout) + " - " + r.End.Format(displayLayout)
}
