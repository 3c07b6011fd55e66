package grouping

import (
	"fmt"
	"strings"
	"time"
)

// Unit is a calendar bucket size.
type Unit int

const (
	Day Unit = iota + 1
	Week
	Month
	Year
)

func (u Unit) String() string {
	switch u {
	case Day:
		return "day"
	case Week:
		return "week"
	case Month:
		return "month"
	case Year:
		return "year"
	}
	return fmt.Sprintf("unit(%d)", int(u))
}

// ParseUnit accepts day, week, month or year, case-insensitively.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "day", "daily":
		return Day, nil
	case "week", "weekly":
		return Week, nil
	case "month", "monthly":
		return Month, nil
	case "year", "yearly":
		return Year, nil
	}
	return 0, fmt.Errorf("%w: unknown calendar unit %q", ErrInvalidGrouping, s)
}

// Floor truncates t to the start of its bucket in t's own location.
// Weeks start on Monday.
func (u Unit) Floor(t time.Time) time.Time {
	year, month, day := t.Date()
	switch u {
	case Week:
		midnight := time.Date(year, month, day, 0, 0, 0, 0, t.Location())
		sinceMonday := (int(t.Weekday()) + 6) % 7
		return midnight.AddDate(0, 0, -sinceMonday)
	case Month:
		return time.Date(year, month, 1, 0, 0, 0, 0, t.Location())
	case Year:
		return time.Date(year, time.January, 1, 0, 0, 0, 0, t.Location())
	}
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// Next returns the start of the bucket after the one starting at start.
func (u Unit) Next(start time.Time) time.Time {
	switch u {
	case Week:
		return start.AddDate(0, 0, 7)
	case Month:
		return start.AddDate(0, 1, 0)
	case Year:
		return start.AddDate(1, 0, 0)
	}
	return start.AddDate(0, 0, 1)
}

// Label formats a bucket start. Weeks use ISO week numbering, e.g. 2021-W05.
func (u Unit) Label(start time.Time) string {
	switch u {
	case Week:
		year, week := start.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case Month:
		return start.Format("2006-01")
	case Year:
		return start.Format("2006")
	}
	return start.Format("2006-01-02")
}

// Calendar is a contiguous run of bucket starts that only grows.
// It lets callers fill series gaps without recomputing the run per request.
// A Calendar is owned by its caller and is not safe for concurrent use.
type Calendar struct {
	unit   Unit
	loc    *time.Location
	starts []time.Time
}

func NewCalendar(unit Unit, loc *time.Location) *Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return &Calendar{unit: unit, loc: loc}
}

func (c *Calendar) Unit() Unit { return c.unit }

// Len is the number of buckets currently held.
func (c *Calendar) Len() int { return len(c.starts) }

// Extend grows the run so it covers the buckets of first and last.
func (c *Calendar) Extend(first, last time.Time) {
	lo := c.unit.Floor(first.In(c.loc))
	hi := c.unit.Floor(last.In(c.loc))
	if hi.Before(lo) {
		lo, hi = hi, lo
	}

	if len(c.starts) == 0 {
		for s := lo; !s.After(hi); s = c.unit.Next(s) {
			c.starts = append(c.starts, s)
		}
		return
	}

	var head []time.Time
	for s := lo; s.Before(c.starts[0]); s = c.unit.Next(s) {
		head = append(head, s)
	}
	if len(head) > 0 {
		c.starts = append(head, c.starts...)
	}
	for s := c.unit.Next(c.starts[len(c.starts)-1]); !s.After(hi); s = c.unit.Next(s) {
		c.starts = append(c.starts, s)
	}
}

// Buckets returns every bucket start from the bucket of first to the bucket of last, inclusive.
func (c *Calendar) Buckets(first, last time.Time) []time.Time {
	c.Extend(first, last)
	lo := c.unit.Floor(first.In(c.loc))
	hi := c.unit.Floor(last.In(c.loc))
	if hi.Before(lo) {
		lo, hi = hi, lo
	}

	var out []time.Time
	for _, s := range c.starts {
		if s.Before(lo) {
			continue
		}
		if s.After(hi) {
			break
		}
		out = append(out, s)
	}
	return out
}
