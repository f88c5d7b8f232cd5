package domain

import (
	"strconv"
	"strings"
	"time"
)

// Calendar maps instants onto calendar days in a fixed location.
type Calendar struct {
	loc *time.Location
	now func() time.Time
}

// NewCalendar returns a Calendar for loc using the wall clock. A nil loc
// means UTC.
func NewCalendar(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{loc: loc, now: time.Now}
}

// WithClock returns a copy of c that reads the current time from now.
func (c Calendar) WithClock(now func() time.Time) Calendar {
	c.now = now
	return c
}

// Location returns the calendar's location.
func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// Now returns the current instant in the calendar's location.
func (c Calendar) Now() time.Time {
	if c.now == nil {
		return time.Now().In(c.Location())
	}
	return c.now().In(c.Location())
}

// Today returns the start of the current calendar day.
func (c Calendar) Today() time.Time {
	return c.StartOfDay(c.Now())
}

// StartOfDay discards the time-of-day of t as seen in the calendar's
// location.
func (c Calendar) StartOfDay(t time.Time) time.Time {
	t = t.In(c.Location())
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.Location())
}

// Weekday returns the day of week of t in the calendar's location,
// 0 for Sunday through 6 for Saturday.
func (c Calendar) Weekday(t time.Time) int {
	return int(t.In(c.Location()).Weekday())
}

var zonelessLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02T15",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006",
}

// minMillisDigits rejects short bare integers; anything under ten digits
// would land in January 1970.
const minMillisDigits = 10

// ParseDate coerces raw into an instant. RFC 3339 values keep their
// offset, zone-less values are read in the calendar's location, a bare
// four-digit number is a year, and a bare integer of at least ten digits is
// taken as Unix milliseconds.
func (c Calendar) ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, NewValidationError("date", "is required")
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, nil
	}
	for _, layout := range zonelessLayouts {
		if t, err := time.ParseInLocation(layout, raw, c.Location()); err == nil {
			return t, nil
		}
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil && len(strings.TrimPrefix(raw, "-")) >= minMillisDigits {
		return time.UnixMilli(ms).In(c.Location()), nil
	}
	return time.Time{}, NewValidationError("date", "cannot parse %q as a date", raw)
}
