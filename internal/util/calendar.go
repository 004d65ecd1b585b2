package util

import "time"

// Calendar answers local-date questions in a fixed timezone. The upstream
// dates its orders in local market time, so "yesterday" has to be computed
// there rather than in the machine's zone.
type Calendar struct {
	loc *time.Location
	now func() time.Time
}

// NewCalendar returns a calendar for the named IANA zone. An empty name or a
// zone that cannot be loaded falls back to the local zone.
func NewCalendar(zone string) *Calendar {
	loc := time.Local
	if zone != "" {
		if l, err := time.LoadLocation(zone); err == nil {
			loc = l
		}
	}
	return &Calendar{loc: loc, now: time.Now}
}

// WithClock returns a copy of c that reads the current time from now.
func (c *Calendar) WithClock(now func() time.Time) *Calendar {
	return &Calendar{loc: c.loc, now: now}
}

// Location returns the calendar's zone.
func (c *Calendar) Location() *time.Location { return c.loc }

// Now returns the current time in the calendar's zone.
func (c *Calendar) Now() time.Time { return c.now().In(c.loc) }

// Today returns the current local date as YYYY-MM-DD.
func (c *Calendar) Today() string { return c.Now().Format(time.DateOnly) }

// Yesterday returns the previous local date as YYYY-MM-DD.
func (c *Calendar) Yesterday() string {
	return c.Now().AddDate(0, 0, -1).Format(time.DateOnly)
}
