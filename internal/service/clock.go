package service

import (
	"time"
)

// clock separates stored instants (UTC, microsecond precision to survive a
// round trip through postgres) from calendar dates in the coaching time zone.
type clock struct {
	now func() time.Time
	loc *time.Location
}

func newClock(loc *time.Location) clock {
	if loc == nil {
		loc = time.UTC
	}
	return clock{now: time.Now, loc: loc}
}

func (c clock) stamp() time.Time {
	return c.now().UTC().Truncate(time.Microsecond)
}

func (c clock) today() time.Time {
	return c.now().In(c.loc)
}
