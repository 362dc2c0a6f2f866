package clock

import (
	"time"
	_ "time/tzdata"
)

// ReferenceZone is the zone snapshot timestamps are recorded in.
const ReferenceZone = "Europe/Amsterdam"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type realClock struct {
	loc *time.Location
}

// New returns a wall clock reporting time in the named zone. When the zone
// cannot be loaded it reports UTC.
func New(zone string) Clock {
	loc, err := time.LoadLocation(zone)
	if err != nil || zone == "" {
		loc = time.UTC
	}
	return realClock{loc: loc}
}

func (c realClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// Stamp formats t as an ISO-8601 timestamp with second precision.
// UTC times end in "Z".
func Stamp(t time.Time) string {
	return t.Truncate(time.Second).Format(time.RFC3339)
}
