package clock

import "time"

// WAT West Africa Time, UTC+1 without daylight saving.
var WAT = time.FixedZone("WAT", 60*60)

// Clock supplies the current instant in the portal's local zone.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

// LoadLocation resolves an IANA zone name. When the host has no tz
// database, Africa/Lagos (and Lagos-equivalent names) fall back to WAT.
func LoadLocation(name string) (*time.Location, error) {
	loc, err := time.LoadLocation(name)
	if err == nil {
		return loc, nil
	}
	switch name {
	case "Africa/Lagos", "WAT":
		return WAT, nil
	}
	return nil, err
}

type zoneClock struct {
	loc *time.Location
}

// New returns the system clock reporting time in loc.
func New(loc *time.Location) Clock {
	if loc == nil {
		loc = WAT
	}
	return &zoneClock{loc: loc}
}

func (c *zoneClock) Now() time.Time           { return time.Now().In(c.loc) }
func (c *zoneClock) Location() *time.Location { return c.loc }

// FixedClock always reports the same instant.
type FixedClock struct {
	T   time.Time
	Loc *time.Location
}

// Fixed returns a clock frozen at t, reporting in loc.
func Fixed(t time.Time, loc *time.Location) *FixedClock {
	if loc == nil {
		loc = WAT
	}
	return &FixedClock{T: t, Loc: loc}
}

func (c *FixedClock) Now() time.Time           { return c.T.In(c.Loc) }
func (c *FixedClock) Location() *time.Location { return c.Loc }

// Set moves the frozen instant.
func (c *FixedClock) Set(t time.Time) { c.T = t }
