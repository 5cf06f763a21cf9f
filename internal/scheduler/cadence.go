// Package scheduler drives the refresh cycle: a wall-clock cadence that
// tightens during evening game hours, a one-second countdown, and a
// single-flight scan state machine feeding the snapshot pipeline.
package scheduler

import "time"

// Mode is the polling cadence band for the current wall-clock hour.
type Mode int

const (
	// ModeOff disables automatic refreshes entirely (overnight and morning).
	ModeOff Mode = iota
	// ModeExtended polls at the user-configured interval (midday).
	ModeExtended
	// ModePrime polls at the fixed fast interval (evening game windows).
	ModePrime
)

func (m Mode) String() string {
	switch m {
	case ModePrime:
		return "prime"
	case ModeExtended:
		return "extended"
	default:
		return "off"
	}
}

const (
	// PrimeInterval is the fixed cadence during evening game hours. It is
	// not user-tunable.
	PrimeInterval = 30 * time.Second

	// DefaultExtendedInterval applies when no interval is configured.
	DefaultExtendedInterval = 60 * time.Second
)

// Cadence maps wall-clock time to a polling mode. Hour bands are evaluated
// in the reference location, which defaults to US Eastern because that is
// the timezone game schedules key off.
type Cadence struct {
	Location         *time.Location
	ExtendedInterval time.Duration
}

// Mode returns the cadence band for the given instant: 19:00-23:59 is
// prime, 12:00-18:59 is extended, midnight through 11:59 is off.
func (c Cadence) Mode(now time.Time) Mode {
	h := now.In(c.location()).Hour()
	switch {
	case h >= 19:
		return ModePrime
	case h >= 12:
		return ModeExtended
	default:
		return ModeOff
	}
}

// Interval returns the refresh target for a mode and whether automatic
// polling is active at all in that mode.
func (c Cadence) Interval(m Mode) (time.Duration, bool) {
	switch m {
	case ModePrime:
		return PrimeInterval, true
	case ModeExtended:
		if c.ExtendedInterval <= 0 {
			return DefaultExtendedInterval, true
		}
		return c.ExtendedInterval, true
	default:
		return 0, false
	}
}

func (c Cadence) location() *time.Location {
	if c.Location != nil {
		return c.Location
	}
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.UTC
	}
	return loc
}
