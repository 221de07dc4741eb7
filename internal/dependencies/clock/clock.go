// Package clock lets the cache and the session form read the time through
// an injectable source.
package clock

import "time"

// Clock reports the current time
type Clock interface {
	Now() time.Time
}

// Func adapts an ordinary function to Clock
type Func func() time.Time

func (f Func) Now() time.Time { return f() }

// System reads the host's wall clock
var System Clock = Func(time.Now)

// New returns the system clock
func New() Clock {
	return System
}

// StartOfMinute is c's current time with seconds dropped. Session start
// times are entered to the minute.
func StartOfMinute(c Clock) time.Time {
	return c.Now().Truncate(time.Minute)
}
