package service

import "time"

// Clock supplies the instant every transition is stamped with. Injected so a
// fixed instant can drive a whole modify-then-query scenario in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// SystemClock returns the wall clock, in UTC.
func SystemClock() Clock {
	return systemClock{}
}

// FixedClock always returns Instant. Advance moves it forward explicitly.
type FixedClock struct {
	Instant time.Time
}

// NewFixedClock pins the clock to the given instant.
func NewFixedClock(instant time.Time) *FixedClock {
	return &FixedClock{Instant: instant.UTC()}
}

func (c *FixedClock) Now() time.Time {
	return c.Instant
}

// Advance moves the clock forward by d and returns the new instant.
func (c *FixedClock) Advance(d time.Duration) time.Time {
	c.Instant = c.Instant.Add(d)
	return c.Instant
}
