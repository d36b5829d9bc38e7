package reqctx

import "time"

// Clock supplies the current instant.
//
// Tests inject a FixedClock so date-relative compilation is reproducible.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock always returns the same instant.
type FixedClock struct {
	t time.Time
}

// NewFixedClock creates a clock frozen at t.
func NewFixedClock(t time.Time) FixedClock {
	return FixedClock{t: t}
}

// Now returns the frozen instant.
func (c FixedClock) Now() time.Time {
	return c.t
}
