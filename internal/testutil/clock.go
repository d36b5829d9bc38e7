package testutil

import (
	"sync"
	"time"
)

// Today is the calendar date fixed clocks and contexts report by default.
var Today = time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)

// Clock is a settable clock for tests. It implements reqctx.Clock.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock creates a clock reading t. A zero t means Today.
func NewClock(t time.Time) *Clock {
	if t.IsZero() {
		t = Today
	}
	return &Clock{now: t}
}

// Now returns the current reading.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// AdvanceDays moves the clock by n calendar days (negative moves back).
func (c *Clock) AdvanceDays(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.AddDate(0, 0, n)
}
