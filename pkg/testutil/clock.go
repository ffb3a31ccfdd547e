package testutil

import (
	"sync"
	"time"
)

// TestClock is a settable clock. Pass clock.Now wherever a func() time.Time
// is injected.
type TestClock struct {
	mu  sync.Mutex
	now time.Time
}

// ClockAt returns a clock frozen at t.
func ClockAt(t time.Time) *TestClock {
	return &TestClock{now: t}
}

// ClockAtDate returns a clock frozen at midnight UTC on the given date.
func ClockAtDate(year int, month time.Month, day int) *TestClock {
	return ClockAt(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

func (c *TestClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *TestClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// AdvanceMonths moves the clock forward by calendar months.
func (c *TestClock) AdvanceMonths(months int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.AddDate(0, months, 0)
}

// SetTo moves the clock to t.
func (c *TestClock) SetTo(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
