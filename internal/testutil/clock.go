package testutil

import (
	"sync"
	"time"
)

// FixedClock is a test time source that only moves when told to.
//
// The same scenario with the same FixedClock stamps identical $TDCREATE
// and $TDUPDATE values, so exported files can be compared with golden
// files.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

// Epoch is the default time of a FixedClock: 2020-01-01 12:00:00 UTC,
// Julian date 2458850.0.
var Epoch = time.Date(2020, time.January, 1, 12, 0, 0, 0, time.UTC)

// NewFixedClock creates a clock reading t. A zero t reads Epoch.
func NewFixedClock(t time.Time) *FixedClock {
	if t.IsZero() {
		t = Epoch
	}
	return &FixedClock{now: t}
}

// Now returns the current reading.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Reset moves the clock back to t, Epoch if t is zero.
func (c *FixedClock) Reset(t time.Time) {
	if t.IsZero() {
		t = Epoch
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
