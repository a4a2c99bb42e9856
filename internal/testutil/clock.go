package testutil

import (
	"sync"
	"time"
)

// Clock is a manually advanced clock for cache time travel in tests.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock starts at a fixed Monday afternoon, UTC.
func NewClock() *Clock {
	return &Clock{now: time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
