package mocks

import (
	"sync"
	"time"

	"github.com/mcoot/boardgametracker/internal/dependencies/clock"
)

// Epoch is where every new test clock starts: noon, 1 January 2024 UTC
var Epoch = time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

// Clock only moves when a test tells it to
type Clock struct {
	mu  sync.RWMutex
	now time.Time
}

var _ clock.Clock = (*Clock)(nil)

// NewClock returns a clock stopped at Epoch
func NewClock() *Clock {
	return &Clock{now: Epoch}
}

func (c *Clock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

// Advance moves the clock forward and returns the new reading
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// Set jumps the clock to t
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
