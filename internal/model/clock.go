package model

import (
	"sync"
	"time"
)

// Clock is one side's chess-style clock. Time only drains between Start and
// Stop; the zero runningSince means the clock is paused.
type Clock struct {
	mu           sync.Mutex
	budget       time.Duration
	spent        time.Duration
	runningSince time.Time
}

func NewClock(budget time.Duration) *Clock {
	return &Clock{budget: budget}
}

func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.runningSince.IsZero() {
		c.runningSince = time.Now()
	}
}

func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.runningSince.IsZero() {
		c.spent += time.Since(c.runningSince)
		c.runningSince = time.Time{}
	}
}

// Reset pauses the clock and gives back the full budget.
func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.spent = 0
	c.runningSince = time.Time{}
}

// Remaining may go negative once the budget is used up.
func (c *Clock) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	spent := c.spent
	if !c.runningSince.IsZero() {
		spent += time.Since(c.runningSince)
	}
	return c.budget - spent
}

// Tenths is the time left in tenths of a second, as shown to clients.
func (c *Clock) Tenths() int {
	return int(max(c.Remaining(), 0) / (100 * time.Millisecond))
}
