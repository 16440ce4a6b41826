package tracker

import (
	"sync"
	"time"
)

// Clock abstracts wall time so lifecycle timing is testable.
type Clock interface {
	Now() time.Time
	// Ticker returns a tick channel and a stop func.
	Ticker(d time.Duration) (<-chan time.Time, func())
}

// WallClock is the real thing.
type WallClock struct{}

func (WallClock) Now() time.Time { return time.Now() }

func (WallClock) Ticker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// ManualClock is a hand-cranked clock. Advance moves time forward and emits
// one tick; the tick channel is unbuffered, so Advance rendezvouses with the
// consumer.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
	ch  chan time.Time
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start, ch: make(chan time.Time)}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Ticker(d time.Duration) (<-chan time.Time, func()) {
	return c.ch, func() {}
}

// Advance moves the clock and delivers one tick. Blocks until a ticker
// consumer receives it.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now
	c.mu.Unlock()
	c.ch <- now
}
