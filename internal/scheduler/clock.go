package scheduler

import (
	"sync"
	"time"
)

// Timer fires once at its deadline
type Timer interface {
	C() <-chan time.Time
	Stop() bool
}

// Clock provides current time and deadline timers
type Clock interface {
	Now() time.Time
	NewTimer(deadline time.Time) Timer
}

// RealClock is a Clock backed by package time
type RealClock struct{}

// Now implementation
func (RealClock) Now() time.Time {
	return time.Now()
}

// NewTimer implementation
func (RealClock) NewTimer(deadline time.Time) Timer {
	return realTimer{Timer: time.NewTimer(time.Until(deadline))}
}

type realTimer struct {
	*time.Timer
}

func (t realTimer) C() <-chan time.Time {
	return t.Timer.C
}

// ManualClock is a Clock that moves only when advanced
type ManualClock struct {
	now    time.Time
	timers []*manualTimer
	m      sync.Mutex
}

// NewManualClock returns clock stopped at given time
func NewManualClock(now time.Time) *ManualClock {
	return &ManualClock{now: now}
}

// Now implementation
func (c *ManualClock) Now() time.Time {
	c.m.Lock()
	defer c.m.Unlock()

	return c.now
}

// NewTimer implementation
func (c *ManualClock) NewTimer(deadline time.Time) Timer {
	c.m.Lock()
	defer c.m.Unlock()

	t := &manualTimer{
		deadline: deadline,
		ch:       make(chan time.Time, 1),
		clock:    c,
	}

	if !deadline.After(c.now) {
		t.ch <- c.now
		return t
	}

	c.timers = append(c.timers, t)

	return t
}

// Advance moves clock forward and fires expired timers
func (c *ManualClock) Advance(d time.Duration) {
	c.m.Lock()
	defer c.m.Unlock()

	c.now = c.now.Add(d)

	pending := c.timers[:0]

	for _, t := range c.timers {
		if t.deadline.After(c.now) {
			pending = append(pending, t)
			continue
		}

		t.ch <- c.now
	}

	c.timers = pending
}

// Waiters returns number of armed timers
func (c *ManualClock) Waiters() int {
	c.m.Lock()
	defer c.m.Unlock()

	return len(c.timers)
}

type manualTimer struct {
	deadline time.Time
	ch       chan time.Time
	clock    *ManualClock
}

func (t *manualTimer) C() <-chan time.Time {
	return t.ch
}

func (t *manualTimer) Stop() bool {
	t.clock.m.Lock()
	defer t.clock.m.Unlock()

	for i, v := range t.clock.timers {
		if v == t {
			t.clock.timers = append(t.clock.timers[:i], t.clock.timers[i+1:]...)
			return true
		}
	}

	return false
}
