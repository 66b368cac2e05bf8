package replay

import (
	"sort"
	"sync"
	"time"
)

// Timer is a pending callback that can be cancelled.
type Timer interface {
	// Stop prevents the timer from firing. It returns false if the timer
	// already fired or was stopped.
	Stop() bool
}

// Clock schedules one shot callbacks.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// SystemClock schedules callbacks on wall clock time.
type SystemClock struct{}

// AfterFunc calls f in its own goroutine after d.
func (SystemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// ManualClock is a virtual clock. Time moves only when Advance or
// AdvanceToNext is called; due callbacks run synchronously in the calling
// goroutine, ordered by deadline then by scheduling order.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Duration
	seq    uint64
	timers []*manualTimer
}

type manualTimer struct {
	clock    *ManualClock
	deadline time.Duration
	seq      uint64
	fn       func()
}

// NewManualClock creates a virtual clock positioned at zero.
func NewManualClock() *ManualClock {
	return &ManualClock{}
}

// AfterFunc schedules f to run once the clock advanced by d.
func (c *ManualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	t := &manualTimer{clock: c, deadline: c.now + max(d, 0), seq: c.seq, fn: f}
	c.timers = append(c.timers, t)
	return t
}

// Stop removes the timer from the clock.
func (t *manualTimer) Stop() bool {
	c := t.clock
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, pending := range c.timers {
		if pending == t {
			c.timers = append(c.timers[:i], c.timers[i+1:]...)
			return true
		}
	}
	return false
}

// Now returns the virtual time elapsed since the clock was created.
func (c *ManualClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Pending returns the number of timers not yet fired or stopped.
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// Next returns the time left until the earliest pending timer.
func (c *ManualClock) Next() (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.earliest()
	if t == nil {
		return 0, false
	}
	return t.deadline - c.now, true
}

// Advance moves the clock forward by d, firing every timer that becomes due,
// including timers scheduled by callbacks fired along the way.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + max(d, 0)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		t := c.earliest()
		if t == nil || t.deadline > target {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.remove(t)
		c.now = t.deadline
		c.mu.Unlock()

		t.fn() // must run without the lock, callbacks schedule new timers
	}
}

// AdvanceToNext moves the clock to the earliest pending deadline and fires
// the timers due at that instant. It returns false if nothing is pending.
func (c *ManualClock) AdvanceToNext() bool {
	d, ok := c.Next()
	if !ok {
		return false
	}
	c.Advance(d)
	return true
}

func (c *ManualClock) earliest() *manualTimer {
	if len(c.timers) == 0 {
		return nil
	}
	sort.SliceStable(c.timers, func(i, j int) bool {
		if c.timers[i].deadline == c.timers[j].deadline {
			return c.timers[i].seq < c.timers[j].seq
		}
		return c.timers[i].deadline < c.timers[j].deadline
	})
	return c.timers[0]
}

func (c *ManualClock) remove(t *manualTimer) {
	for i, pending := range c.timers {
		if pending == t {
			c.timers = append(c.timers[:i], c.timers[i+1:]...)
			return
		}
	}
}
