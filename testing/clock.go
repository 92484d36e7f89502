package testing

import (
	"sort"
	"sync"
	"time"

	"github.com/policyforge/lapse/types"
)

// ManualClock is a deterministic types.Clock for tests. Time only moves when
// Advance is called; timers fire synchronously inside Advance, in deadline
// order.
//
// Fired callbacks run outside the clock's lock, so they may schedule new
// timers or read Now without deadlocking. Callbacks typically only enqueue an
// event for an asynchronous consumer; pair Advance with require.Eventually
// when asserting on the consumer's reaction.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Time
	nextID int
	timers map[int]*manualTimer
}

// NewManualClock creates a manual clock starting at the given instant.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{
		now:    start,
		timers: make(map[int]*manualTimer),
	}
}

var _ types.Clock = (*ManualClock)(nil)

// Now returns the clock's current instant.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

// AfterFunc registers fn to run once the clock has advanced by d.
// A non-positive d fires on the next Advance call, even Advance(0).
func (c *ManualClock) AfterFunc(d time.Duration, fn func()) types.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	timer := &manualTimer{
		clock:    c,
		id:       c.nextID,
		deadline: c.now.Add(d),
		fn:       fn,
	}
	c.timers[timer.id] = timer

	return timer
}

// Advance moves the clock forward by d and fires every timer whose deadline
// has been reached, in deadline order. Timers scheduled by fired callbacks
// fire too when their deadline falls within the advanced window.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()

	for {
		timer := c.popDue()
		if timer == nil {
			return
		}
		timer.fn()
	}
}

// Pending returns the number of armed timers. Useful for asserting that a
// controller cancelled its timers.
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.timers)
}

// popDue removes and returns the due timer with the earliest deadline, or
// nil when no timer is due.
func (c *ManualClock) popDue() *manualTimer {
	c.mu.Lock()
	defer c.mu.Unlock()

	var due []*manualTimer
	for _, timer := range c.timers {
		if !timer.deadline.After(c.now) {
			due = append(due, timer)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].deadline.Equal(due[j].deadline) {
			return due[i].id < due[j].id
		}

		return due[i].deadline.Before(due[j].deadline)
	})

	timer := due[0]
	delete(c.timers, timer.id)

	return timer
}

type manualTimer struct {
	clock    *ManualClock
	id       int
	deadline time.Time
	fn       func()
}

var _ types.Timer = (*manualTimer)(nil)

// Stop cancels the timer. Reports whether it was still pending.
func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if _, ok := t.clock.timers[t.id]; !ok {
		return false
	}
	delete(t.clock.timers, t.id)

	return true
}
