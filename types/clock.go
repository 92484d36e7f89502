package types

import "time"

// Timer is a handle to a pending single-shot timer created by a Clock.
type Timer interface {
	// Stop prevents the timer from firing. It returns false if the timer has
	// already fired or been stopped. Stop does not guarantee that a callback
	// already in flight is suppressed; callers that need exact
	// cancelled-means-no-delivery semantics must layer a generation check on
	// top (the controller does this for its named timers).
	Stop() bool
}

// Clock provides the current wall-clock instant and single-shot timers.
//
// Production code uses the system clock; tests inject a manual clock so
// timer-driven behavior can be exercised deterministically.
type Clock interface {
	// Now returns the current wall-clock time.
	Now() time.Time

	// AfterFunc schedules fn to run in its own goroutine after d has elapsed
	// and returns a handle that can stop the pending invocation.
	AfterFunc(d time.Duration, fn func()) Timer
}
