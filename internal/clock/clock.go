// Package clock provides the production types.Clock backed by the system
// wall clock. Tests use the manual clock from the testing package instead.
package clock

import (
	"time"

	"github.com/policyforge/lapse/types"
)

type systemClock struct{}

type systemTimer struct {
	t *time.Timer
}

// Compile-time assertion that systemClock implements Clock.
var _ types.Clock = systemClock{}

// NewSystem returns a Clock backed by the system wall clock and time.AfterFunc.
func NewSystem() types.Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) AfterFunc(d time.Duration, fn func()) types.Timer {
	return systemTimer{t: time.AfterFunc(d, fn)}
}

func (s systemTimer) Stop() bool {
	return s.t.Stop()
}
