package testing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestManualClockNow(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clk := NewManualClock(start)

	require.Equal(t, start, clk.Now())
	clk.Advance(time.Hour)
	require.Equal(t, start.Add(time.Hour), clk.Now())
}

func TestManualClockFiresInDeadlineOrder(t *testing.T) {
	clk := NewManualClock(time.Now())

	var fired []string
	clk.AfterFunc(2*time.Second, func() { fired = append(fired, "second") })
	clk.AfterFunc(1*time.Second, func() { fired = append(fired, "first") })
	clk.AfterFunc(3*time.Second, func() { fired = append(fired, "third") })

	clk.Advance(2 * time.Second)
	require.Equal(t, []string{"first", "second"}, fired)
	require.Equal(t, 1, clk.Pending())

	clk.Advance(time.Second)
	require.Equal(t, []string{"first", "second", "third"}, fired)
	require.Zero(t, clk.Pending())
}

func TestManualClockStop(t *testing.T) {
	clk := NewManualClock(time.Now())

	fired := false
	timer := clk.AfterFunc(time.Second, func() { fired = true })

	require.True(t, timer.Stop())
	require.False(t, timer.Stop(), "second stop reports already stopped")

	clk.Advance(2 * time.Second)
	require.False(t, fired)
}

func TestManualClockNonPositiveDelay(t *testing.T) {
	clk := NewManualClock(time.Now())

	fired := false
	clk.AfterFunc(0, func() { fired = true })
	require.False(t, fired, "manual timers never fire before Advance")

	clk.Advance(0)
	require.True(t, fired)
}

func TestManualClockCallbackMaySchedule(t *testing.T) {
	clk := NewManualClock(time.Now())

	var fired []string
	clk.AfterFunc(time.Second, func() {
		fired = append(fired, "outer")
		clk.AfterFunc(time.Second, func() { fired = append(fired, "inner") })
	})

	// The inner timer's deadline falls within the advanced window, so one
	// Advance covers both.
	clk.Advance(3 * time.Second)
	require.Equal(t, []string{"outer", "inner"}, fired)
}
