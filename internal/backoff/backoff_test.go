package backoff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNext_NeverDecreases(t *testing.T) {
	gen := New(30*time.Minute, 1.0, 42)

	current := time.Second
	for i := 0; i < 50; i++ {
		next := gen.Next(current)
		require.GreaterOrEqual(t, next, current, "backoff must not decrease at step %d", i)
		require.LessOrEqual(t, next, 30*time.Minute, "backoff must not exceed the cap at step %d", i)
		current = next
	}
}

func TestNext_ReachesCap(t *testing.T) {
	gen := New(10*time.Second, 1.0, 7)

	current := time.Second
	for i := 0; i < 20; i++ {
		current = gen.Next(current)
	}
	require.Equal(t, 10*time.Second, current)

	// Once at the cap, it stays there.
	require.Equal(t, 10*time.Second, gen.Next(current))
}

func TestNext_ZeroRandomFactor(t *testing.T) {
	// With randomFactor 0 the jitter term vanishes and growth is exactly 1.5x.
	gen := New(time.Hour, 0, 1)

	require.Equal(t, 1500*time.Millisecond, gen.Next(time.Second))
	require.Equal(t, 3*time.Second, gen.Next(2*time.Second))
}

func TestNext_NegativeRandomFactorTreatedAsZero(t *testing.T) {
	gen := New(time.Hour, -5.0, 1)

	require.Equal(t, 1500*time.Millisecond, gen.Next(time.Second))
}

func TestNext_CurrentAboveCap(t *testing.T) {
	gen := New(5*time.Second, 1.0, 3)

	// current > max: base is clamped, result exceeds neither bound.
	require.Equal(t, 5*time.Second, gen.Next(time.Minute))
}

func TestNext_Deterministic(t *testing.T) {
	a := New(30*time.Minute, 1.0, 99)
	b := New(30*time.Minute, 1.0, 99)

	current := time.Second
	for i := 0; i < 10; i++ {
		nextA := a.Next(current)
		nextB := b.Next(current)
		require.Equal(t, nextA, nextB, "seeded generators must agree at step %d", i)
		current = nextA
	}
}

func TestNext_JitterWithinBounds(t *testing.T) {
	gen := New(time.Hour, 1.0, 1234)

	// factor is in [0.5, 1.0), so next is in [1.5*current, 2*current).
	current := 10 * time.Second
	for i := 0; i < 100; i++ {
		next := gen.Next(current)
		require.GreaterOrEqual(t, next, current+current/2)
		require.Less(t, next, 2*current)
	}
}
