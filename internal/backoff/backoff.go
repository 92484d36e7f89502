// Package backoff implements the jittered exponential backoff used between
// announcement retries.
package backoff

import (
	rand "math/rand/v2"
	"time"
)

// Generator produces the next retry backoff from the current one.
//
// Given the current backoff, the next one is
//
//	base + base * (0.5 + 0.5 * randomFactor * rand())  with base = min(current, max)
//
// where rand() is uniform in [0,1). The result is clamped to max whenever it
// overflows, would shrink below the current backoff, or exceeds max. This
// guarantees strict non-decrease with bounded jitter.
type Generator struct {
	max          time.Duration
	randomFactor float64
	rng          *rand.Rand
}

// New creates a backoff generator.
//
// Parameters:
//   - max: Upper bound on any produced backoff (must be > 0)
//   - randomFactor: Non-negative jitter amplitude; negative values are treated as 0
//   - seed: RNG seed; 0 selects the shared package-level PRNG (production),
//     any other value yields a deterministic sequence for tests
//
// Returns:
//   - *Generator: A new backoff generator
func New(max time.Duration, randomFactor float64, seed int64) *Generator {
	if randomFactor < 0 {
		randomFactor = 0
	}

	return &Generator{
		max:          max,
		randomFactor: randomFactor,
		rng:          newRNG(seed),
	}
}

// Next returns the backoff to use after current.
//
// Parameters:
//   - current: The backoff used for the previous attempt
//
// Returns:
//   - time.Duration: The next backoff, current <= next <= max
func (g *Generator) Next(current time.Duration) time.Duration {
	base := current
	if base > g.max {
		base = g.max
	}

	factor := 0.5 + 0.5*g.randomFactor*g.random()
	result := base + time.Duration(float64(base)*factor)
	if result < 0 || result < current || result > g.max {
		// Overflowed, shrank, or exceeded the cap.
		return g.max
	}

	return result
}

func (g *Generator) random() float64 {
	if g.rng != nil {
		return g.rng.Float64()
	}

	return rand.Float64() //nolint:gosec // non-crypto backoff jitter
}

// newRNG returns a deterministic RNG only when a non-zero seed is provided.
// When seed == 0 it returns nil so callers use the package-level PRNG instead.
// This keeps production jitter inexpensive and avoids hidden time-based variability.
//
//nolint:gosec
func newRNG(seed int64) *rand.Rand {
	if seed == 0 {
		return nil
	}
	s1 := uint64(seed)
	s2 := s1 ^ 0x9e3779b97f4a7c15

	return rand.New(rand.NewPCG(s1, s2))
}
