package lapse

import "github.com/policyforge/lapse/types"

// Option configures a Controller or Supervisor with optional dependencies.
type Option func(*controllerOptions)

// controllerOptions holds optional Controller configuration.
type controllerOptions struct {
	logger      types.Logger
	metrics     types.MetricsCollector
	clock       types.Clock
	backoffSeed int64
	onStop      func()
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (compatible with zap.SugaredLogger)
//
// Returns:
//   - Option: Functional option for NewController / NewSupervisor
//
// Example:
//
//	logger := logging.NewSlogDefault()
//	ctrl, err := lapse.NewController(policyID, subject, cfg, pub, fwd, lapse.WithLogger(logger))
func WithLogger(logger types.Logger) Option {
	return func(o *controllerOptions) {
		o.logger = logger
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for NewController / NewSupervisor
func WithMetrics(metrics types.MetricsCollector) Option {
	return func(o *controllerOptions) {
		o.metrics = metrics
	}
}

// WithClock sets the clock used for scheduling timers.
//
// Production code uses the system clock by default; tests inject the manual
// clock from the testing subpackage for deterministic timer behavior.
//
// Parameters:
//   - clock: Clock implementation
//
// Returns:
//   - Option: Functional option for NewController / NewSupervisor
func WithClock(clock types.Clock) Option {
	return func(o *controllerOptions) {
		o.clock = clock
	}
}

// WithBackoffSeed seeds the retry backoff jitter.
//
// A zero seed (the default) uses the shared package-level PRNG. Any other
// value yields a deterministic jitter sequence, which tests rely on.
//
// Parameters:
//   - seed: RNG seed for the backoff generator
//
// Returns:
//   - Option: Functional option for NewController / NewSupervisor
func WithBackoffSeed(seed int64) Option {
	return func(o *controllerOptions) {
		o.backoffSeed = seed
	}
}

// WithStopHook registers a callback invoked exactly once after the controller
// has fully stopped, from the controller's own goroutine.
//
// The Supervisor uses this to release its tracking entry; applications can
// use it for cleanup of per-subject resources.
//
// Parameters:
//   - fn: Callback invoked on controller termination
//
// Returns:
//   - Option: Functional option for NewController
func WithStopHook(fn func()) Option {
	return func(o *controllerOptions) {
		o.onStop = fn
	}
}
