package lapse

import (
	"fmt"
	"time"
)

// BackoffConfig controls the jittered exponential backoff between
// announcement retries.
type BackoffConfig struct {
	// Min is the initial backoff, i.e. the first retry delay.
	Min time.Duration `yaml:"min"`

	// Max is the upper bound on any retry backoff. It also bounds the base
	// of the jitter term, so no single retry waits longer than Max.
	Max time.Duration `yaml:"max"`

	// RandomFactor is the non-negative jitter amplitude. The jitter term is
	// base * 0.5 * RandomFactor * rand() with rand() in [0,1). A factor of 0
	// yields deterministic 1.5x growth.
	RandomFactor float64 `yaml:"randomFactor"`
}

// Config is the configuration for subject expiry controllers.
//
// All duration fields accept standard Go duration strings like "30s", "5m", "1h"
// when unmarshalled from YAML.
type Config struct {
	// GracePeriod is how long overdue announcements and deletions are
	// tolerated past the subject's expiry. Retries that would land outside
	// expiry + GracePeriod are abandoned and the subject is deleted.
	// Recommended: hours rather than minutes; announcements are worthless
	// long after the subject is gone.
	GracePeriod time.Duration `yaml:"gracePeriod"`

	// MaxTimeout is the persistence timeout. It bounds acknowledgement
	// aggregation for one announcement and is the state timeout while
	// waiting for the deletion confirmation.
	MaxTimeout time.Duration `yaml:"maxTimeout"`

	// Backoff controls retry delays for announcements that failed with a
	// transient acknowledgement status.
	Backoff BackoffConfig `yaml:"backoff"`

	// EventQueueSize is the capacity of a controller's internal event queue.
	// A controller has at most a handful of events in flight; the default
	// leaves ample headroom.
	EventQueueSize int `yaml:"eventQueueSize"`
}

// DefaultConfig returns a Config with sensible defaults.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		GracePeriod: 4 * time.Hour,
		MaxTimeout:  60 * time.Second,
		Backoff: BackoffConfig{
			Min:          1 * time.Second,
			Max:          30 * time.Minute,
			RandomFactor: 1.0,
		},
		EventQueueSize: 16,
	}
}

// ApplyDefaults fills in missing configuration values with production defaults.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func ApplyDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.GracePeriod == 0 {
		cfg.GracePeriod = defaults.GracePeriod
	}
	if cfg.MaxTimeout == 0 {
		cfg.MaxTimeout = defaults.MaxTimeout
	}
	if cfg.Backoff.Min == 0 {
		cfg.Backoff.Min = defaults.Backoff.Min
	}
	if cfg.Backoff.Max == 0 {
		cfg.Backoff.Max = defaults.Backoff.Max
	}
	if cfg.Backoff.RandomFactor == 0 {
		cfg.Backoff.RandomFactor = defaults.Backoff.RandomFactor
	}
	if cfg.EventQueueSize == 0 {
		cfg.EventQueueSize = defaults.EventQueueSize
	}
	// Note: a RandomFactor of 0 cannot be distinguished from "unset"; use a
	// tiny positive value to effectively disable jitter.
}

// Validate checks configuration constraints and returns an error for invalid values.
//
// Hard Validation Rules:
//   - GracePeriod >= 0 (negative tolerances are meaningless)
//   - MaxTimeout > 0 (aggregation and confirmation must be bounded)
//   - Backoff.Min > 0 and Backoff.Max >= Backoff.Min
//   - Backoff.RandomFactor >= 0
//   - EventQueueSize >= 4 (timer deliveries plus concurrent external events)
//
// Returns:
//   - error: Validation error with clear explanation, nil if valid
func (cfg *Config) Validate() error {
	if cfg.GracePeriod < 0 {
		return fmt.Errorf("GracePeriod must not be negative, got %v", cfg.GracePeriod)
	}

	if cfg.MaxTimeout <= 0 {
		return fmt.Errorf("MaxTimeout must be > 0, got %v", cfg.MaxTimeout)
	}

	if cfg.Backoff.Min <= 0 {
		return fmt.Errorf("Backoff.Min must be > 0, got %v", cfg.Backoff.Min)
	}

	if cfg.Backoff.Max < cfg.Backoff.Min {
		return fmt.Errorf(
			"Backoff.Max (%v) must be >= Backoff.Min (%v)",
			cfg.Backoff.Max, cfg.Backoff.Min,
		)
	}

	if cfg.Backoff.RandomFactor < 0 {
		return fmt.Errorf("Backoff.RandomFactor must not be negative, got %v", cfg.Backoff.RandomFactor)
	}

	if cfg.EventQueueSize < 4 {
		return fmt.Errorf("EventQueueSize must be >= 4, got %d", cfg.EventQueueSize)
	}

	return nil
}

// ValidateWithWarnings checks configuration and logs warnings for
// non-recommended values.
//
// This is called after Validate() in NewController() to provide operator
// guidance.
//
// Parameters:
//   - logger: Logger instance for warning output
func (cfg *Config) ValidateWithWarnings(logger Logger) {
	// A grace period shorter than one full retry round cannot absorb a
	// single transient failure.
	if cfg.GracePeriod < cfg.Backoff.Min {
		logger.Warn(
			"GracePeriod is shorter than the initial backoff, transient ack failures cannot be retried",
			"gracePeriod", cfg.GracePeriod,
			"backoffMin", cfg.Backoff.Min,
		)
	}

	if cfg.MaxTimeout < time.Second {
		logger.Warn(
			"MaxTimeout is very short, acknowledgement aggregation may time out spuriously",
			"maxTimeout", cfg.MaxTimeout,
			"recommended", "10s or higher",
		)
	}
}

// TestConfig returns a configuration optimized for fast test execution.
//
// Test timings are 10-100x faster than production defaults to enable rapid
// iteration without sacrificing coverage. Use DefaultConfig() for production
// deployments.
//
// Returns:
//   - Config: Configuration with fast timings for tests
//
// Example:
//
//	cfg := lapse.TestConfig()
//	ctrl, err := lapse.NewController(policyID, subject, cfg, pub, forwarder)
func TestConfig() Config {
	cfg := DefaultConfig()

	cfg.GracePeriod = 10 * time.Second         // 1440x faster
	cfg.MaxTimeout = 500 * time.Millisecond    // 120x faster
	cfg.Backoff.Min = 50 * time.Millisecond    // 20x faster
	cfg.Backoff.Max = 500 * time.Millisecond   // 3600x faster
	cfg.Backoff.RandomFactor = 0.000001        // effectively no jitter

	return cfg
}
