package pubsub

import (
	"fmt"
	"time"
)

// Config is the configuration for the NATS transport.
//
// All duration fields accept standard Go duration strings like "5s", "2m"
// when unmarshalled from YAML.
type Config struct {
	// AnnouncementPrefix is the subject prefix for deletion announcements.
	// Announcements are published on <prefix>.<policy-token>.
	AnnouncementPrefix string `yaml:"announcementPrefix"`

	// CommandPrefix is the subject prefix for delete commands.
	// Commands are published on <prefix>.<policy-token>.<subject-token>.
	CommandPrefix string `yaml:"commandPrefix"`

	// EventPrefix is the subject prefix for subject-deleted events.
	// Events are published on <prefix>.<policy-token>.
	EventPrefix string `yaml:"eventPrefix"`

	// CommandStream is the JetStream stream persisting delete commands.
	CommandStream string `yaml:"commandStream"`

	// DedupWindow is the JetStream duplicate-detection window on the command
	// stream. Transport retries of a send within this window collapse.
	DedupWindow time.Duration `yaml:"dedupWindow"`

	// MaxAckTimeout caps how long acknowledgement aggregation waits for one
	// announcement, regardless of the timeout requested in the announcement
	// headers.
	MaxAckTimeout time.Duration `yaml:"maxAckTimeout"`

	// PublishTimeout bounds a single JetStream publish.
	PublishTimeout time.Duration `yaml:"publishTimeout"`
}

// DefaultConfig returns a Config with sensible defaults.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		AnnouncementPrefix: "lapse.announcements",
		CommandPrefix:      "lapse.commands",
		EventPrefix:        "lapse.events",
		CommandStream:      "LAPSE_COMMANDS",
		DedupWindow:        2 * time.Minute,
		MaxAckTimeout:      60 * time.Second,
		PublishTimeout:     5 * time.Second,
	}
}

// ApplyDefaults fills in missing configuration values with production defaults.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func ApplyDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.AnnouncementPrefix == "" {
		cfg.AnnouncementPrefix = defaults.AnnouncementPrefix
	}
	if cfg.CommandPrefix == "" {
		cfg.CommandPrefix = defaults.CommandPrefix
	}
	if cfg.EventPrefix == "" {
		cfg.EventPrefix = defaults.EventPrefix
	}
	if cfg.CommandStream == "" {
		cfg.CommandStream = defaults.CommandStream
	}
	if cfg.DedupWindow == 0 {
		cfg.DedupWindow = defaults.DedupWindow
	}
	if cfg.MaxAckTimeout == 0 {
		cfg.MaxAckTimeout = defaults.MaxAckTimeout
	}
	if cfg.PublishTimeout == 0 {
		cfg.PublishTimeout = defaults.PublishTimeout
	}
}

// Validate checks configuration constraints and returns an error for invalid values.
//
// Returns:
//   - error: Validation error with clear explanation, nil if valid
func (cfg *Config) Validate() error {
	for name, prefix := range map[string]string{
		"AnnouncementPrefix": cfg.AnnouncementPrefix,
		"CommandPrefix":      cfg.CommandPrefix,
		"EventPrefix":        cfg.EventPrefix,
	} {
		if prefix == "" {
			return fmt.Errorf("%s must not be empty", name)
		}
		if err := validateSubjectPrefix(prefix); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	if cfg.CommandStream == "" {
		return fmt.Errorf("CommandStream must not be empty")
	}

	if cfg.DedupWindow < 0 {
		return fmt.Errorf("DedupWindow must not be negative, got %v", cfg.DedupWindow)
	}

	if cfg.MaxAckTimeout <= 0 {
		return fmt.Errorf("MaxAckTimeout must be > 0, got %v", cfg.MaxAckTimeout)
	}

	if cfg.PublishTimeout <= 0 {
		return fmt.Errorf("PublishTimeout must be > 0, got %v", cfg.PublishTimeout)
	}

	return nil
}
