package types

import (
	"errors"
	"time"
)

// PolicyID identifies the policy that owns a subject.
type PolicyID string

// String returns the raw policy id.
func (p PolicyID) String() string {
	return string(p)
}

// AckLabel names an acknowledgement a downstream consumer can issue for an
// announcement, e.g. "connectivity:sync".
type AckLabel string

// SubjectAnnouncement configures how and when subscribers are notified that
// a subject is about to vanish or has vanished.
type SubjectAnnouncement struct {
	// BeforeExpiry is how long before the subject's expiry the deletion
	// announcement is published. Nil disables the pre-expiry announcement.
	BeforeExpiry *time.Duration `json:"beforeExpiry,omitempty" yaml:"beforeExpiry,omitempty"`

	// WhenDeleted requests an additional announcement after the subject has
	// actually been deleted.
	WhenDeleted bool `json:"whenDeleted" yaml:"whenDeleted"`

	// RequestedAckLabels lists the acknowledgements the announcement must
	// collect before it counts as delivered. Empty means fire-and-forget.
	RequestedAckLabels []AckLabel `json:"requestedAcks,omitempty" yaml:"requestedAcks,omitempty"`

	// RequestedAcksTimeout bounds the acknowledgement aggregation for one
	// announcement. Zero falls back to the controller's MaxTimeout.
	RequestedAcksTimeout time.Duration `json:"requestedAcksTimeout,omitempty" yaml:"requestedAcksTimeout,omitempty"`
}

// Subject is an authorization principal attached to a policy. It is the
// controller's unit of lifecycle and is immutable for the controller's
// lifetime.
type Subject struct {
	// ID is the opaque subject identifier, e.g. "integration:my-solution:client".
	ID string `json:"id" yaml:"id"`

	// Expiry is the absolute instant at which the subject must be removed
	// from the policy. Nil means the subject does not expire by itself.
	Expiry *time.Time `json:"expiry,omitempty" yaml:"expiry,omitempty"`

	// Announcement configures deletion announcements. Nil disables them.
	Announcement *SubjectAnnouncement `json:"announcement,omitempty" yaml:"announcement,omitempty"`
}

// Validate checks that the subject descriptor is internally consistent.
func (s *Subject) Validate() error {
	if s.ID == "" {
		return errors.New("subject id is required")
	}
	if s.Announcement != nil {
		if s.Announcement.BeforeExpiry != nil && *s.Announcement.BeforeExpiry < 0 {
			return errors.New("announcement beforeExpiry must not be negative")
		}
		if s.Announcement.RequestedAcksTimeout < 0 {
			return errors.New("announcement requestedAcksTimeout must not be negative")
		}
	}

	return nil
}

// ShouldAnnounceWhenDeleted reports whether a post-deletion announcement is
// configured for the subject.
func (s *Subject) ShouldAnnounceWhenDeleted() bool {
	return s.Announcement != nil && s.Announcement.WhenDeleted
}
