package types

import "time"

// Headers carries the metadata attached to announcements and commands.
type Headers struct {
	// CorrelationID ties retries, acknowledgements and log lines together.
	// Freshly generated for every published announcement; duplicated
	// deliveries under retry share nothing but the subject id, so consumers
	// deduplicate on this field.
	CorrelationID string `json:"correlation-id,omitempty"`

	// AckRequests lists the acknowledgement labels the publisher expects
	// collected for this message. Empty means no acknowledgements.
	AckRequests []AckLabel `json:"requested-acks,omitempty"`

	// Timeout bounds acknowledgement aggregation for this message.
	// Zero means the aggregator default applies.
	Timeout time.Duration `json:"timeout,omitempty"`

	// ResponseRequired indicates whether the receiver should send a reply.
	// Delete commands are fire-and-forget and set this to false.
	ResponseRequired bool `json:"response-required"`
}

// SubjectDeletionAnnouncement notifies subscribers that the named subjects
// of a policy will be deleted (or have been deleted) at DeleteAt.
type SubjectDeletionAnnouncement struct {
	PolicyID   PolicyID  `json:"policyId"`
	DeleteAt   time.Time `json:"deleteAt"`
	SubjectIDs []string  `json:"subjectIds"`
	Headers    Headers   `json:"headers"`
}

// DeleteExpiredSubject instructs the policy persistence engine to remove an
// expired subject from its policy. The controller never waits for a direct
// response; confirmation arrives asynchronously as a subject-deleted event.
type DeleteExpiredSubject struct {
	PolicyID  PolicyID `json:"policyId"`
	SubjectID string   `json:"subjectId"`
	Headers   Headers  `json:"headers"`
}

// SubjectDeletedEvent is emitted by the policy persistence engine once a
// subject has been removed. It drives the controller's SUBJECT_DELETED
// transitions.
type SubjectDeletedEvent struct {
	PolicyID  PolicyID `json:"policyId"`
	SubjectID string   `json:"subjectId"`
}
