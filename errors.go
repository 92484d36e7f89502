package lapse

import "errors"

// Sentinel errors returned by the Controller and Supervisor.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidSubject is returned when the subject descriptor is invalid.
	ErrInvalidSubject = errors.New("invalid subject")

	// ErrAnnouncementPubRequired is returned when the announcement publisher is nil.
	ErrAnnouncementPubRequired = errors.New("announcement publisher is required")

	// ErrCommandForwarderRequired is returned when the command forwarder is nil.
	ErrCommandForwarderRequired = errors.New("command forwarder is required")

	// ErrPolicyIDRequired is returned when the policy id is empty.
	ErrPolicyIDRequired = errors.New("policy id is required")

	// ErrAlreadyStarted is returned when Start is called on a running controller.
	ErrAlreadyStarted = errors.New("controller already started")

	// ErrStopped is returned when an operation is attempted on a stopped
	// controller or supervisor.
	ErrStopped = errors.New("controller stopped")
)
