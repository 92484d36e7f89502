package types

// MetricsCollector receives controller lifecycle metrics.
//
// Implementations must be safe for concurrent use; multiple controllers
// report into the same collector. A no-op implementation is the default,
// a Prometheus-backed one is available in internal/metrics.
type MetricsCollector interface {
	// RecordStateTransition records a controller state change.
	RecordStateTransition(from, to State)

	// RecordAnnouncementPublished records one published deletion
	// announcement for the given policy.
	RecordAnnouncementPublished(policyID string)

	// RecordAckOutcome records the outcome of one acknowledgement
	// collection: "acknowledged", "retry" or "terminal".
	RecordAckOutcome(outcome string)

	// RecordRetryBackoff records the backoff duration in seconds chosen for
	// an announcement retry.
	RecordRetryBackoff(seconds float64)

	// RecordDeleteCommand records one forwarded delete command for the
	// given policy.
	RecordDeleteCommand(policyID string)

	// RecordControllerStopped records controller termination with its final
	// state.
	RecordControllerStopped(finalState State)

	// SetActiveControllers reports the current number of live controllers
	// tracked by a supervisor.
	SetActiveControllers(n int)
}
