// Package metrics provides types.MetricsCollector implementations.
package metrics

import "github.com/policyforge/lapse/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external
// metrics collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A new no-op metrics collector instance
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// RecordStateTransition discards the state transition metric.
func (n *NopMetrics) RecordStateTransition(_ /* from */, _ /* to */ types.State) {
	// No-op
}

// RecordAnnouncementPublished discards the announcement counter.
func (n *NopMetrics) RecordAnnouncementPublished(_ /* policyID */ string) {
	// No-op
}

// RecordAckOutcome discards the acknowledgement outcome counter.
func (n *NopMetrics) RecordAckOutcome(_ /* outcome */ string) {
	// No-op
}

// RecordRetryBackoff discards the retry backoff observation.
func (n *NopMetrics) RecordRetryBackoff(_ /* seconds */ float64) {
	// No-op
}

// RecordDeleteCommand discards the delete command counter.
func (n *NopMetrics) RecordDeleteCommand(_ /* policyID */ string) {
	// No-op
}

// RecordControllerStopped discards the controller termination metric.
func (n *NopMetrics) RecordControllerStopped(_ /* finalState */ types.State) {
	// No-op
}

// SetActiveControllers discards the active controllers gauge.
func (n *NopMetrics) SetActiveControllers(_ /* n */ int) {
	// No-op
}
