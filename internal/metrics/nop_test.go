package metrics

import (
	"testing"

	"github.com/policyforge/lapse/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestNewNop(t *testing.T) {
	collector := NewNop()

	require.NotNil(t, collector)
	require.IsType(t, &NopMetrics{}, collector)
}

func TestNopMetrics_DoesNotPanic(t *testing.T) {
	collector := NewNop()

	require.NotPanics(t, func() {
		collector.RecordStateTransition(types.StateToAnnounce, types.StateToAcknowledge)
		collector.RecordStateTransition(types.State(999), types.State(1000))
		collector.RecordAnnouncementPublished("ns:policy")
		collector.RecordAckOutcome("retry")
		collector.RecordRetryBackoff(1.5)
		collector.RecordRetryBackoff(-1)
		collector.RecordDeleteCommand("")
		collector.RecordControllerStopped(types.StateDeleted)
		collector.SetActiveControllers(0)
		collector.SetActiveControllers(-1)
	})
}

func TestPrometheusCollector_Register(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := NewPrometheus(reg, "lapse_test")

	collector.RecordStateTransition(types.StateToAnnounce, types.StateToAcknowledge)
	collector.RecordAnnouncementPublished("ns:policy")
	collector.RecordAckOutcome("acknowledged")
	collector.RecordRetryBackoff(2.0)
	collector.RecordDeleteCommand("ns:policy")
	collector.RecordControllerStopped(types.StateDeleted)
	collector.SetActiveControllers(3)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	require.True(t, names["lapse_test_controller_state_transitions_total"])
	require.True(t, names["lapse_test_controller_announcements_published_total"])
	require.True(t, names["lapse_test_supervisor_active_controllers"])
}

func TestPrometheusCollector_SharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()

	first := NewPrometheus(reg, "lapse_test")
	first.SetActiveControllers(1)

	// A second collector on the same registry must tolerate the already
	// registered metrics instead of panicking.
	second := NewPrometheus(reg, "lapse_test")
	require.NotPanics(t, func() {
		second.SetActiveControllers(2)
	})
}
