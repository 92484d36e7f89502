package metrics

import (
	"sync"

	"github.com/policyforge/lapse/types"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	stateTransitions      *prometheus.CounterVec
	announcements         *prometheus.CounterVec
	ackOutcomes           *prometheus.CounterVec
	retryBackoffHistogram prometheus.Histogram
	deleteCommands        *prometheus.CounterVec
	controllersStopped    *prometheus.CounterVec
	activeControllers     prometheus.Gauge
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "lapse" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "lapse"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.stateTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "controller",
			Name:      "state_transitions_total",
			Help:      "Total controller state transitions by from/to state.",
		}, []string{"from", "to"})

		p.announcements = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "controller",
			Name:      "announcements_published_total",
			Help:      "Total subject deletion announcements published by policy.",
		}, []string{"policy"})

		p.ackOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "controller",
			Name:      "ack_outcomes_total",
			Help:      "Total acknowledgement collection outcomes (acknowledged,retry,terminal).",
		}, []string{"outcome"})

		p.retryBackoffHistogram = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "controller",
			Name:      "retry_backoff_seconds",
			Help:      "Observed announcement retry backoff durations in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12), // 500ms .. ~17m
		})

		p.deleteCommands = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "controller",
			Name:      "delete_commands_total",
			Help:      "Total forwarded delete-expired-subject commands by policy.",
		}, []string{"policy"})

		p.controllersStopped = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "controller",
			Name:      "stopped_total",
			Help:      "Total stopped controllers by final state.",
		}, []string{"state"})

		p.activeControllers = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "supervisor",
			Name:      "active_controllers",
			Help:      "Current number of live subject expiry controllers.",
		})

		collectors := []prometheus.Collector{
			p.stateTransitions,
			p.announcements,
			p.ackOutcomes,
			p.retryBackoffHistogram,
			p.deleteCommands,
			p.controllersStopped,
			p.activeControllers,
		}
		for _, c := range collectors {
			// AlreadyRegisteredError is tolerated so multiple supervisors can
			// share one registry.
			if err := p.reg.Register(c); err != nil {
				if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
					panic(err)
				}
			}
		}
	})
}

// RecordStateTransition increments the transition counter for the pair.
func (p *PrometheusCollector) RecordStateTransition(from, to types.State) {
	p.ensureRegistered()
	p.stateTransitions.WithLabelValues(from.String(), to.String()).Inc()
}

// RecordAnnouncementPublished increments the announcement counter.
func (p *PrometheusCollector) RecordAnnouncementPublished(policyID string) {
	p.ensureRegistered()
	p.announcements.WithLabelValues(policyID).Inc()
}

// RecordAckOutcome increments the acknowledgement outcome counter.
func (p *PrometheusCollector) RecordAckOutcome(outcome string) {
	p.ensureRegistered()
	p.ackOutcomes.WithLabelValues(outcome).Inc()
}

// RecordRetryBackoff observes one retry backoff duration.
func (p *PrometheusCollector) RecordRetryBackoff(seconds float64) {
	p.ensureRegistered()
	p.retryBackoffHistogram.Observe(seconds)
}

// RecordDeleteCommand increments the delete command counter.
func (p *PrometheusCollector) RecordDeleteCommand(policyID string) {
	p.ensureRegistered()
	p.deleteCommands.WithLabelValues(policyID).Inc()
}

// RecordControllerStopped increments the stopped-controller counter.
func (p *PrometheusCollector) RecordControllerStopped(finalState types.State) {
	p.ensureRegistered()
	p.controllersStopped.WithLabelValues(finalState.String()).Inc()
}

// SetActiveControllers sets the active controllers gauge.
func (p *PrometheusCollector) SetActiveControllers(n int) {
	p.ensureRegistered()
	p.activeControllers.Set(float64(n))
}
