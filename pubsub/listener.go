package pubsub

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/policyforge/lapse/internal/logging"
	"github.com/policyforge/lapse/types"
)

// DeletionListener consumes subject-deleted events emitted by the policy
// persistence engine and hands them to a callback, typically
// Supervisor.SubjectDeleted.
type DeletionListener struct {
	nc     *nats.Conn
	cfg    Config
	logger types.Logger
}

// NewDeletionListener creates a listener on the given connection.
//
// Parameters:
//   - nc: NATS connection
//   - cfg: Transport configuration (defaults applied for zero fields)
//   - logger: Logger instance, nil for no logging
//
// Returns:
//   - *DeletionListener: Initialized listener
func NewDeletionListener(nc *nats.Conn, cfg Config, logger types.Logger) *DeletionListener {
	ApplyDefaults(&cfg)
	if logger == nil {
		logger = logging.NewNop()
	}

	return &DeletionListener{nc: nc, cfg: cfg, logger: logger}
}

// Listen subscribes to one policy's deletion events.
//
// Parameters:
//   - policyID: The policy whose events to consume
//   - handler: Callback invoked per event
//
// Returns:
//   - *nats.Subscription: Active subscription; callers own unsubscription
//   - error: Subscription error
func (l *DeletionListener) Listen(policyID types.PolicyID, handler func(types.SubjectDeletedEvent)) (*nats.Subscription, error) {
	subject := eventSubject(l.cfg.EventPrefix, policyID.String())

	return l.nc.Subscribe(subject, func(msg *nats.Msg) {
		var ev types.SubjectDeletedEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			l.logger.Warn("discarding malformed deletion event", "error", err)
			return
		}
		handler(ev)
	})
}

// PublishDeleted emits a subject-deleted event for one policy subject. The
// persistence engine calls this after removing the subject; tests use it to
// simulate confirmations.
//
// Parameters:
//   - ev: The deletion event
//
// Returns:
//   - error: Marshal or publish error
func (l *DeletionListener) PublishDeleted(ev types.SubjectDeletedEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal deletion event: %w", err)
	}

	subject := eventSubject(l.cfg.EventPrefix, ev.PolicyID.String())
	if err := l.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish deletion event: %w", err)
	}

	return nil
}
