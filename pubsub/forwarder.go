package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/policyforge/lapse/internal/logging"
	"github.com/policyforge/lapse/types"
)

// Forwarder persists delete commands to a JetStream stream.
//
// Tell is fire-and-forget from the controller's point of view: publishes run
// asynchronously and failures are logged, not returned. At-least-once
// delivery comes from the stream; exactly-once effect comes from the
// command's correlation id doubling as the JetStream message id, which
// collapses transport-level duplicates within the dedup window, and from the
// consuming persistence engine treating deletion as idempotent.
type Forwarder struct {
	js     jetstream.JetStream
	cfg    Config
	logger types.Logger

	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
}

var _ types.CommandForwarder = (*Forwarder)(nil)

// NewForwarder creates a command forwarder and ensures the command stream
// exists.
//
// Parameters:
//   - ctx: Context bounding stream creation
//   - nc: NATS connection
//   - cfg: Transport configuration (defaults applied for zero fields)
//   - logger: Logger instance, nil for no logging
//
// Returns:
//   - *Forwarder: Initialized forwarder
//   - error: JetStream or stream creation error
func NewForwarder(ctx context.Context, nc *nats.Conn, cfg Config, logger types.Logger) (*Forwarder, error) {
	if nc == nil {
		return nil, ErrConnRequired
	}
	ApplyDefaults(&cfg)
	if logger == nil {
		logger = logging.NewNop()
	}

	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        cfg.CommandStream,
		Description: "Delete commands for expired policy subjects",
		Subjects:    []string{cfg.CommandPrefix + ".>"},
		Retention:   jetstream.WorkQueuePolicy,
		Duplicates:  cfg.DedupWindow,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to ensure command stream %q: %w", cfg.CommandStream, err)
	}

	return &Forwarder{js: js, cfg: cfg, logger: logger}, nil
}

// Tell publishes one delete command asynchronously. Safe for concurrent use;
// calls after Close are dropped.
func (f *Forwarder) Tell(cmd *types.DeleteExpiredSubject) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		f.logger.Warn("dropping delete command, forwarder closed",
			"subjectId", cmd.SubjectID,
			"correlationId", cmd.Headers.CorrelationID,
		)

		return
	}
	f.wg.Add(1)
	f.mu.Unlock()

	go func() {
		defer f.wg.Done()
		f.publish(cmd)
	}()
}

// publish marshals and persists one delete command.
func (f *Forwarder) publish(cmd *types.DeleteExpiredSubject) {
	data, err := json.Marshal(cmd)
	if err != nil {
		f.logger.Error("failed to marshal delete command",
			"subjectId", cmd.SubjectID,
			"error", err,
		)

		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), f.cfg.PublishTimeout)
	defer cancel()

	subject := commandSubject(f.cfg.CommandPrefix, cmd.PolicyID.String(), cmd.SubjectID)
	_, err = f.js.Publish(ctx, subject, data, jetstream.WithMsgID(cmd.Headers.CorrelationID))
	if err != nil {
		f.logger.Error("failed to publish delete command",
			"subject", subject,
			"correlationId", cmd.Headers.CorrelationID,
			"error", err,
		)

		return
	}

	f.logger.Debug("delete command persisted",
		"subject", subject,
		"correlationId", cmd.Headers.CorrelationID,
	)
}

// Close waits for in-flight publishes to finish. The forwarder drops
// subsequent Tell calls.
func (f *Forwarder) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()

	f.wg.Wait()
}
