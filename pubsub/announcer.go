package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/policyforge/lapse/internal/logging"
	"github.com/policyforge/lapse/types"
)

// Announcer publishes subject deletion announcements over core NATS and
// aggregates acknowledgements.
//
// Aggregation is scatter-gather: the announcement is published with a reply
// inbox, every subscriber responds with one acknowledgement per label it
// serves, and the aggregator collects responses until every requested label
// answered or the deadline passes. Labels still missing at the deadline are
// filled in with request-timeout acknowledgements, so the controller's
// redelivery rule treats silent subscribers as transient failures.
type Announcer struct {
	nc     *nats.Conn
	cfg    Config
	logger types.Logger
}

var _ types.AnnouncementPub = (*Announcer)(nil)

// NewAnnouncer creates an announcement publisher on the given connection.
//
// Parameters:
//   - nc: NATS connection
//   - cfg: Transport configuration (defaults applied for zero fields)
//   - logger: Logger instance, nil for no logging
//
// Returns:
//   - *Announcer: Initialized announcer
func NewAnnouncer(nc *nats.Conn, cfg Config, logger types.Logger) *Announcer {
	ApplyDefaults(&cfg)
	if logger == nil {
		logger = logging.NewNop()
	}

	return &Announcer{nc: nc, cfg: cfg, logger: logger}
}

// Publish delivers the announcement fire-and-forget.
func (a *Announcer) Publish(_ context.Context, ann *types.SubjectDeletionAnnouncement) error {
	data, err := json.Marshal(ann)
	if err != nil {
		return fmt.Errorf("failed to marshal announcement: %w", err)
	}

	subject := announcementSubject(a.cfg.AnnouncementPrefix, ann.PolicyID.String())
	if err := a.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish announcement: %w", err)
	}

	return nil
}

// PublishWithAcks publishes the announcement and aggregates the requested
// acknowledgements in a background goroutine. Exactly one types.AckResult is
// delivered to replyTo unless ctx is cancelled first.
func (a *Announcer) PublishWithAcks(ctx context.Context, ann *types.SubjectDeletionAnnouncement, replyTo chan<- types.AckResult) {
	go func() {
		result := a.collect(ctx, ann)
		select {
		case replyTo <- result:
		case <-ctx.Done():
		}
	}()
}

// collect publishes one announcement and gathers its acknowledgements.
func (a *Announcer) collect(ctx context.Context, ann *types.SubjectDeletionAnnouncement) types.AckResult {
	correlationID := ann.Headers.CorrelationID

	data, err := json.Marshal(ann)
	if err != nil {
		return errResult(types.StatusInternalError, fmt.Sprintf("failed to marshal announcement: %v", err), correlationID)
	}

	inbox := a.nc.NewRespInbox()
	sub, err := a.nc.SubscribeSync(inbox)
	if err != nil {
		return errResult(types.StatusServiceUnavail, fmt.Sprintf("failed to subscribe to ack inbox: %v", err), correlationID)
	}
	defer func() { _ = sub.Unsubscribe() }()

	msg := &nats.Msg{
		Subject: announcementSubject(a.cfg.AnnouncementPrefix, ann.PolicyID.String()),
		Reply:   inbox,
		Data:    data,
	}
	if err := a.nc.PublishMsg(msg); err != nil {
		return errResult(types.StatusServiceUnavail, fmt.Sprintf("failed to publish announcement: %v", err), correlationID)
	}

	pending := make(map[types.AckLabel]struct{}, len(ann.Headers.AckRequests))
	for _, label := range ann.Headers.AckRequests {
		pending[label] = struct{}{}
	}
	acks := make(types.Acknowledgements, 0, len(pending))

	deadline := time.Now().Add(a.ackTimeout(ann.Headers.Timeout))
	for len(pending) > 0 {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		if err := ctx.Err(); err != nil {
			return errResult(types.StatusRequestTimeout, "aggregation cancelled", correlationID)
		}

		reply, err := sub.NextMsg(remaining)
		if err != nil {
			if errors.Is(err, nats.ErrTimeout) {
				break
			}

			return errResult(types.StatusServiceUnavail, fmt.Sprintf("failed to receive acknowledgement: %v", err), correlationID)
		}

		var ack types.Acknowledgement
		if err := json.Unmarshal(reply.Data, &ack); err != nil {
			a.logger.Warn("discarding malformed acknowledgement",
				"correlationId", correlationID,
				"error", err,
			)

			continue
		}
		if _, wanted := pending[ack.Label]; !wanted {
			a.logger.Debug("discarding unexpected acknowledgement label",
				"label", ack.Label,
				"correlationId", correlationID,
			)

			continue
		}

		delete(pending, ack.Label)
		acks = append(acks, ack)
	}

	// Labels that never answered count as timed out; the controller's
	// redelivery rule turns them into a retry.
	for label := range pending {
		acks = append(acks, types.Acknowledgement{
			Label:         label,
			Status:        types.StatusRequestTimeout,
			CorrelationID: correlationID,
		})
	}

	a.logger.Debug("acknowledgement aggregation complete",
		"correlationId", correlationID,
		"received", len(acks)-len(pending),
		"timedOut", len(pending),
	)

	return types.AckResult{Acks: acks}
}

// ackTimeout resolves the aggregation deadline: the requested timeout when
// positive, capped at MaxAckTimeout.
func (a *Announcer) ackTimeout(requested time.Duration) time.Duration {
	if requested <= 0 || requested > a.cfg.MaxAckTimeout {
		return a.cfg.MaxAckTimeout
	}

	return requested
}

// errResult wraps an aggregation failure as an AckResult.
func errResult(status int, message, correlationID string) types.AckResult {
	return types.AckResult{Err: &types.AnnouncementError{
		Status:        status,
		Message:       message,
		CorrelationID: correlationID,
	}}
}

// AckHandler consumes one announcement and returns the acknowledgements to
// send back, one per label the consumer serves.
type AckHandler func(ann *types.SubjectDeletionAnnouncement) types.Acknowledgements

// Subscribe registers a consumer for one policy's deletion announcements.
// The handler's acknowledgements are sent to the announcement's reply inbox;
// fire-and-forget announcements (no reply inbox) skip the responses.
//
// Parameters:
//   - policyID: The policy whose announcements to consume
//   - handler: Handler invoked per announcement
//
// Returns:
//   - *nats.Subscription: Active subscription; callers own unsubscription
//   - error: Subscription error
func (a *Announcer) Subscribe(policyID types.PolicyID, handler AckHandler) (*nats.Subscription, error) {
	subject := announcementSubject(a.cfg.AnnouncementPrefix, policyID.String())

	return a.nc.Subscribe(subject, func(msg *nats.Msg) {
		var ann types.SubjectDeletionAnnouncement
		if err := json.Unmarshal(msg.Data, &ann); err != nil {
			a.logger.Warn("discarding malformed announcement", "error", err)
			return
		}

		acks := handler(&ann)
		if msg.Reply == "" {
			return
		}
		for _, ack := range acks {
			if ack.CorrelationID == "" {
				ack.CorrelationID = ann.Headers.CorrelationID
			}
			data, err := json.Marshal(ack)
			if err != nil {
				a.logger.Error("failed to marshal acknowledgement", "error", err)
				continue
			}
			if err := a.nc.Publish(msg.Reply, data); err != nil {
				a.logger.Error("failed to send acknowledgement", "error", err)
			}
		}
	})
}
