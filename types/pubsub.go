package types

import "context"

// AnnouncementPub publishes subject deletion announcements to downstream
// subscribers.
//
// Implementations live outside the controller; the NATS-backed one is in the
// pubsub package. Tests substitute in-memory fakes.
type AnnouncementPub interface {
	// Publish delivers the announcement fire-and-forget, without collecting
	// acknowledgements.
	Publish(ctx context.Context, ann *SubjectDeletionAnnouncement) error

	// PublishWithAcks publishes the announcement and starts an ephemeral
	// aggregator that collects the requested acknowledgements within the
	// configured timeout. Exactly one AckResult is delivered to replyTo
	// (unless ctx is cancelled first): the aggregated acknowledgements, with
	// missing labels filled in as request timeouts, or an error describing
	// the failure.
	PublishWithAcks(ctx context.Context, ann *SubjectDeletionAnnouncement, replyTo chan<- AckResult)
}

// CommandForwarder transmits delete commands to the policy persistence
// engine. Fire-and-forget at this layer; confirmation arrives asynchronously
// as a subject-deleted event.
type CommandForwarder interface {
	Tell(cmd *DeleteExpiredSubject)
}
