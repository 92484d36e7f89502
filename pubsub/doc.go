// Package pubsub provides the NATS transport for subject expiry controllers.
//
// It implements the two controller-facing interfaces over NATS:
//
//   - Announcer publishes subject deletion announcements on core NATS and
//     aggregates acknowledgements scatter-gather style: the announcement is
//     published with a reply inbox, subscribers respond with one
//     acknowledgement per requested label, and labels still missing at the
//     deadline are filled in with a request-timeout acknowledgement so the
//     controller can decide on redelivery.
//
//   - Forwarder persists delete commands to a JetStream stream. Each publish
//     carries a message id for server-side deduplication, so transport-level
//     retries of the same send collapse while deliberate controller re-sends
//     (fresh correlation id) go through.
//
// DeletionListener closes the loop: it subscribes to subject-deleted events
// emitted by the policy persistence and feeds them back into a Supervisor.
//
// Example wiring:
//
//	nc, _ := nats.Connect(nats.DefaultURL)
//	cfg := pubsub.DefaultConfig()
//
//	announcer := pubsub.NewAnnouncer(nc, cfg, logger)
//	forwarder, err := pubsub.NewForwarder(ctx, nc, cfg, logger)
//	sup, err := lapse.NewSupervisor(policyID, lapse.DefaultConfig(), announcer, forwarder)
//
//	listener := pubsub.NewDeletionListener(nc, cfg, logger)
//	sub, err := listener.Listen(policyID, func(ev types.SubjectDeletedEvent) {
//	    sup.SubjectDeleted(ev.SubjectID)
//	})
package pubsub
