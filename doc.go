// Package lapse provides a Go library for managing the end-of-life of policy
// subjects: timed deletion announcements, acknowledgement collection with
// bounded retries, and idempotent deletion of expired subjects.
//
// A subject is an authorization principal attached to a policy. Each subject
// may carry an expiry instant and an announcement configuration describing
// how downstream subscribers are notified before (and optionally after) the
// subject is removed. Lapse runs one Controller per expiring subject. The
// controller schedules the pre-expiry announcement, publishes it through an
// acknowledgement aggregator, retries transient failures under jittered
// exponential backoff within a grace period, forwards the delete command at
// expiry, and waits for the deletion confirmation.
//
// # Quick Start
//
// Basic usage with the NATS transport:
//
//	import (
//	    "github.com/policyforge/lapse"
//	    "github.com/policyforge/lapse/pubsub"
//	)
//
//	cfg := lapse.DefaultConfig()
//	transportCfg := pubsub.DefaultConfig()
//
//	announcer := pubsub.NewAnnouncer(natsConn, transportCfg, logger)
//	forwarder, err := pubsub.NewForwarder(ctx, natsConn, transportCfg, logger)
//
//	sup, err := lapse.NewSupervisor("ns:policy", cfg, announcer, forwarder)
//	sup.Track(subject)
//	defer sup.Stop()
//
// Deletion confirmations from the persistence engine are routed into the
// supervisor, typically through pubsub.DeletionListener:
//
//	listener := pubsub.NewDeletionListener(natsConn, transportCfg, logger)
//	sub, err := listener.Listen("ns:policy", func(ev lapse.SubjectDeletedEvent) {
//	    sup.SubjectDeleted(ev.SubjectID)
//	})
//
// # Lifecycle
//
// Controllers progress through a state machine:
//
//	ToAnnounce → ToAcknowledge → ToDelete → Deleted
//
// Subjects without a pre-expiry announcement start in ToDelete. An external
// deletion observed while a when-deleted announcement is still owed moves the
// controller back to ToAnnounce for one more announcement round.
//
// Delivery is at-least-once within the grace period: announcements republished
// under retry carry fresh correlation ids, and consumers deduplicate on them.
// The delete command is published with a deduplication id so re-sends inside
// the duplicate window collapse to one persisted command.
//
// # Testing
//
// The testing subpackage provides an embedded NATS server, a test logger, and
// a manual clock. Controllers accept the clock and a backoff seed through
// options, so timer-driven behavior is fully deterministic in tests.
package lapse
