package lapse

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/policyforge/lapse/internal/backoff"
	"github.com/policyforge/lapse/internal/clock"
	"github.com/policyforge/lapse/internal/logging"
	"github.com/policyforge/lapse/internal/metrics"
	"github.com/policyforge/lapse/types"
)

// announcementWindow compensates for timer inaccuracy and scheduling delay.
// A timer firing earlier than its target by more than this window re-arms
// instead of publishing; a target closer than this window fires immediately.
const announcementWindow = 500 * time.Millisecond

// oneDay caps any single timer. Long-horizon expirations re-arm when the
// truncated timer fires early.
const oneDay = 24 * time.Hour

// message is an internal controller event.
type message int

const (
	// msgSubjectDeleted signals that the subject has been removed from the
	// persisted policy.
	msgSubjectDeleted message = iota

	// msgAcknowledged signals that a deletion announcement has been
	// acknowledged (or needed no acknowledgements).
	msgAcknowledged

	// msgAnnounce signals that it is time to publish a deletion announcement.
	msgAnnounce

	// msgDelete signals that it is time to delete the subject.
	msgDelete

	// msgStateTimeout signals that the deletion confirmation did not arrive
	// within MaxTimeout.
	msgStateTimeout
)

func (m message) String() string {
	switch m {
	case msgSubjectDeleted:
		return "SUBJECT_DELETED"
	case msgAcknowledged:
		return "ACKNOWLEDGED"
	case msgAnnounce:
		return "ANNOUNCE"
	case msgDelete:
		return "DELETE"
	case msgStateTimeout:
		return "STATE_TIMEOUT"
	default:
		return "UNKNOWN"
	}
}

// Timer names. At most one timer is active per name; rescheduling replaces.
const (
	timerAnnounce     = "ANNOUNCE"
	timerDelete       = "DELETE"
	timerStateTimeout = "STATE_TIMEOUT"
)

// timerEvent is a message delivered by a named timer. The sequence number
// lets the event loop discard deliveries from timers that were cancelled or
// replaced after the callback was already in flight.
type timerEvent struct {
	name string
	seq  uint64
	msg  message
}

// namedTimer is one armed timer plus the sequence it was armed with.
type namedTimer struct {
	timer types.Timer
	seq   uint64
}

// loopResult tells the event loop whether to keep running.
type loopResult int

const (
	loopContinue loopResult = iota
	loopStop
)

// Controller tracks deletion announcements and deletion for one expiring or
// deleted subject.
//
// A controller is a single-threaded cooperative entity: all state lives in
// one goroutine that consumes events (timers, acknowledgement results,
// external deletion notifications) strictly in arrival order. Public methods
// only inject events and are safe for concurrent use.
//
// Lifecycle:
//   - Create with NewController() and call Start()
//   - Inject deletion confirmations via SubjectDeleted()
//   - The controller terminates by itself; Stop() forces early termination
//   - Done() is closed once the controller has fully stopped
type Controller struct {
	policyID types.PolicyID
	subject  types.Subject
	cfg      Config

	pub       types.AnnouncementPub
	forwarder types.CommandForwarder
	clock     types.Clock
	backoff   *backoff.Generator
	logger    types.Logger
	metrics   types.MetricsCollector
	onStop    func()

	// Event plumbing. events carries timer deliveries and external
	// notifications; replies carries aggregator outcomes. selfQ holds the
	// loop's own sends and is owned by the run goroutine.
	events  chan any
	replies chan types.AckResult
	selfQ   []message

	ctx    context.Context
	cancel context.CancelFunc
	doneCh chan struct{}

	started  atomic.Bool
	stopOnce sync.Once

	// observable state for callers; mirrors fsmState
	observedState atomic.Int32

	// FSM state, owned by the run goroutine.
	fsmState     types.State
	nextBackOff  time.Duration
	deleted      bool
	deleteAt     time.Time
	acknowledged bool

	timers    map[string]namedTimer
	timerSeqs map[string]uint64
	seqVal    atomic.Uint64
}

// NewController creates a controller for one subject of a policy.
//
// The controller owns the subject's end of life: it decides when to emit the
// pre-expiry announcement, collects acknowledgements, retries under backoff
// within the grace period, and finally instructs the command forwarder to
// delete the expired subject.
//
// Parameters:
//   - policyID: The policy owning the subject
//   - subject: The subject descriptor (immutable for the controller's lifetime)
//   - cfg: Timing configuration (grace period, persistence timeout, backoff)
//   - pub: Announcement publisher with acknowledgement aggregation
//   - forwarder: Sink for delete commands
//   - opts: Optional configuration (logger, metrics, clock, backoff seed, stop hook)
//
// Returns:
//   - *Controller: Initialized controller (not yet started)
//   - error: Validation error if configuration or dependencies are invalid
func NewController(
	policyID types.PolicyID,
	subject types.Subject,
	cfg Config,
	pub types.AnnouncementPub,
	forwarder types.CommandForwarder,
	opts ...Option,
) (*Controller, error) {
	if policyID == "" {
		return nil, ErrPolicyIDRequired
	}
	if err := subject.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSubject, err)
	}
	if pub == nil {
		return nil, ErrAnnouncementPubRequired
	}
	if forwarder == nil {
		return nil, ErrCommandForwarderRequired
	}

	ApplyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	options := &controllerOptions{}
	for _, opt := range opts {
		opt(options)
	}

	loggerInstance := options.logger
	if loggerInstance == nil {
		loggerInstance = logging.NewNop()
	}
	cfg.ValidateWithWarnings(loggerInstance)

	metricsCollector := options.metrics
	if metricsCollector == nil {
		metricsCollector = metrics.NewNop()
	}

	clockInstance := options.clock
	if clockInstance == nil {
		clockInstance = clock.NewSystem()
	}

	ctx, cancel := context.WithCancel(context.Background())

	c := &Controller{
		policyID:    policyID,
		subject:     subject,
		cfg:         cfg,
		pub:         pub,
		forwarder:   forwarder,
		clock:       clockInstance,
		backoff:     backoff.New(cfg.Backoff.Max, cfg.Backoff.RandomFactor, options.backoffSeed),
		logger:      loggerInstance,
		metrics:     metricsCollector,
		onStop:      options.onStop,
		events:      make(chan any, cfg.EventQueueSize),
		replies:     make(chan types.AckResult, 4),
		ctx:         ctx,
		cancel:      cancel,
		doneCh:      make(chan struct{}),
		nextBackOff: cfg.Backoff.Min,
		timers:      make(map[string]namedTimer),
		timerSeqs:   make(map[string]uint64),
	}

	// deleteAt stamps announcements. It starts at the subject's expiry, or
	// at the controller-start instant for subjects without one, and is
	// restamped exactly once upon the first deletion observation.
	if subject.Expiry != nil {
		c.deleteAt = *subject.Expiry
	} else {
		c.deleteAt = clockInstance.Now()
	}

	return c, nil
}

// Start computes the initial state, schedules the first timer and begins
// processing events.
//
// Returns:
//   - error: ErrAlreadyStarted if the controller is already running
func (c *Controller) Start() error {
	if !c.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	if c.subject.Announcement != nil && c.subject.Announcement.BeforeExpiry != nil {
		c.logger.Debug("starting in ToAnnounce", "subjectId", c.subject.ID)
		c.fsmState = types.StateToAnnounce
		now := c.clock.Now()
		instant, ok := c.announcementInstant()
		if !ok {
			// No expiry to anchor on: announce right away.
			instant = now
		}
		c.scheduleAnnouncement(now, instant)
	} else {
		c.logger.Debug("starting in ToDelete", "subjectId", c.subject.ID)
		c.fsmState = types.StateToDelete
		if c.subject.Expiry != nil {
			c.goTo(c.scheduleDeleteExpiredSubject(*c.subject.Expiry))
		} else {
			// Nothing to wait for: delete immediately and await confirmation.
			c.doDelete()
			c.goTo(types.StateDeleted)
		}
	}
	c.observedState.Store(int32(c.fsmState))

	go c.run()

	return nil
}

// SubjectDeleted notifies the controller that its subject has been removed
// from the persisted policy. Safe to call repeatedly; deliveries after the
// first leave deleteAt unchanged and never revive a stopped controller.
func (c *Controller) SubjectDeleted() {
	c.enqueue(msgSubjectDeleted)
}

// Stop forces the controller to terminate. Pending timers are cancelled and
// in-flight aggregator replies are discarded. Stop does not block; use
// Done() to wait for full termination.
func (c *Controller) Stop() {
	c.cancel()

	// A controller that never started has no run goroutine to release its
	// resources; do it here. The swap also blocks a later Start.
	if c.started.CompareAndSwap(false, true) {
		c.finish()
	}
}

// Done returns a channel closed once the controller has fully stopped.
func (c *Controller) Done() <-chan struct{} {
	return c.doneCh
}

// State returns the controller's current state for observation. The value
// may be stale by the time it is read; it is intended for metrics and tests.
func (c *Controller) State() types.State {
	return types.State(c.observedState.Load())
}

// PolicyID returns the policy owning the controller's subject.
func (c *Controller) PolicyID() types.PolicyID {
	return c.policyID
}

// SubjectID returns the id of the controlled subject.
func (c *Controller) SubjectID() string {
	return c.subject.ID
}

// run is the controller's event loop. One event is processed to completion
// at a time; suspension points are exclusively between events. Self-sends
// are drained ahead of external events, so the loop keeps making progress
// even when the event queue is saturated by external notifications.
func (c *Controller) run() {
	defer c.finish()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		if len(c.selfQ) > 0 {
			msg := c.selfQ[0]
			c.selfQ = c.selfQ[1:]
			if c.handleEvent(msg) == loopStop {
				return
			}

			continue
		}

		select {
		case <-c.ctx.Done():
			return
		case ev := <-c.events:
			if c.handleEvent(ev) == loopStop {
				return
			}
		case res := <-c.replies:
			if c.handleAckResult(res) == loopStop {
				return
			}
		}
	}
}

// finish releases all controller resources. Runs exactly once, from the run
// goroutine or from Stop when the controller never started.
func (c *Controller) finish() {
	c.stopOnce.Do(func() {
		c.cancel()
		for name := range c.timers {
			c.cancelTimer(name)
		}
		finalState := c.fsmState
		c.fsmState = types.StateStopped
		c.observedState.Store(int32(types.StateStopped))
		c.metrics.RecordControllerStopped(finalState)
		c.logger.Debug("controller stopped", "subjectId", c.subject.ID, "finalState", finalState.String())
		if c.onStop != nil {
			c.onStop()
		}
		close(c.doneCh)
	})
}

// enqueue delivers an event to the event loop, giving up when the controller
// stops first.
func (c *Controller) enqueue(ev any) {
	select {
	case c.events <- ev:
	case <-c.ctx.Done():
	}
}

// enqueueSelf queues one of the loop's own messages. Self-sends bypass the
// event queue and never block, so a saturated queue cannot deadlock the
// loop. Only called from the run goroutine, or from Start before the run
// goroutine exists.
func (c *Controller) enqueueSelf(msg message) {
	c.selfQ = append(c.selfQ, msg)
}

// handleEvent dispatches one event according to the state/event table.
// Events not listed for the current state are logged and ignored.
func (c *Controller) handleEvent(ev any) loopResult {
	// Timer deliveries carry a sequence; stale ones (cancelled or replaced
	// timers) are dropped before dispatch.
	msg, ok := c.unwrap(ev)
	if !ok {
		return loopContinue
	}

	switch c.fsmState {
	case types.StateToAnnounce:
		switch msg {
		case msgAnnounce:
			return c.announce()
		case msgSubjectDeleted:
			return c.subjectDeletedInToAnnounce()
		}
	case types.StateToAcknowledge:
		switch msg {
		case msgAcknowledged:
			return c.acknowledgedInToAcknowledge()
		case msgSubjectDeleted:
			return c.subjectDeletedInToAcknowledge()
		}
	case types.StateToDelete:
		switch msg {
		case msgDelete:
			return c.deleteInToDelete()
		case msgSubjectDeleted:
			return c.subjectDeletedInToDelete()
		}
	case types.StateDeleted:
		switch msg {
		case msgSubjectDeleted:
			return c.subjectDeletedInDeleted()
		case msgStateTimeout:
			return c.timeoutInDeleted()
		}
	}

	c.logger.Warn("received unexpected message",
		"message", msg.String(),
		"state", c.fsmState.String(),
		"subjectId", c.subject.ID,
	)

	return loopContinue
}

// unwrap validates timer deliveries and extracts the plain message.
func (c *Controller) unwrap(ev any) (message, bool) {
	switch e := ev.(type) {
	case message:
		return e, true
	case timerEvent:
		if c.timerSeqs[e.name] != e.seq {
			c.logger.Debug("dropping stale timer delivery", "timer", e.name, "seq", e.seq)
			return 0, false
		}
		delete(c.timers, e.name)

		return e.msg, true
	default:
		c.logger.Warn("received unknown event", "event", fmt.Sprintf("%T", ev))
		return 0, false
	}
}

// handleAckResult processes the aggregator outcome. Outside ToAcknowledge
// the result is stale (a retry or deletion overtook it) and is ignored.
func (c *Controller) handleAckResult(res types.AckResult) loopResult {
	if c.fsmState != types.StateToAcknowledge {
		c.logger.Warn("ignoring acknowledgement result outside ToAcknowledge", "state", c.fsmState.String())
		return loopContinue
	}

	if res.Err != nil {
		c.logger.Info("error waiting for acknowledgements",
			"status", res.Err.Status,
			"error", res.Err.Message,
			"correlationId", res.Err.CorrelationID,
		)
		if types.RequiresRedelivery(res.Err.Status) {
			c.metrics.RecordAckOutcome("retry")
			return c.retryAnnouncementAfterBackOff()
		}
		c.logger.Warn("announcement error unrecoverable, giving up",
			"status", res.Err.Status,
			"error", res.Err.Message,
		)
		c.metrics.RecordAckOutcome("terminal")

		return c.scheduleDeleteExpiredSubjectIfNeeded()
	}

	if res.Acks.RequiresRedelivery() {
		c.metrics.RecordAckOutcome("retry")
		return c.retryAnnouncementAfterBackOff()
	}

	c.acknowledged = true
	c.metrics.RecordAckOutcome("acknowledged")

	return c.scheduleDeleteExpiredSubjectIfNeeded()
}

// announce handles ANNOUNCE in ToAnnounce.
func (c *Controller) announce() loopResult {
	c.logger.Debug("got ANNOUNCE in ToAnnounce")
	c.cancelTimer(timerAnnounce)

	if !(c.deleted && c.subject.ShouldAnnounceWhenDeleted()) {
		if instant, ok := c.announcementInstant(); ok {
			now := c.clock.Now()
			if !instant.Before(now.Add(announcementWindow)) {
				// ANNOUNCE arrived too early, e.g. due to the one-day timer
				// truncation or timer inaccuracy.
				c.scheduleAnnouncement(now, instant)
				return loopContinue
			}
		}
	}

	started := c.publishAnnouncement()
	if !started {
		// No acknowledgements to wait for.
		c.enqueueSelf(msgAcknowledged)
	}
	c.goTo(types.StateToAcknowledge)

	return loopContinue
}

// publishAnnouncement publishes the deletion announcement and starts the
// acknowledgement aggregation if acknowledgements were requested. Returns
// whether an aggregator was started.
func (c *Controller) publishAnnouncement() bool {
	if c.acknowledged || c.subject.Announcement == nil {
		// Already acknowledged, or nothing configured: nothing to publish.
		return false
	}

	ann := buildAnnouncement(c.policyID, &c.subject, c.deleteAt)
	c.logger.Debug("publishing announcement",
		"correlationId", ann.Headers.CorrelationID,
		"deleteAt", ann.DeleteAt,
		"subjectId", c.subject.ID,
	)
	c.metrics.RecordAnnouncementPublished(c.policyID.String())

	if len(ann.Headers.AckRequests) == 0 {
		if err := c.pub.Publish(c.ctx, ann); err != nil {
			c.logger.Error("failed to publish announcement",
				"correlationId", ann.Headers.CorrelationID,
				"error", err,
			)
		}

		return false
	}

	c.pub.PublishWithAcks(c.ctx, ann, c.replies)

	return true
}

// acknowledgedInToAcknowledge handles ACKNOWLEDGED in ToAcknowledge.
func (c *Controller) acknowledgedInToAcknowledge() loopResult {
	c.logger.Debug("got ACKNOWLEDGED in ToAcknowledge")
	c.acknowledged = true

	return c.scheduleDeleteExpiredSubjectIfNeeded()
}

// subjectDeletedInToAnnounce handles SUBJECT_DELETED in ToAnnounce.
func (c *Controller) subjectDeletedInToAnnounce() loopResult {
	c.logger.Debug("got SUBJECT_DELETED in ToAnnounce")
	return c.processSubjectDeletedAndCheckForAnnouncement(loopContinue, c.fsmState)
}

// subjectDeletedInToAcknowledge handles SUBJECT_DELETED in ToAcknowledge.
// No when-deleted announcement is scheduled here: announcement and backoff
// are already active and cover it.
func (c *Controller) subjectDeletedInToAcknowledge() loopResult {
	c.logger.Debug("got SUBJECT_DELETED in ToAcknowledge")
	c.setDeleteAt()

	return loopContinue
}

// subjectDeletedInToDelete handles SUBJECT_DELETED in ToDelete.
func (c *Controller) subjectDeletedInToDelete() loopResult {
	c.logger.Debug("got SUBJECT_DELETED in ToDelete")
	return c.processSubjectDeletedAndCheckForAnnouncement(loopStop, c.fsmState)
}

// subjectDeletedInDeleted handles SUBJECT_DELETED in Deleted.
func (c *Controller) subjectDeletedInDeleted() loopResult {
	c.logger.Debug("got SUBJECT_DELETED in Deleted")
	return c.processSubjectDeletedAndCheckForAnnouncement(loopStop, c.fsmState)
}

// processSubjectDeletedAndCheckForAnnouncement stamps deleteAt and, when a
// post-deletion announcement is still owed, re-enters ToAnnounce for one
// more announcement round. Otherwise the given fallback applies.
func (c *Controller) processSubjectDeletedAndCheckForAnnouncement(fallback loopResult, stay types.State) loopResult {
	c.setDeleteAt()
	if !c.acknowledged && c.subject.ShouldAnnounceWhenDeleted() {
		// Announce immediately.
		c.cancelTimer(timerAnnounce)
		c.enqueueSelf(msgAnnounce)
		c.goTo(types.StateToAnnounce)

		return loopContinue
	}
	c.goTo(stay)

	return fallback
}

// setDeleteAt restamps deleteAt on the first deletion observation. Repeated
// observations leave it unchanged.
func (c *Controller) setDeleteAt() {
	if !c.deleted {
		c.deleted = true
		c.deleteAt = c.clock.Now()
	}
}

// deleteInToDelete handles DELETE in ToDelete. The timer may have fired up
// to a day early for long-horizon expirations; delete scheduling re-arms in
// that case.
func (c *Controller) deleteInToDelete() loopResult {
	c.logger.Debug("got DELETE in ToDelete")
	return c.scheduleDeleteExpiredSubjectIfNeeded()
}

// timeoutInDeleted handles the state timeout in Deleted: the deletion
// confirmation did not arrive within MaxTimeout.
func (c *Controller) timeoutInDeleted() loopResult {
	if c.deleted {
		c.logger.Error("timeout in Deleted with subject already deleted, this should not happen")
		return loopStop
	}
	c.logger.Debug("timeout in Deleted")

	shouldAnnounce := c.subject.ShouldAnnounceWhenDeleted()
	inGracePeriod := c.isInGracePeriod(c.clock.Now().Add(c.nextBackOff))
	if c.acknowledged || !shouldAnnounce || !inGracePeriod {
		c.logger.Error("timeout waiting for persistence, giving up",
			"acknowledged", c.acknowledged,
			"shouldAnnounce", shouldAnnounce,
			"inGracePeriod", inGracePeriod,
		)

		return loopStop
	}

	// Retry deletion and keep waiting for the confirmation.
	c.tellDelete()
	c.goTo(types.StateDeleted)

	return loopContinue
}

// retryAnnouncementAfterBackOff increases the backoff and either schedules
// the next announcement attempt inside the grace period, or gives up.
func (c *Controller) retryAnnouncementAfterBackOff() loopResult {
	now := c.clock.Now()
	c.nextBackOff = c.backoff.Next(c.nextBackOff)
	c.metrics.RecordRetryBackoff(c.nextBackOff.Seconds())

	announcementInstant := now.Add(c.nextBackOff)
	if c.isInGracePeriod(announcementInstant) {
		c.logger.Debug("retrying in grace period",
			"instant", announcementInstant,
			"backoff", c.nextBackOff,
		)
		c.scheduleAnnouncement(now, announcementInstant)
		c.goTo(types.StateToAnnounce)

		return loopContinue
	}

	if c.deleted {
		// Subject already deleted; give up. Logged as error as this must not
		// happen without a service downtime shorter than the grace period.
		c.logger.Error("grace period past for deleted subject, giving up", "subjectId", c.subject.ID)
		return loopStop
	}

	// Outside the grace period; delete.
	c.logger.Info("grace period past for subject, deleting", "subjectId", c.subject.ID)
	c.tellDelete()
	c.goTo(types.StateDeleted)

	return loopContinue
}

// scheduleDeleteExpiredSubjectIfNeeded is the shared sub-protocol that moves
// the controller towards deletion once announcing is settled.
func (c *Controller) scheduleDeleteExpiredSubjectIfNeeded() loopResult {
	if !c.deleted {
		if c.subject.Expiry != nil {
			c.goTo(c.scheduleDeleteExpiredSubject(*c.subject.Expiry))
		} else {
			c.doDelete()
			c.goTo(types.StateDeleted)
		}

		return loopContinue
	}

	if c.acknowledged {
		// Subject already deleted, nothing to announce, already acknowledged.
		return loopStop
	}

	// Deleted but not acknowledged: let the post-deletion branch decide
	// whether one more announcement is required.
	c.enqueueSelf(msgSubjectDeleted)
	c.goTo(types.StateDeleted)

	return loopContinue
}

// scheduleDeleteExpiredSubject either deletes an already expired subject or
// arms the DELETE timer. Returns the state to transition to.
func (c *Controller) scheduleDeleteExpiredSubject(expiry time.Time) types.State {
	duration := expiry.Sub(c.clock.Now())
	if duration <= 0 {
		c.logger.Debug("subject expired, deleting", "subjectId", c.subject.ID)
		c.doDelete()

		return types.StateDeleted
	}

	scheduleDuration := truncateToOneDay(duration + announcementWindow)
	c.logger.Debug("scheduling deletion",
		"in", scheduleDuration,
		"cutOff", expiry,
	)
	c.scheduleTimer(timerDelete, msgDelete, scheduleDuration)

	return types.StateToDelete
}

// doDelete forwards the delete command and cancels any pending DELETE timer.
func (c *Controller) doDelete() {
	c.tellDelete()
	c.cancelTimer(timerDelete)
}

// tellDelete forwards one delete command. Each send carries a fresh
// correlation id so deliberate re-sends are not collapsed by transport-level
// deduplication, while transport retries of the same send are.
func (c *Controller) tellDelete() {
	cmd := buildDeleteCommand(c.policyID, &c.subject)
	c.logger.Debug("forwarding delete command",
		"subjectId", c.subject.ID,
		"correlationId", cmd.Headers.CorrelationID,
	)
	c.metrics.RecordDeleteCommand(c.policyID.String())
	c.forwarder.Tell(cmd)
}

// scheduleAnnouncement arms the ANNOUNCE timer for the target instant, or
// fires immediately when the target is within the announcement window
// (which happens for deleted subjects).
func (c *Controller) scheduleAnnouncement(now, announcementInstant time.Time) {
	duration := announcementInstant.Sub(now)
	if duration < announcementWindow {
		c.logger.Debug("announcing right away", "now", now, "cutOff", announcementInstant)
		c.enqueueSelf(msgAnnounce)

		return
	}

	scheduleDuration := truncateToOneDay(duration)
	c.logger.Debug("scheduling announcement",
		"in", scheduleDuration,
		"cutOff", announcementInstant,
	)
	c.scheduleTimer(timerAnnounce, msgAnnounce, scheduleDuration)
}

// announcementInstant returns expiry − beforeExpiry, when both are present.
func (c *Controller) announcementInstant() (time.Time, bool) {
	if c.subject.Announcement == nil || c.subject.Announcement.BeforeExpiry == nil || c.subject.Expiry == nil {
		return time.Time{}, false
	}

	return c.subject.Expiry.Add(-*c.subject.Announcement.BeforeExpiry), true
}

// isInGracePeriod reports whether the instant falls before the end of the
// grace period, anchored on the expiry or, for non-expiring subjects, on the
// deletion instant.
func (c *Controller) isInGracePeriod(announcementInstant time.Time) bool {
	expiration := c.deleteAt
	if c.subject.Expiry != nil {
		expiration = *c.subject.Expiry
	}

	return announcementInstant.Before(expiration.Add(c.cfg.GracePeriod))
}

// goTo transitions the FSM, managing the Deleted state timeout: entering
// Deleted (re-)arms it, leaving Deleted cancels it.
func (c *Controller) goTo(next types.State) {
	if next != c.fsmState {
		c.logger.Debug("state transition", "from", c.fsmState.String(), "to", next.String())
		c.metrics.RecordStateTransition(c.fsmState, next)
	}

	if c.fsmState == types.StateDeleted && next != types.StateDeleted {
		c.cancelTimer(timerStateTimeout)
	}
	if next == types.StateDeleted {
		c.scheduleTimer(timerStateTimeout, msgStateTimeout, c.cfg.MaxTimeout)
	}

	c.fsmState = next
	c.observedState.Store(int32(next))
}

// scheduleTimer arms a named single-shot timer, replacing any prior timer
// with the same name.
func (c *Controller) scheduleTimer(name string, msg message, delay time.Duration) {
	c.cancelTimer(name)

	seq := c.seqVal.Add(1)
	c.timerSeqs[name] = seq
	timer := c.clock.AfterFunc(delay, func() {
		c.enqueue(timerEvent{name: name, seq: seq, msg: msg})
	})
	c.timers[name] = namedTimer{timer: timer, seq: seq}
}

// cancelTimer stops a named timer. Deliveries already in flight are dropped
// by the sequence check in unwrap.
func (c *Controller) cancelTimer(name string) {
	if entry, ok := c.timers[name]; ok {
		entry.timer.Stop()
		delete(c.timers, name)
	}
	// Invalidate any in-flight delivery.
	c.timerSeqs[name] = c.seqVal.Add(1)
}

// truncateToOneDay caps a timer delay at one day. Long-horizon expirations
// re-arm when the truncated timer fires early.
func truncateToOneDay(duration time.Duration) time.Duration {
	if duration < oneDay {
		return duration
	}

	return oneDay
}
