package lapse

import (
	"fmt"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/policyforge/lapse/internal/logging"
	"github.com/policyforge/lapse/internal/metrics"
	"github.com/policyforge/lapse/types"
)

// Supervisor manages the expiry controllers of one policy.
//
// Each subject with an expiry or a when-deleted announcement gets its own
// Controller; the supervisor keys them by subject id, replaces them when the
// subject definition changes, and fans deletion confirmations out to the
// right controller.
//
// All methods are safe for concurrent use.
type Supervisor struct {
	policyID    types.PolicyID
	cfg         Config
	pub         types.AnnouncementPub
	forwarder   types.CommandForwarder
	opts        []Option
	logger      types.Logger
	metrics     types.MetricsCollector
	controllers *xsync.Map[string, *Controller]
	closed      atomic.Bool
}

// NewSupervisor creates a supervisor for one policy's subject controllers.
//
// The supervisor shares one configuration, publisher and forwarder across
// all controllers it creates; per-controller options (clock, backoff seed)
// passed here apply to every controller.
//
// Parameters:
//   - policyID: The policy whose subjects are supervised
//   - cfg: Timing configuration shared by all controllers
//   - pub: Announcement publisher with acknowledgement aggregation
//   - forwarder: Sink for delete commands
//   - opts: Optional configuration applied to every controller
//
// Returns:
//   - *Supervisor: Initialized supervisor
//   - error: Validation error if configuration or dependencies are invalid
func NewSupervisor(
	policyID types.PolicyID,
	cfg Config,
	pub types.AnnouncementPub,
	forwarder types.CommandForwarder,
	opts ...Option,
) (*Supervisor, error) {
	if policyID == "" {
		return nil, ErrPolicyIDRequired
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
	logger := options.logger
	if logger == nil {
		logger = logging.NewNop()
	}
	metricsCollector := options.metrics
	if metricsCollector == nil {
		metricsCollector = metrics.NewNop()
	}

	return &Supervisor{
		policyID:    policyID,
		cfg:         cfg,
		pub:         pub,
		forwarder:   forwarder,
		opts:        opts,
		logger:      logger,
		metrics:     metricsCollector,
		controllers: xsync.NewMap[string, *Controller](),
	}, nil
}

// Track starts (or restarts) expiry tracking for a subject.
//
// A subject already tracked under the same id is replaced: the previous
// controller is stopped before the new one starts, so a policy update that
// changes a subject's expiry or announcement takes effect immediately.
//
// Subjects with neither an expiry nor any announcement need no controller;
// Track is a no-op for them.
//
// Parameters:
//   - subject: The subject to track
//
// Returns:
//   - error: ErrStopped if the supervisor was stopped, or a controller
//     creation error
func (s *Supervisor) Track(subject types.Subject) error {
	if s.closed.Load() {
		return ErrStopped
	}
	if subject.Expiry == nil && subject.Announcement == nil {
		// Nothing ever happens for this subject.
		return nil
	}

	subjectID := subject.ID
	controllerOpts := make([]Option, 0, len(s.opts)+1)
	controllerOpts = append(controllerOpts, s.opts...)
	controllerOpts = append(controllerOpts, WithStopHook(func() {
		s.release(subjectID)
	}))

	ctrl, err := NewController(s.policyID, subject, s.cfg, s.pub, s.forwarder, controllerOpts...)
	if err != nil {
		return err
	}

	if prev, loaded := s.controllers.LoadAndStore(subjectID, ctrl); loaded {
		s.logger.Debug("replacing controller for updated subject", "subjectId", subjectID)
		prev.Stop()
		<-prev.Done()
		// The stop hook of the previous controller may have raced us and
		// deleted the fresh entry; restore it.
		s.controllers.Store(subjectID, ctrl)
	}
	s.metrics.SetActiveControllers(s.controllers.Size())

	if err := ctrl.Start(); err != nil {
		s.controllers.Delete(subjectID)
		s.metrics.SetActiveControllers(s.controllers.Size())

		return err
	}

	return nil
}

// SubjectDeleted routes a deletion confirmation to the subject's controller.
// Confirmations for unknown subjects are ignored; the controller may already
// have completed and released itself.
//
// Parameters:
//   - subjectID: The id of the deleted subject
func (s *Supervisor) SubjectDeleted(subjectID string) {
	if ctrl, ok := s.controllers.Load(subjectID); ok {
		ctrl.SubjectDeleted()
	} else {
		s.logger.Debug("deletion confirmation for untracked subject", "subjectId", subjectID)
	}
}

// Controller returns the controller currently tracking a subject, if any.
// Intended for observation and tests.
func (s *Supervisor) Controller(subjectID string) (*Controller, bool) {
	return s.controllers.Load(subjectID)
}

// Size returns the number of active controllers.
func (s *Supervisor) Size() int {
	return s.controllers.Size()
}

// Stop stops all controllers and waits for each to terminate. The supervisor
// accepts no new subjects afterwards.
func (s *Supervisor) Stop() {
	s.closed.Store(true)

	var ctrls []*Controller
	s.controllers.Range(func(_ string, ctrl *Controller) bool {
		ctrls = append(ctrls, ctrl)
		return true
	})
	for _, ctrl := range ctrls {
		ctrl.Stop()
	}
	for _, ctrl := range ctrls {
		<-ctrl.Done()
	}
	s.metrics.SetActiveControllers(s.controllers.Size())
}

// release drops a completed controller from tracking. Invoked from the
// controller's stop hook.
func (s *Supervisor) release(subjectID string) {
	s.controllers.Delete(subjectID)
	s.metrics.SetActiveControllers(s.controllers.Size())
}
