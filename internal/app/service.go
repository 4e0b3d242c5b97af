// Package service provides the dashboard session: the state container that
// owns the health poller and the recommendation requester and feeds the views.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/routedash/internal/adapters/gateway"
	"github.com/okian/routedash/internal/domain/model"
	"github.com/okian/routedash/pkg/logger"
	"github.com/okian/routedash/pkg/metrics"
)

// DefaultPollInterval is the health poll cadence.
const DefaultPollInterval = 5 * time.Second

// Gateway is the upstream the session talks to.
type Gateway interface {
	FetchHealth(ctx context.Context) (model.HealthSnapshot, error)
	Recommend(ctx context.Context, q model.Query) (model.Result, error)
}

// Session is one dashboard instance. Its state is guarded by mu and no lock
// is held across network I/O.
type Session struct {
	mu sync.Mutex

	gw       Gateway
	name     string
	interval time.Duration
	newID    func() string
	onUpdate func(model.SessionState)
	logger   logger.Logger

	// Lifecycle
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	// epoch changes on every Stop; responses started in an older epoch are dropped.
	epoch uint64

	// Health poller
	health     model.HealthSnapshot
	healthErr  string
	lastPoll   time.Time
	pollSeq    uint64
	pollCancel context.CancelFunc
	pollStats  pollStats

	// Recommendation requester
	result  *model.Result
	reqErr  string
	loading bool
	reqSeq  uint64
	submits int64
}

type pollStats struct {
	issued  int64
	applied int64
	skipped int64
	dropped int64
}

// Option applies a configuration option to the Session.
type Option func(*Session)

// WithName sets the session label used in logs and metrics.
func WithName(name string) Option {
	return func(s *Session) {
		if name != "" {
			s.name = name
		}
	}
}

// WithPollInterval sets the health poll cadence.
func WithPollInterval(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithLogger sets a custom logger for the session.
func WithLogger(l logger.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRequestIDs replaces the request id generator.
func WithRequestIDs(gen func() string) Option {
	return func(s *Session) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithOnUpdate registers fn to be called with a fresh state after every
// applied health poll or recommendation response. fn runs on the goroutine
// that applied the change.
func WithOnUpdate(fn func(model.SessionState)) Option {
	return func(s *Session) {
		s.onUpdate = fn
	}
}

// New constructs a Session on top of gw.
func New(gw Gateway, opts ...Option) *Session {
	s := &Session{
		gw:       gw,
		name:     "gateway",
		interval: DefaultPollInterval,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("session")
	}
	s.logger = s.logger.With(logger.String("name", s.name))
	return s
}

// Name returns the session label.
func (s *Session) Name() string {
	return s.name
}

// PollInterval returns the health poll cadence.
func (s *Session) PollInterval() time.Duration {
	return s.interval
}

// Start polls health immediately and then on every tick until Stop is called
// or ctx is done. Starting a running session is a no-op.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.started = true

	s.wg.Add(1)
	go s.run(runCtx)

	s.logger.Info(ctx, "session started", logger.Duration("interval", s.interval))
	return nil
}

// Stop cancels the ticker and any in-flight poll, clears the health snapshot
// and waits for the poll goroutines. Responses arriving afterwards are
// discarded.
func (s *Session) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.epoch++
	s.cancel()
	if s.pollCancel != nil {
		s.pollCancel()
		s.pollCancel = nil
	}
	s.health = nil
	s.healthErr = ""
	s.loading = false
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info(context.Background(), "session stopped")
}

// Running reports whether the poller is active.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// State returns a copy of the current state. The copy shares nothing with the
// session.
func (s *Session) State() model.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() model.SessionState {
	st := model.SessionState{
		Name:        s.name,
		Running:     s.started,
		Health:      s.health.Clone(),
		HealthError: s.healthErr,
		LastPoll:    s.lastPoll,
		Error:       s.reqErr,
		Loading:     s.loading,
	}
	if s.result != nil {
		res := s.result.Clone()
		st.Result = &res
	}
	return st
}

// GetStats returns session statistics for monitoring.
func (s *Session) GetStats() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	healthy, unhealthy := s.health.Counts()
	return map[string]interface{}{
		"name":              s.name,
		"started":           s.started,
		"pollIntervalMs":    s.interval.Milliseconds(),
		"pollsIssued":       s.pollStats.issued,
		"pollsApplied":      s.pollStats.applied,
		"pollsSkipped":      s.pollStats.skipped,
		"pollsDropped":      s.pollStats.dropped,
		"healthyServices":   healthy,
		"unhealthyServices": unhealthy,
		"submissions":       s.submits,
		"loading":           s.loading,
	}
}

func (s *Session) notify() {
	if s.onUpdate == nil {
		return
	}
	s.onUpdate(s.State())
}

// outcome maps an error to its metrics label.
func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, model.ErrMissingEndpoints), errors.Is(err, model.ErrInvalidMode):
		return metrics.OutcomeValidation
	case errors.Is(err, gateway.ErrUnexpectedStatus):
		return metrics.OutcomeStatus
	case errors.Is(err, gateway.ErrMalformedBody):
		return metrics.OutcomeMalformed
	case errors.Is(err, context.Canceled):
		return metrics.OutcomeCanceled
	default:
		return metrics.OutcomeTransport
	}
}
