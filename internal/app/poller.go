package service

import (
	"context"
	"time"

	"github.com/okian/routedash/internal/adapters/gateway"
	"github.com/okian/routedash/pkg/logger"
	"github.com/okian/routedash/pkg/metrics"
)

// Reasons a poll response is not applied.
const (
	discardStopped  = "stopped"
	discardCanceled = "canceled"
)

// run drives the poller: one poll right away, then one per tick.
func (s *Session) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.issuePoll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.issuePoll(ctx)
		}
	}
}

// issuePoll starts a poll unless one is still in flight, in which case the
// tick is skipped. Polls never overlap, so a health endpoint slower than the
// interval still delivers every response it completes.
func (s *Session) issuePoll(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started || ctx.Err() != nil {
		return
	}
	if s.pollCancel != nil {
		s.pollStats.skipped++
		metrics.RecordHealthTickSkipped(s.name)
		s.logger.Debug(ctx, "health poll still in flight; tick skipped")
		return
	}
	s.pollSeq++
	s.pollStats.issued++

	pollCtx, cancel := context.WithCancel(ctx)
	s.pollCancel = cancel

	s.wg.Add(1)
	go s.poll(pollCtx, cancel, s.pollSeq, s.epoch)
}

// poll fetches one snapshot. The result is applied only while the session is
// still in the epoch that issued it and seq is the latest issued poll.
func (s *Session) poll(ctx context.Context, cancel context.CancelFunc, seq, epoch uint64) {
	defer s.wg.Done()
	defer cancel()

	id := s.newID()
	ctx = gateway.WithRequestID(ctx, id)
	log := s.logger.With(logger.String("request_id", id))

	start := time.Now()
	snap, err := s.gw.FetchHealth(ctx)
	latency := time.Since(start)

	s.mu.Lock()
	current := epoch == s.epoch && seq == s.pollSeq
	if current {
		s.pollCancel = nil
	}
	reason := ""
	switch {
	case !current || !s.started:
		reason = discardStopped
	case ctx.Err() != nil:
		reason = discardCanceled
	}
	if reason != "" {
		s.pollStats.dropped++
		s.mu.Unlock()
		metrics.RecordHealthDiscarded(s.name, reason)
		log.Debug(ctx, "health poll discarded", logger.String("reason", reason))
		return
	}

	s.pollStats.applied++
	s.lastPoll = time.Now()
	if err != nil {
		s.health = nil
		s.healthErr = err.Error()
	} else {
		s.health = snap
		s.healthErr = ""
	}
	healthy, unhealthy := s.health.Counts()
	s.mu.Unlock()

	metrics.RecordHealthPoll(s.name, outcome(err))
	metrics.UpdateHealthServices(s.name, healthy, unhealthy)
	if err != nil {
		log.Warn(ctx, "health poll failed", logger.Error(err))
	} else {
		metrics.RecordHealthPollLatency(float64(latency.Milliseconds()))
		metrics.MarkHealthSuccess(time.Now())
		log.Debug(ctx, "health snapshot applied",
			logger.Int("healthy", healthy),
			logger.Int("unhealthy", unhealthy),
			logger.Duration("latency", latency),
		)
	}
	s.notify()
}
