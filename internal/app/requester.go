package service

import (
	"context"
	"time"

	"github.com/okian/routedash/internal/adapters/gateway"
	"github.com/okian/routedash/internal/domain/model"
	"github.com/okian/routedash/pkg/logger"
	"github.com/okian/routedash/pkg/metrics"
)

// Submit sends q to the gateway and records the outcome in the session.
//
// The previous error and result are cleared first. An invalid query records
// its validation error and makes no request. Concurrent submissions race: the
// last response to complete wins, while Loading is cleared only by the most
// recently started request. Responses that complete after Stop are returned
// to the caller but not recorded.
func (s *Session) Submit(ctx context.Context, q model.Query) (model.Result, error) {
	q = q.Normalize()

	s.mu.Lock()
	s.reqErr = ""
	s.result = nil
	s.submits++
	if err := q.Validate(); err != nil {
		s.reqErr = err.Error()
		s.mu.Unlock()
		metrics.RecordRecommendRequest(modeLabel(q.Mode), metrics.OutcomeValidation)
		s.notify()
		return model.Result{}, err
	}
	s.reqSeq++
	seq, epoch := s.reqSeq, s.epoch
	s.loading = true
	s.mu.Unlock()

	id := s.newID()
	ctx = gateway.WithRequestID(ctx, id)
	log := s.logger.With(
		logger.String("request_id", id),
		logger.String("mode", string(q.Mode)),
	)

	metrics.AddRecommendInFlight(1)
	start := time.Now()
	res, err := s.gw.Recommend(ctx, q)
	latency := time.Since(start)
	metrics.AddRecommendInFlight(-1)

	metrics.RecordRecommendRequest(modeLabel(q.Mode), outcome(err))
	metrics.RecordRecommendLatency(modeLabel(q.Mode), float64(latency.Milliseconds()))

	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		log.Debug(ctx, "recommendation response dropped after stop")
		return res, err
	}
	if seq == s.reqSeq {
		s.loading = false
	}
	if err != nil {
		s.result = nil
		s.reqErr = err.Error()
	} else {
		r := res
		s.result = &r
		s.reqErr = ""
	}
	s.mu.Unlock()

	if err != nil {
		log.Warn(ctx, "recommendation request failed", logger.Error(err))
	} else {
		metrics.RecordRecommendResults(len(res.Recommendations))
		log.Debug(ctx, "recommendations received",
			logger.String("upstream", res.Upstream),
			logger.Int("count", len(res.Recommendations)),
			logger.Duration("latency", latency),
		)
	}
	s.notify()
	return res, err
}

// modeLabel keeps user input out of metric labels.
func modeLabel(m model.Mode) string {
	parsed, err := model.ParseMode(string(m))
	if err != nil {
		return "invalid"
	}
	return string(parsed)
}
