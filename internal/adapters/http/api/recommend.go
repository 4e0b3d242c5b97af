// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/routedash/internal/domain/model"
)

// RecommendDependencies defines the interface for submitting queries.
type RecommendDependencies interface {
	Submit(ctx context.Context, q model.Query) (model.Result, error)
}

// RecommendHandler handles recommendation requests.
type RecommendHandler struct {
	deps    RecommendDependencies
	enabled bool
}

// NewRecommendHandler creates a new recommend handler.
func NewRecommendHandler(deps RecommendDependencies, enabled bool) *RecommendHandler {
	return &RecommendHandler{deps: deps, enabled: enabled}
}

// HandleRecommend handles GET /api/recommend?source=..&destination=.. requests.
// Validation failures answer 400 and upstream failures 502.
func (h *RecommendHandler) HandleRecommend(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	if !h.enabled {
		writeError(w, http.StatusNotFound, "not_found", ErrRecommendDisabled)
		return
	}

	// The outcome is shared session state, so a client hanging up must not
	// record a cancellation in it.
	res, err := h.deps.Submit(context.WithoutCancel(r.Context()), queryFromValues(r.URL.Query()))
	if err != nil {
		status, code := classify(err)
		writeError(w, status, code, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// classify maps a submission error to a status and an error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrMissingEndpoints),
		errors.Is(err, model.ErrInvalidMode),
		errors.Is(err, model.ErrMissingUserID):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "upstream_timeout"
	default:
		return http.StatusBadGateway, "upstream_error"
	}
}
