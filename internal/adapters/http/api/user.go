// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/routedash/internal/domain/model"
)

const (
	usersPrefix     = "/api/users/"
	recommendSuffix = "/recommendations"
)

// UserHandler handles per-user recommendation requests.
type UserHandler struct {
	deps UserRecommender
}

// NewUserHandler creates a new user handler.
func NewUserHandler(deps UserRecommender) *UserHandler {
	return &UserHandler{deps: deps}
}

// HandleUserRecommendations handles
// GET /api/users/{user_id}/recommendations?mode=air|rail&top_n=N requests and
// relays the gateway's JSON.
func (h *UserHandler) HandleUserRecommendations(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	// Extract path parameter between /api/users/ and /recommendations
	path := strings.TrimPrefix(r.URL.Path, usersPrefix)
	userID, ok := strings.CutSuffix(path, recommendSuffix)
	if !ok || userID == "" || strings.Contains(userID, "/") {
		writeError(w, http.StatusNotFound, "not_found", nil)
		return
	}

	q := r.URL.Query()
	mode, err := model.ParseMode(q.Get("mode"))
	if err != nil || mode == model.ModeAuto {
		writeError(w, http.StatusBadRequest, "bad_request", model.ErrInvalidMode)
		return
	}
	topN, _ := strconv.Atoi(q.Get("top_n"))

	raw, err := h.deps.UserRecommendations(r.Context(), userID, mode, topN)
	if err != nil {
		status, code := classify(err)
		writeError(w, status, code, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}
