// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"time"

	"github.com/okian/routedash/internal/domain/model"
)

// StateDependencies defines the interface for reading the session.
type StateDependencies interface {
	State() model.SessionState
}

// StateHandler handles state requests.
type StateHandler struct {
	deps StateDependencies
}

// NewStateHandler creates a new state handler.
func NewStateHandler(deps StateDependencies) *StateHandler {
	return &StateHandler{deps: deps}
}

// stateResponse adds the rendered health grid to the raw state.
type stateResponse struct {
	model.SessionState
	Services []model.ServiceStatus `json:"services"`
	Healthy  int                   `json:"healthy"`
	Failing  int                   `json:"unhealthy"`
	AsOf     time.Time             `json:"as_of"`
}

// HandleGetState handles GET /api/state requests.
func (h *StateHandler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	st := h.deps.State()
	healthy, failing := st.Health.Counts()
	writeJSON(w, http.StatusOK, stateResponse{
		SessionState: st,
		Services:     st.Health.Entries(),
		Healthy:      healthy,
		Failing:      failing,
		AsOf:         time.Now().UTC(),
	})
}
