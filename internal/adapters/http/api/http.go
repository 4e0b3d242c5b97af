// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/okian/routedash/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the session implementation.
type Dependencies interface {
	// State returns a copy of the session state.
	State() model.SessionState

	// Submit records and returns the outcome of a recommendation query.
	Submit(ctx context.Context, q model.Query) (model.Result, error)
}

// UserRecommender serves per-user recommendations.
type UserRecommender interface {
	UserRecommendations(ctx context.Context, userID string, mode model.Mode, topN int) (json.RawMessage, error)
}

// Page holds the per-instance settings of the dashboard page.
type Page struct {
	Title      string
	GatewayURL string
	// Recommend enables the query form and the recommendation endpoints.
	Recommend   bool
	DefaultTopN int
	// Refresh reloads an idle page at this cadence; zero disables it.
	Refresh time.Duration
}

// Server wires HTTP routes for the dashboard.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	stateHandler     *StateHandler
	recommendHandler *RecommendHandler
	userHandler      *UserHandler
	dashboardHandler *dashboardHandler
	page             Page
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithPage sets the dashboard page settings.
func WithPage(p Page) Option {
	return func(s *Server) {
		s.page = p
	}
}

// WithUserRecommender enables /api/users/{user_id}/recommendations.
func WithUserRecommender(u UserRecommender) Option {
	return func(s *Server) {
		if u != nil {
			s.userHandler = NewUserHandler(u)
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		stateHandler:  NewStateHandler(deps),
		page: Page{
			Title:       "Recommender Client",
			Recommend:   true,
			DefaultTopN: model.DefaultTopN,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.page.DefaultTopN == 0 {
		s.page.DefaultTopN = model.DefaultTopN
	}
	s.recommendHandler = NewRecommendHandler(deps, s.page.Recommend)
	s.dashboardHandler = newDashboardHandler(deps, s.page)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/state", MetricsMiddleware(s.stateHandler.HandleGetState, "state"))
	mux.HandleFunc("/api/recommend", MetricsMiddleware(s.recommendHandler.HandleRecommend, "recommend"))
	if s.userHandler != nil && s.page.Recommend {
		mux.HandleFunc("/api/users/", MetricsMiddleware(s.userHandler.HandleUserRecommendations, "user_recommendations"))
	}
	mux.HandleFunc("/dashboard", MetricsMiddleware(s.dashboardHandler.HandleDashboard, "dashboard"))
	mux.HandleFunc("/", MetricsMiddleware(s.dashboardHandler.HandleRoot, "root"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// queryFromValues reads a recommendation query from form or URL values. An
// unparsable top_n counts as unset.
func queryFromValues(v url.Values) model.Query {
	topN, _ := strconv.Atoi(strings.TrimSpace(v.Get("top_n")))
	return model.Query{
		Mode:        model.Mode(strings.ToLower(strings.TrimSpace(v.Get("mode")))),
		Source:      v.Get("source"),
		Destination: v.Get("destination"),
		UserID:      v.Get("user_id"),
		TopN:        topN,
	}
}
