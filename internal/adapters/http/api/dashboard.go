// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/okian/routedash/internal/domain/model"
)

// dashboardHandler renders the server-side dashboard page.
type dashboardHandler struct {
	deps Dependencies
	page Page
	tmpl *template.Template
}

// newDashboardHandler creates a new dashboard handler.
func newDashboardHandler(deps Dependencies, page Page) *dashboardHandler {
	return &dashboardHandler{deps: deps, page: page, tmpl: dashboardTemplate}
}

type formValues struct {
	Mode        string
	Source      string
	Destination string
	UserID      string
	TopN        int
}

type modeOption struct {
	Value    string
	Label    string
	Selected bool
}

type dashboardData struct {
	Page           Page
	State          model.SessionState
	Services       []model.ServiceStatus
	Form           formValues
	Modes          []modeOption
	Submitted      bool
	RefreshSeconds int
}

// HandleRoot serves the dashboard at / and 404 for any other unmatched path.
func (h *dashboardHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	h.HandleDashboard(w, r)
}

// HandleDashboard handles GET /dashboard requests. A request carrying
// submit=1 first submits the form values as a recommendation query.
func (h *dashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	values := r.URL.Query()
	submitted := values.Get("submit") != "" && h.page.Recommend
	if submitted {
		// The outcome lands in the session state rendered below and is kept
		// even if the browser goes away first.
		_, _ = h.deps.Submit(context.WithoutCancel(r.Context()), queryFromValues(values))
	}

	st := h.deps.State()
	data := dashboardData{
		Page:      h.page,
		State:     st,
		Services:  st.Health.Entries(),
		Form:      h.form(values),
		Submitted: submitted,
	}
	data.Modes = modeOptions(data.Form.Mode)
	if !submitted && h.page.Refresh > 0 {
		data.RefreshSeconds = max(1, int(h.page.Refresh.Seconds()))
	}

	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, "dashboard.html", data); err != nil {
		writeError(w, http.StatusInternalServerError, "render_error", fmt.Errorf("%w: %w", ErrRender, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// form echoes the submitted values back into the inputs.
func (h *dashboardHandler) form(values url.Values) formValues {
	f := formValues{
		Mode:        string(model.ModeAuto),
		Source:      values.Get("source"),
		Destination: values.Get("destination"),
		UserID:      values.Get("user_id"),
		TopN:        h.page.DefaultTopN,
	}
	if m, err := model.ParseMode(values.Get("mode")); err == nil {
		f.Mode = string(m)
	}
	if n, err := strconv.Atoi(strings.TrimSpace(values.Get("top_n"))); err == nil {
		f.TopN = model.Query{TopN: n}.Normalize().TopN
	}
	return f
}

func modeOptions(selected string) []modeOption {
	modes := []model.Mode{model.ModeAuto, model.ModeAir, model.ModeRail}
	out := make([]modeOption, len(modes))
	for i, m := range modes {
		label := string(m)
		out[i] = modeOption{
			Value:    label,
			Label:    strings.ToUpper(label[:1]) + label[1:],
			Selected: label == selected,
		}
	}
	return out
}
