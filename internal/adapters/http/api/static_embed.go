package api

import (
	"embed"
	"html/template"

	"github.com/okian/routedash/internal/domain/model"
)

//go:embed static/*
var apiStaticFS embed.FS

// dashboardTemplate renders static/dashboard.html.
var dashboardTemplate = template.Must(
	template.New("dashboard.html").
		Funcs(template.FuncMap{"orDash": model.OrDash}).
		ParseFS(apiStaticFS, "static/dashboard.html"),
)
