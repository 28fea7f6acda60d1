package bootstrap

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	commonhttp "github.com/AlibekovAA/usersapp/internal/common/http"
	"github.com/AlibekovAA/usersapp/internal/common/httpmetrics"
	"github.com/AlibekovAA/usersapp/internal/common/logger"
	userhttp "github.com/AlibekovAA/usersapp/internal/user/http"
	userrepo "github.com/AlibekovAA/usersapp/internal/user/repository"
)

type RouterDeps struct {
	Log       *logger.Logger
	Users     userrepo.Repository
	Pages     http.Handler
	StaticDir string
	Health    commonhttp.Pinger
}

// NewRouter registers the fixed route table:
//
//	GET  /            index page
//	GET  /static/*    files under StaticDir, no directory listings
//	*    /api/users   users collection
//	GET  /health      database ping
//	GET  /metrics     prometheus
func NewRouter(deps RouterDeps) chi.Router {
	r := chi.NewRouter()
	r.Use(httpmetrics.Middleware)

	r.Method(http.MethodGet, "/", deps.Pages)
	static := staticHandler(deps.StaticDir)
	r.Method(http.MethodGet, "/static/*", static)
	r.Method(http.MethodHead, "/static/*", static)
	r.Mount("/api/users", userhttp.NewHandler(deps.Users, deps.Log).Routes())

	r.Get("/health", commonhttp.HealthHandler(deps.Health, deps.Log))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
