// Package http wires the chi router for the rules Q&A API.
package http

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"golfrules-ai/internal/handlers"
	"golfrules-ai/internal/qa"
	"golfrules-ai/internal/storage"
	"golfrules-ai/internal/updater"
	"golfrules-ai/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	QAService   *qa.Service
	Updater     *updater.Updater
	QueryRepo   *storage.QueryRepo
	MetricsRepo *storage.MetricsRepo
	RuleRepo    *storage.RuleRepo
	VectorStore vectorstore.VectorStore
	DB          *sql.DB
	Collection  string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	// Add chi middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	askHandler := handlers.NewAskHandler(deps.QAService)
	refreshHandler := handlers.NewRefreshHandler(deps.Updater)
	feedbackHandler := handlers.NewFeedbackHandler(deps.QueryRepo)
	statsHandler := handlers.NewStatsHandler(deps.QueryRepo, deps.MetricsRepo, deps.RuleRepo)
	healthHandler := handlers.NewHealthHandler(deps.VectorStore, deps.DB, deps.Collection)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/ask", askHandler)
		r.Method(http.MethodPost, "/refresh", refreshHandler)
		r.Method(http.MethodPost, "/feedback", feedbackHandler)
		r.Method(http.MethodGet, "/stats", statsHandler)
		r.Method(http.MethodGet, "/health", healthHandler)
	})

	return r
}
