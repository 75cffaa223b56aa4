// Package api wires the HTTP surface: routes, middleware and the metrics endpoint.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/dvloznov/finsight/internal/api/handlers"
	"github.com/dvloznov/finsight/internal/api/middleware"
	"github.com/dvloznov/finsight/internal/jobs"
	"github.com/dvloznov/finsight/internal/observability"
	"github.com/dvloznov/finsight/internal/session"
)

// Deps are the collaborators the router needs.
type Deps struct {
	Sessions  *session.Store
	Publisher jobs.Publisher
	Jobs      jobs.JobStore
	Metrics   *observability.Metrics
	Log       zerolog.Logger
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(deps Deps) http.Handler {
	sessions := handlers.NewSessionsHandler(deps.Sessions, deps.Publisher, deps.Metrics, deps.Log)
	jobsHandler := handlers.NewJobsHandler(deps.Jobs, deps.Log)

	r := chi.NewRouter()
	r.Use(middleware.Recovery(deps.Log))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.Log))
	r.Use(middleware.CORS)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	if deps.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Metrics.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessions.CreateSession)
			r.Get("/", sessions.ListSessions)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", sessions.GetSession)
				r.Delete("/", sessions.DeleteSession)
				r.Post("/analyze", sessions.Analyze)
				r.Post("/reset", sessions.ResetSession)
				r.Get("/transactions", sessions.ListTransactions)
				r.Put("/transactions/{index}", sessions.UpdateTransaction)
				r.Get("/export.csv", sessions.ExportCSV)
				r.Post("/budgets", sessions.EvaluateBudgets)
			})
		})

		r.Get("/jobs", jobsHandler.ListJobs)
		r.Get("/jobs/{id}", jobsHandler.GetJob)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return r
}
