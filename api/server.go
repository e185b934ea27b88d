/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/config/*      Plan and rate snapshot documents
  /api/import/*      Input record imports
  /api/runs/*        Calculation triggers and run history
  /api/results/*     Calculated output
  /api/scenarios/*   Demo scenarios

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Config routes
		r.Route("/config", func(r chi.Router) {
			r.Get("/quarterly/{quarter}", h.GetQuarterlyConfig)
			r.Put("/quarterly/{quarter}", h.PutQuarterlyConfig)
			r.Get("/monthly/{month}", h.GetMonthlyConfig)
			r.Put("/monthly/{month}", h.PutMonthlyConfig)
		})

		// Import routes
		r.Get("/reps", h.ListReps)
		r.Route("/import", func(r chi.Router) {
			r.Post("/reps", h.ImportReps)
			r.Post("/customers", h.ImportCustomers)
			r.Post("/orders", h.ImportOrders)
			r.Post("/actuals", h.ImportActuals)
		})

		// Run routes
		r.Route("/runs", func(r chi.Router) {
			r.Get("/", h.ListRuns)
			r.Post("/quarterly", h.RunQuarterly)
			r.Post("/monthly", h.RunMonthly)
		})

		// Result routes
		r.Route("/results", func(r chi.Router) {
			r.Get("/monthly/{month}", h.GetMonthlyResults)
			r.Get("/monthly/{month}/reps/{id}", h.GetMonthlyResultsForRep)
			r.Get("/quarterly/{quarter}", h.GetQuarterlyResults)
			r.Get("/quarterly/{quarter}/reps/{id}", h.GetQuarterlyResultsForRep)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Commission Engine</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Commission Engine API</h1>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/reps">/api/reps</a> - List representatives</li>
<li><a href="/api/runs">/api/runs</a> - List calculation runs</li>
<li><a href="/api/scenarios">/api/scenarios</a> - List demo scenarios</li>
</ul>
</body>
</html>`))
	})

	return r
}
