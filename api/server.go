/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. Rate limit: Per-IP ceiling, the sync endpoint hits official portals
  5. Secure:     Standard hardening headers
  6. CORS:       Cross-origin requests for the admin frontend

ROUTE GROUPS:
  /api/employees/*    Employee registry and salary history
  /api/vacations      Vacation calculations
  /api/thirteenths    Thirteenth-salary installments
  /api/terminations   Termination settlements
  /api/leaves         Leave records
  /api/tables/*       Bracket versions, manual load
  /api/sync           Source synchronization
  /api/estimates      Standalone discount estimate
  /api/compliance     Yearly checks
  /api/runs/*         Monthly payroll runs
  /api/seed           Demo data (dev only)

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(httprate.LimitByIP(120, time.Minute))
	r.Use(secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
	}).Handler)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.Post("/{id}/salary", h.ChangeSalary)
			r.Get("/{id}/salary", h.GetSalaryHistory)
			r.Post("/{id}/deactivate", h.DeactivateEmployee)
		})

		r.Route("/vacations", func(r chi.Router) {
			r.Get("/", h.ListVacations)
			r.Post("/", h.CreateVacation)
		})

		r.Route("/thirteenths", func(r chi.Router) {
			r.Get("/", h.ListThirteenths)
			r.Post("/", h.CreateThirteenth)
		})

		r.Route("/terminations", func(r chi.Router) {
			r.Get("/", h.ListTerminations)
			r.Post("/", h.CreateTermination)
		})

		r.Route("/leaves", func(r chi.Router) {
			r.Get("/", h.ListLeaves)
			r.Post("/", h.CreateLeave)
		})

		r.Route("/tables", func(r chi.Router) {
			r.Post("/", h.LoadTables)
			r.Get("/{kind}", h.GetTable)
			r.Get("/{kind}/versions", h.ListTableVersions)
		})

		r.Post("/sync", h.RunSync)
		r.Get("/estimates", h.GetEstimate)
		r.Post("/compliance", h.RunCompliance)

		r.Route("/runs", func(r chi.Router) {
			r.Post("/", h.CreateRun)
			r.Get("/{year}/{month}", h.GetRunSummary)
			r.Post("/{year}/{month}/overtime", h.SetOvertime)
		})

		r.Post("/seed", h.LoadSeed)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}
