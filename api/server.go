/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/employees/*      Employee directory
  /api/shift-types/*    Shift definitions
  /api/companies/*      Company payroll policies
  /api/checkins/*       Raw clock events
  /api/attendance/*     Marked attendance, report, deviation
  /api/payslips/*       Pay-slip hook pipeline
  /api/adjustments      Posted additional-salary entries
  /api/tax/*            Period tax helpers
  /api/durations/*      Duration parsing
  /api/scenarios/*      Demo scenarios
  /api/reset            Database reset (dev only)

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterOptions tunes the router. Zero value uses the local dev origins.
type RouterOptions struct {
	AllowedOrigins []string
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:8080"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/{id}", h.GetEmployee)
		})

		r.Route("/shift-types", func(r chi.Router) {
			r.Get("/", h.ListShiftTypes)
			r.Post("/", h.CreateShiftType)
			r.Get("/{name}", h.GetShiftType)
		})

		r.Route("/companies", func(r chi.Router) {
			r.Get("/", h.ListCompanies)
			r.Post("/", h.CreateCompany)
			r.Get("/{id}", h.GetCompany)
		})

		r.Route("/checkins", func(r chi.Router) {
			r.Post("/", h.CreateCheckin)
			r.Post("/import.xlsx", h.ImportCheckins)
		})

		r.Route("/attendance", func(r chi.Router) {
			r.Post("/", h.MarkAttendance)
			r.Get("/report", h.AttendanceReport)
			r.Get("/report.xlsx", h.AttendanceReportXLSX)
			r.Get("/deviation", h.Deviation)
		})

		r.Post("/payslips/process", h.ProcessPayslip)
		r.Get("/adjustments", h.ListAdjustments)

		r.Route("/tax", func(r chi.Router) {
			r.Post("/normalize", h.NormalizeTax)
			r.Get("/period-factor", h.PeriodFactor)
		})

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
		})

		r.Get("/durations/parse", h.ParseDuration)
		r.Post("/reset", h.ResetDatabase)
	})

	return r
}
