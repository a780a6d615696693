/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:     Unique ID per request for tracing
  2. RequestLogger: zap access log + request-scoped logger
  3. Recoverer:     Panic recovery (500 instead of crash)
  4. CORS:          Cross-origin requests for the HR frontend
  5. Identify:      Caller from X-User-ID / X-User-Role

ROUTE GROUPS:
  /api/employees/*          Employee ledger, requests, overtime
  /api/requests/*           Approval queue (admin)
  /api/admin/*              Bulk jobs (admin)
  /api/legal-entitlements   Reference data
  /api/holidays             Holiday calendar (when a HolidayStore is set)
  /api/scenarios/*          Demo data (development only)

SEE ALSO:
  - handlers.go: Handler implementations
  - logging.go: Logging and identity middleware
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterOptions tunes NewRouter.
type RouterOptions struct {
	AllowedOrigins  []string
	EnableScenarios bool
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:8080"}
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger(h.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", HeaderUserID, HeaderUserRole},
		AllowCredentials: true,
	}))
	r.Use(Identify)

	r.Route("/api", func(r chi.Router) {
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.With(RequireAdmin).Post("/", h.CreateEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.With(RequireAdmin).Post("/{id}/terminate", h.TerminateEmployee)
			r.Get("/{id}/ledger", h.GetLedger)
			r.Get("/{id}/availability", h.CheckAvailability)
			r.Get("/{id}/transactions", h.GetTransactions)
			r.Get("/{id}/audit", h.ReconcileLedger)
			r.Get("/{id}/requests", h.ListEmployeeRequests)
			r.With(RequireSelfOrAdmin).Post("/{id}/requests", h.SubmitRequest)
			r.With(RequireSelfOrAdmin).Post("/{id}/overtime", h.CreditOvertime)
		})

		// Approve/reject check the role in the service as well.
		r.Route("/requests", func(r chi.Router) {
			r.With(RequireAdmin).Get("/pending", h.ListPendingRequests)
			r.Post("/{id}/approve", h.ApproveRequest)
			r.Post("/{id}/reject", h.RejectRequest)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(RequireAdmin)
			r.Post("/accrual", h.TriggerAccrual)
			r.Get("/promotion-targets", h.GetPromotionTargets)
		})

		r.Get("/legal-entitlements", h.ListLegalEntitlements)

		if h.Holidays != nil {
			r.Get("/holidays", h.ListHolidays)
			r.With(RequireAdmin).Post("/holidays", h.CreateHoliday)
		}

		if opts.EnableScenarios {
			r.Get("/scenarios", h.ListScenarios)
			r.Post("/scenarios/load", h.LoadScenario)
		}
	})

	return r
}
