/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     zap request logging (logger.Middleware)
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. Metrics:    Request duration per route pattern
  5. CORS:       Cross-origin requests for frontends

ROUTE GROUPS:
  /api/assessments/*     Assess and preview
  /api/applications/*    History and notice of assessment
  /api/program-years/*   Configuration and reporting
  /api/scenarios/*       Demo scenarios
  /api/reset             Database reset (dev only)
  /metrics               Prometheus scrape endpoint
  /healthz               Health probe

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
	"go.uber.org/zap"

	"github.com/studentaid/assessment-engine/logger"
	"github.com/studentaid/assessment-engine/metrics"
)

// RouterOptions configures the cross-cutting middleware.
type RouterOptions struct {
	AllowedOrigins []string
	Logger         *zap.Logger
	Metrics        *metrics.Metrics
	// EnableReset exposes POST /api/reset.
	EnableReset bool
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:8080"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(logger.Middleware(opts.Logger))
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware(opts.Metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/assessments", func(r chi.Router) {
			r.Post("/", h.CreateAssessment)
			r.Post("/preview", h.PreviewAssessment)
		})

		r.Route("/applications/{id}", func(r chi.Router) {
			r.Get("/assessments", h.ListAssessments)
			r.Get("/notice-of-assessment", h.GetNoticeOfAssessment)
		})

		r.Route("/program-years", func(r chi.Router) {
			r.Get("/", h.ListProgramYears)
			r.Get("/{name}/awards", h.ListAwards)
			r.Get("/{name}/summary", h.GetAwardSummary)
		})

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/{id}/assess", h.AssessScenario)
		})

		if opts.EnableReset {
			r.Post("/reset", h.ResetDatabase)
		}
	})

	r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	r.Get("/healthz", h.Health)

	return r
}

// metricsMiddleware records request durations by route pattern so path
// parameters do not explode the label set.
func metricsMiddleware(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m == nil {
				next.ServeHTTP(w, r)
				return
			}
			start := time.Now()
			next.ServeHTTP(w, r)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			m.ObserveHTTPRequest(r.Method, route, time.Since(start))
		})
	}
}
