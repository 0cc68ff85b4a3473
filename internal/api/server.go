// Package api exposes contracts, inspections and execution requirements over
// a JSON HTTP API.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/sells-group/inspection-cli/internal/i18n"
	"github.com/sells-group/inspection-cli/internal/service"
)

// Options configures the router.
type Options struct {
	// RateLimit is the sustained request rate per second across all clients.
	RateLimit float64
	Burst     int

	AllowedOrigins []string

	// Locale is used when a request carries no usable Accept-Language.
	Locale i18n.Localizer
}

// Server holds the services behind the HTTP handlers.
type Server struct {
	rules        *service.RuleService
	requirements *service.RequirementService
	locale       i18n.Localizer
}

// NewRouter builds the HTTP handler with all routes and middleware.
func NewRouter(ruleSvc *service.RuleService, reqSvc *service.RequirementService, opts Options) http.Handler {
	s := &Server{rules: ruleSvc, requirements: reqSvc, locale: opts.Locale}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Accept-Language", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))
	if opts.RateLimit > 0 {
		r.Use(rateLimit(rate.NewLimiter(rate.Limit(opts.RateLimit), max(opts.Burst, 1))))
	}

	r.Get("/health", s.handleHealth)

	r.Post("/contracts", s.handleCreateContract)
	r.Get("/contracts/{id}", s.handleGetContract)
	r.Post("/contracts/{id}/rules/merge", s.handleMergeRules)

	r.Post("/inspections", s.handleCreateInspection)
	r.Get("/inspections/{id}", s.handleGetInspection)
	r.Route("/inspections/{id}/requirements", func(r chi.Router) {
		r.Get("/", s.handleListRequirements)
		r.Put("/", s.handleSetRequirement)
		r.Post("/select", s.handleSelectWeek)
		r.Post("/append", s.handleAppendWeek)
		r.Delete("/{year}/{week}", s.handleRemoveWeek)
		r.Get("/export", s.handleExport)
	})

	return r
}

// NewHTTPServer wraps handler in an http.Server listening on addr.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
