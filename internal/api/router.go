// Package api provides the HTTP API for gigpilot.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/gigpilot/gigpilot/internal/api/handler"
	"github.com/gigpilot/gigpilot/internal/api/middleware"
	"github.com/gigpilot/gigpilot/internal/api/response"
	"github.com/gigpilot/gigpilot/internal/provider/resilience"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	// Predictor answers opportunity requests. Usually a *scout.Orchestrator.
	Predictor handler.Predictor

	// Registry and Checks feed the ops endpoints.
	Registry *resilience.Registry
	Checks   []handler.Check

	// RequestTimeout bounds each prediction. 0 disables the bound.
	RequestTimeout time.Duration

	// RateLimit overrides the per-user prediction budget.
	RateLimit *middleware.RateLimitConfig

	RequireTLS bool
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "gigpilot-api"
	}

	// Order matters: request id first so every later layer can log it.
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireTLS(cfg.RequireTLS))
	r.Use(middleware.ContentTypeJSON)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, r, "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(response.MethodNotAllowed)

	opsHandler := handler.NewOpsHandler(handler.OpsConfig{
		Version:   cfg.Version,
		BuildTime: cfg.BuildTime,
		Registry:  cfg.Registry,
		Checks:    cfg.Checks,
	})

	limit := middleware.OpportunityRateLimit
	if cfg.RateLimit != nil {
		limit = *cfg.RateLimit
	}

	r.Route("/v1", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Use(middleware.RateLimitByIP(middleware.OpsRateLimit))
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		if cfg.Predictor != nil {
			opportunityHandler := handler.NewOpportunityHandler(cfg.Predictor, cfg.Logger)
			r.With(
				middleware.RateLimitByUser(limit),
				middleware.Deadline(cfg.RequestTimeout),
			).Get("/opportunities/{userId}", opportunityHandler.GetOpportunity)
		}
	})

	return r
}
