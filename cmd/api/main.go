// Package main provides the entrypoint for the gigpilot API server.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gigpilot/gigpilot/internal/api"
	"github.com/gigpilot/gigpilot/internal/api/handler"
	"github.com/gigpilot/gigpilot/internal/api/middleware"
	"github.com/gigpilot/gigpilot/internal/app"
	"github.com/gigpilot/gigpilot/internal/config"
	"github.com/gigpilot/gigpilot/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "gigpilot-api"

	configPath := flag.String("config", "", "path to gigpilot.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		// No logger yet; the config decides its level and format.
		_, _ = os.Stderr.WriteString("gigpilot-api: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := cfg.NewLogger(serviceName, Version)
	log.Info().
		Str("build_time", BuildTime).
		Str("env", cfg.Server.Env).
		Msg("starting gigpilot API")

	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		Component:      "api",
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Server.Env,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Enabled:        cfg.Telemetry.Enabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.Telemetry.Enabled {
		log.Info().
			Str("otlp_endpoint", cfg.Telemetry.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	engine, err := app.Build(ctx, cfg, log, app.Options{Metrics: tp.Metrics})
	if err != nil {
		log.Error().Err(err).Msg("failed to build scouting engine")
		os.Exit(1)
	}
	defer engine.Close()
	log.Info().
		Int("providers", engine.Registry.ProviderCount()).
		Str("poi_provider", cfg.Providers.POI).
		Msg("scouting engine initialized")

	checks := make([]handler.Check, 0, len(engine.Checks))
	for _, c := range engine.Checks {
		checks = append(checks, handler.Check{Name: c.Name, Probe: c.Probe})
	}

	rateLimit := middleware.OpportunityRateLimit
	if cfg.Server.RateLimit > 0 {
		rateLimit.RequestLimit = cfg.Server.RateLimit
	}

	router := api.NewRouter(api.RouterConfig{
		Version:        Version,
		BuildTime:      BuildTime,
		Logger:         log,
		ServiceName:    serviceName,
		Metrics:        metrics,
		Predictor:      engine.Orchestrator,
		Registry:       engine.Registry,
		Checks:         checks,
		RequestTimeout: cfg.Scout.RequestTimeout,
		RateLimit:      &rateLimit,
		RequireTLS:     cfg.Server.Env == "production",
	})

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Scout.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return
	}

	log.Info().Msg("server stopped")
}
