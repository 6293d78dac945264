// Package main provides the entrypoint for the gigpilot pre-warm worker.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gigpilot/gigpilot/internal/app"
	"github.com/gigpilot/gigpilot/internal/config"
	"github.com/gigpilot/gigpilot/internal/telemetry"
	"github.com/gigpilot/gigpilot/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "gigpilot-worker"

	configPath := flag.String("config", "", "path to gigpilot.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		_, _ = os.Stderr.WriteString("gigpilot-worker: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := cfg.NewLogger(serviceName, Version)
	log.Info().
		Str("build_time", BuildTime).
		Msg("starting gigpilot worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		Component:      "worker",
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
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	engine, err := app.Build(ctx, cfg, log, app.Options{Metrics: tp.Metrics})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build scouting engine")
	}
	defer engine.Close()

	if cfg.Geocode.RedisAddr == "" {
		log.Warn().Msg("no redis configured, pre-warm only warms this process")
	}

	prewarm := worker.NewPrewarmJob(worker.PrewarmJobConfig{
		Config: worker.PrewarmConfig{
			Zones:       worker.DefaultZones(),
			Concurrency: cfg.Worker.Concurrency,
			Timeout:     cfg.Worker.Timeout,
		},
		Sampler: engine.Sampler,
		Logger:  log,
	})

	dispatcher := worker.NewDispatcher(worker.DispatcherConfig{
		Prewarm:  prewarm,
		Registry: engine.Registry,
		Logger:   log,
	})

	// Worker also exposes health endpoints for Cloud Run
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{
			"status":  "healthy",
			"version": Version,
		})
	})
	mux.HandleFunc("/metrics/prewarm", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, prewarm.MetricsSnapshot())
	})

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health check server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	if cfg.PubSub.ProjectID != "" {
		handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        cfg.PubSub.ProjectID,
			SubscriptionName: cfg.PubSub.Subscription,
			Dispatcher:       dispatcher,
			Logger:           log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub handler")
		}
		defer func() {
			if err := handler.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close pubsub client")
			}
		}()

		go func() {
			if err := handler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("pubsub handler stopped")
				cancel()
			}
		}()
	} else {
		log.Warn().Msg("no pubsub project configured, running one pre-warm at startup")
		go func() {
			if err := dispatcher.Dispatch(ctx, []byte(`{"job_type":"`+worker.JobTypePrewarm+`"}`)); err != nil {
				log.Error().Err(err).Msg("startup pre-warm failed")
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}
