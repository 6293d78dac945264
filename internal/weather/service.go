// Package weather provides the current-conditions signal for opportunity scouting.
package weather

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/gigpilot/gigpilot/internal/geo"
	"github.com/gigpilot/gigpilot/internal/signals"
)

// Provider defines the interface for weather data providers.
type Provider interface {
	// CurrentWeather fetches current conditions at a point.
	CurrentWeather(ctx context.Context, point geo.Coordinate) (Signal, error)

	// Name returns the provider name for logging.
	Name() string
}

// ServiceConfig holds configuration for the weather service.
type ServiceConfig struct {
	// Provider is the weather data provider. A nil provider always yields the default.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// Metrics records per-call outcomes. Optional.
	Metrics signals.Recorder
}

// Service resolves the weather signal, substituting DefaultSignal on any failure.
type Service struct {
	provider Provider
	logger   zerolog.Logger
	metrics  signals.Recorder
}

// NewService creates a new weather service.
func NewService(cfg ServiceConfig) *Service {
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = signals.NopRecorder{}
	}

	return &Service{
		provider: cfg.Provider,
		logger:   cfg.Logger,
		metrics:  metrics,
	}
}

// Weather returns the current conditions at point. It never fails.
func (s *Service) Weather(ctx context.Context, point geo.Coordinate) Signal {
	sig, _ := s.Lookup(ctx, point)
	return sig
}

// Lookup is Weather plus the tagged outcome.
func (s *Service) Lookup(ctx context.Context, point geo.Coordinate) (Signal, signals.Outcome) {
	if s.provider == nil {
		return DefaultSignal(), signals.OutcomeDefault
	}

	start := time.Now()
	sig, err := s.provider.CurrentWeather(ctx, point)
	outcome := signals.Observe(s.logger, s.metrics, signals.Observation{
		Provider:  s.provider.Name(),
		Operation: "weather",
		Point:     point,
		Started:   start,
		Err:       err,
	})
	if outcome != signals.OutcomeLive {
		return DefaultSignal(), outcome
	}

	if sig.Condition == "" {
		sig.Condition = ConditionUnknown
	}
	return sig, outcome
}
