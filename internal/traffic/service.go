// Package traffic provides the congestion signal for opportunity scouting.
package traffic

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/gigpilot/gigpilot/internal/geo"
	"github.com/gigpilot/gigpilot/internal/signals"
)

// ErrNoFlow is returned when the provider answered without a flow segment.
var ErrNoFlow = errors.New("no flow segment in response")

// Provider defines the interface for traffic flow providers.
type Provider interface {
	FlowSegment(ctx context.Context, point geo.Coordinate) (*Flow, error)
	Name() string
}

// ServiceConfig holds configuration for the traffic service.
type ServiceConfig struct {
	Provider Provider
	Logger   zerolog.Logger
	Metrics  signals.Recorder
}

// Service resolves the traffic level, substituting LevelUnknown on any failure.
type Service struct {
	provider Provider
	logger   zerolog.Logger
	metrics  signals.Recorder
}

// NewService creates a new traffic service.
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

// Level returns the congestion level at point. It never fails.
func (s *Service) Level(ctx context.Context, point geo.Coordinate) Level {
	if s.provider == nil {
		return LevelUnknown
	}

	start := time.Now()
	flow, err := s.provider.FlowSegment(ctx, point)
	if err == nil && flow == nil {
		err = ErrNoFlow
	}

	outcome := signals.Observe(s.logger, s.metrics, signals.Observation{
		Provider:  s.provider.Name(),
		Operation: "traffic",
		Point:     point,
		Started:   start,
		Err:       err,
	})
	if outcome != signals.OutcomeLive {
		return LevelUnknown
	}

	return flow.Level()
}
