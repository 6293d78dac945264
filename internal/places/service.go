// Package places provides the point-of-interest density signal used as a
// demand proxy when scoring hotspots.
package places

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/gigpilot/gigpilot/internal/geo"
	"github.com/gigpilot/gigpilot/internal/signals"
)

// Default search parameters for hotspot enrichment.
const (
	DefaultRadiusM = 1000
	DefaultLimit   = 100
)

// Provider counts matching venues around a point.
type Provider interface {
	CountPlaces(ctx context.Context, point geo.Coordinate, radiusM, limit int) (int, error)
	Name() string
}

// ServiceConfig holds configuration for the places service.
type ServiceConfig struct {
	Provider Provider
	Logger   zerolog.Logger
	Metrics  signals.Recorder
}

// Service resolves POI density, substituting 0 on any failure.
type Service struct {
	provider Provider
	logger   zerolog.Logger
	metrics  signals.Recorder
}

// NewService creates a new places service.
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

// Count returns the number of venues within radiusM of point, capped at limit.
// It never fails and never returns a negative count.
func (s *Service) Count(ctx context.Context, point geo.Coordinate, radiusM, limit int) int {
	if s.provider == nil {
		return 0
	}

	start := time.Now()
	n, err := s.provider.CountPlaces(ctx, point, radiusM, limit)
	outcome := signals.Observe(s.logger, s.metrics, signals.Observation{
		Provider:  s.provider.Name(),
		Operation: "poi_count",
		Point:     point,
		Started:   start,
		Err:       err,
	})
	if outcome != signals.OutcomeLive || n < 0 {
		return 0
	}
	if limit > 0 && n > limit {
		return limit
	}
	return n
}
