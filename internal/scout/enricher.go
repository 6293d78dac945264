package scout

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gigpilot/gigpilot/internal/geo"
	"github.com/gigpilot/gigpilot/internal/geocode"
	"github.com/gigpilot/gigpilot/internal/places"
	"github.com/gigpilot/gigpilot/internal/provider/resilience"
	"github.com/gigpilot/gigpilot/internal/traffic"
	"github.com/gigpilot/gigpilot/internal/weather"
)

// enricherConcurrency is one slot per signal.
const enricherConcurrency = 3

// POICounter is satisfied by *places.Service.
type POICounter interface {
	Count(ctx context.Context, point geo.Coordinate, radiusM, limit int) int
}

// TrafficSource is satisfied by *traffic.Service.
type TrafficSource interface {
	Level(ctx context.Context, point geo.Coordinate) traffic.Level
}

// AreaNamer is satisfied by *geocode.CachedResolver. ok is false when the
// resolver is not configured.
type AreaNamer interface {
	AreaName(ctx context.Context, point geo.Coordinate) (name string, ok bool)
}

// WeatherSource is satisfied by *weather.Service.
type WeatherSource interface {
	Weather(ctx context.Context, point geo.Coordinate) weather.Signal
}

// EnricherConfig holds configuration for the point enricher.
type EnricherConfig struct {
	Places  POICounter
	Traffic TrafficSource
	Areas   AreaNamer

	// CallTimeout bounds each signal lookup. Defaults to resilience.DefaultTimeout.
	CallTimeout time.Duration

	// RadiusM and Limit parameterise the POI search.
	RadiusM int
	Limit   int
}

// Enricher gathers POI density, traffic and area name for a point concurrently.
type Enricher struct {
	places      POICounter
	traffic     TrafficSource
	areas       AreaNamer
	callTimeout time.Duration
	radiusM     int
	limit       int
}

// NewEnricher creates a point enricher.
func NewEnricher(cfg EnricherConfig) *Enricher {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = resilience.DefaultTimeout
	}
	if cfg.RadiusM <= 0 {
		cfg.RadiusM = places.DefaultRadiusM
	}
	if cfg.Limit <= 0 {
		cfg.Limit = places.DefaultLimit
	}

	return &Enricher{
		places:      cfg.Places,
		traffic:     cfg.Traffic,
		areas:       cfg.Areas,
		callTimeout: cfg.CallTimeout,
		radiusM:     cfg.RadiusM,
		limit:       cfg.Limit,
	}
}

// Enrich collects every signal for point. Each signal degrades on its own;
// the call returns once all three have answered or defaulted.
func (e *Enricher) Enrich(ctx context.Context, point, origin geo.Coordinate) EnrichedPoint {
	ep := EnrichedPoint{
		Point:      point,
		Traffic:    traffic.LevelUnknown,
		AreaName:   geocode.UnknownArea,
		DistanceKm: geo.Distance(origin, point),
	}

	var g errgroup.Group
	g.SetLimit(enricherConcurrency)

	g.Go(func() error {
		if e.places == nil {
			return nil
		}
		callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
		defer cancel()
		if n := e.places.Count(callCtx, point, e.radiusM, e.limit); n > 0 {
			ep.POICount = n
		}
		return nil
	})

	g.Go(func() error {
		if e.traffic == nil {
			return nil
		}
		callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
		defer cancel()
		ep.Traffic = e.traffic.Level(callCtx, point)
		return nil
	})

	g.Go(func() error {
		if e.areas == nil {
			return nil
		}
		callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
		defer cancel()
		if name, ok := e.areas.AreaName(callCtx, point); ok && name != "" {
			ep.AreaName = name
		}
		return nil
	})

	_ = g.Wait()
	return ep
}
