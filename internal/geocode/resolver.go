// Package geocode resolves coordinates to human-readable area names behind a
// bounded, coordinate-keyed cache.
package geocode

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/gigpilot/gigpilot/internal/geo"
	"github.com/gigpilot/gigpilot/internal/signals"
)

// KeyPrecision is the number of decimal places kept in cache keys (about 11 m).
const KeyPrecision = 4

const cacheName = "area_name"

// Provider reverse-geocodes a point. A nil address with a nil error means the
// provider answered but had no address for the point.
type Provider interface {
	ReverseGeocode(ctx context.Context, point geo.Coordinate) (*Address, error)
	Name() string
}

// CacheRecorder receives cache hit/miss counts. Optional.
type CacheRecorder interface {
	RecordCacheHit(cache string)
	RecordCacheMiss(cache string)
}

// ResolverConfig holds configuration for the cached resolver.
type ResolverConfig struct {
	Provider Provider

	// Store caches resolved names. Defaults to an LRUStore of DefaultCapacity.
	Store Store

	Logger  zerolog.Logger
	Metrics signals.Recorder
	Cache   CacheRecorder
}

// CachedResolver resolves area names, collapsing concurrent lookups for the
// same rounded key into one provider call.
type CachedResolver struct {
	provider Provider
	store    Store
	logger   zerolog.Logger
	metrics  signals.Recorder
	cache    CacheRecorder
	group    singleflight.Group
}

type resolution struct {
	name       string
	configured bool
}

// NewCachedResolver creates a new resolver.
func NewCachedResolver(cfg ResolverConfig) *CachedResolver {
	store := cfg.Store
	if store == nil {
		store = NewLRUStore(DefaultCapacity)
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = signals.NopRecorder{}
	}

	return &CachedResolver{
		provider: cfg.Provider,
		store:    store,
		logger:   cfg.Logger,
		metrics:  metrics,
		cache:    cfg.Cache,
	}
}

// AreaName returns the area name for point. ok is false only when the
// provider is not configured, in which case the caller supplies its own
// fallback. Network or parse failures, and a ctx that ends before the
// lookup does, yield UnknownArea; an answer without any address yields
// NearbyArea.
func (r *CachedResolver) AreaName(ctx context.Context, point geo.Coordinate) (name string, ok bool) {
	if r.provider == nil {
		return "", false
	}

	key := point.Key(KeyPrecision)
	if v, hit := r.store.Get(ctx, key); hit {
		r.recordCache(true)
		return v, true
	}
	r.recordCache(false)

	// The shared lookup outlives any single caller so a cancelled first caller
	// does not fail the others; the resilient client still bounds it. Each
	// caller waits only as long as its own context allows.
	detached := context.WithoutCancel(ctx)
	ch := r.group.DoChan(key, func() (interface{}, error) {
		if cached, hit := r.store.Get(detached, key); hit {
			return resolution{name: cached, configured: true}, nil
		}

		res := r.lookup(detached, point.Round(KeyPrecision))
		if res.configured {
			r.store.Put(detached, key, res.name)
		}
		return res, nil
	})

	select {
	case out := <-ch:
		res := out.Val.(resolution)
		return res.name, res.configured
	case <-ctx.Done():
		return UnknownArea, true
	}
}

func (r *CachedResolver) lookup(ctx context.Context, point geo.Coordinate) resolution {
	start := time.Now()
	addr, err := r.provider.ReverseGeocode(ctx, point)
	signals.Observe(r.logger, r.metrics, signals.Observation{
		Provider:  r.provider.Name(),
		Operation: "reverse_geocode",
		Point:     point,
		Started:   start,
		Err:       err,
	})

	switch {
	case errors.Is(err, signals.ErrNotConfigured):
		return resolution{}
	case err != nil:
		return resolution{name: UnknownArea, configured: true}
	case addr == nil:
		return resolution{name: NearbyArea, configured: true}
	default:
		return resolution{name: addr.AreaName(), configured: true}
	}
}

func (r *CachedResolver) recordCache(hit bool) {
	if r.cache == nil {
		return
	}
	if hit {
		r.cache.RecordCacheHit(cacheName)
	} else {
		r.cache.RecordCacheMiss(cacheName)
	}
}
