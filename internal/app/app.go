// Package app wires the scouting engine from configuration. The API server,
// the pre-warm worker and the CLI share one composition.
package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/gigpilot/gigpilot/internal/advisor"
	"github.com/gigpilot/gigpilot/internal/config"
	"github.com/gigpilot/gigpilot/internal/database"
	"github.com/gigpilot/gigpilot/internal/geocode"
	"github.com/gigpilot/gigpilot/internal/places"
	"github.com/gigpilot/gigpilot/internal/places/overpass"
	"github.com/gigpilot/gigpilot/internal/provider/resilience"
	"github.com/gigpilot/gigpilot/internal/scout"
	"github.com/gigpilot/gigpilot/internal/signals"
	"github.com/gigpilot/gigpilot/internal/telemetry"
	"github.com/gigpilot/gigpilot/internal/tomtom"
	"github.com/gigpilot/gigpilot/internal/traffic"
	"github.com/gigpilot/gigpilot/internal/transactions"
	"github.com/gigpilot/gigpilot/internal/weather"
	"github.com/gigpilot/gigpilot/internal/weather/openweathermap"
)

// Options adjusts the composition for a particular binary.
type Options struct {
	// Offline replaces every network collaborator with its default: no
	// providers, an in-memory history store and a static advisor.
	Offline bool

	// Advisor overrides the configured advisor. Optional.
	Advisor advisor.Advisor

	// Metrics records provider outcomes and cache hits. Optional.
	Metrics *telemetry.ProviderMetrics
}

// Check is a named readiness probe for an optional backing store.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

// Engine is the assembled scouting engine.
type Engine struct {
	Orchestrator *scout.Orchestrator
	Sampler      *scout.Sampler
	Registry     *resilience.Registry
	History      transactions.Repository
	Checks       []Check

	closers []func()
}

// Close releases pools and connections in reverse order of creation.
func (e *Engine) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

// OfflineAdvice is the advisor answer used when running offline.
const OfflineAdvice = `{"confidence": "Low"}`

// Build assembles the engine. Missing API keys are not an error: the affected
// signal falls back to its default on every call.
func Build(ctx context.Context, cfg *config.Config, logger zerolog.Logger, opts Options) (*Engine, error) {
	engine := &Engine{Registry: resilience.NewRegistry()}

	var (
		recorder signals.Recorder = signals.NopRecorder{}
		cacheRec geocode.CacheRecorder
	)
	if opts.Metrics != nil {
		recorder = opts.Metrics
		cacheRec = opts.Metrics
	}

	var (
		weatherProvider weather.Provider
		trafficProvider traffic.Provider
		placesProvider  places.Provider
		geoProvider     geocode.Provider
	)
	if !opts.Offline {
		tt := tomtom.NewClient(tomtom.ClientConfig{
			APIKey:     cfg.TomTom.APIKey,
			BaseURL:    cfg.TomTom.BaseURL,
			Category:   cfg.TomTom.Category,
			HTTPClient: engine.httpClient(cfg, tomtom.ProviderName, logger),
		})
		trafficProvider = tt
		geoProvider = tt
		placesProvider = tt

		if cfg.Providers.POI == config.POIProviderOverpass {
			placesProvider = overpass.NewProvider(overpass.ProviderConfig{
				Endpoint:   cfg.Overpass.Endpoint,
				HTTPClient: engine.httpClient(cfg, overpass.ProviderName, logger),
			})
		}

		weatherProvider = openweathermap.NewClient(openweathermap.ClientConfig{
			APIKey:     cfg.OpenWeatherMap.APIKey,
			BaseURL:    cfg.OpenWeatherMap.BaseURL,
			HTTPClient: engine.httpClient(cfg, openweathermap.ProviderName, logger),
		})

		logProviderKeys(cfg, logger)
	}

	store, err := engine.areaStore(ctx, cfg, logger, opts.Offline)
	if err != nil {
		engine.Close()
		return nil, err
	}

	history, err := engine.historyStore(ctx, cfg, logger, opts.Offline)
	if err != nil {
		engine.Close()
		return nil, err
	}
	engine.History = history

	weatherSvc := weather.NewService(weather.ServiceConfig{Provider: weatherProvider, Logger: logger, Metrics: recorder})
	trafficSvc := traffic.NewService(traffic.ServiceConfig{Provider: trafficProvider, Logger: logger, Metrics: recorder})
	placesSvc := places.NewService(places.ServiceConfig{Provider: placesProvider, Logger: logger, Metrics: recorder})
	resolver := geocode.NewCachedResolver(geocode.ResolverConfig{
		Provider: geoProvider,
		Store:    store,
		Logger:   logger,
		Metrics:  recorder,
		Cache:    cacheRec,
	})

	enricher := scout.NewEnricher(scout.EnricherConfig{
		Places:      placesSvc,
		Traffic:     trafficSvc,
		Areas:       resolver,
		CallTimeout: cfg.Providers.Timeout,
	})
	engine.Sampler = scout.NewSampler(enricher)

	adv := opts.Advisor
	if adv == nil {
		if opts.Offline {
			adv = advisor.Static(OfflineAdvice)
		} else {
			adv = advisor.NewClaudeAdvisor(advisor.ClaudeConfig{
				APIKey:    cfg.Advisor.APIKey,
				Model:     cfg.Advisor.Model,
				MaxTokens: cfg.Advisor.MaxTokens,
				BaseURL:   cfg.Advisor.BaseURL,
				Timeout:   cfg.Advisor.Timeout,
				Logger:    logger,
			})
		}
	}

	origin := cfg.DefaultOrigin()
	engine.Orchestrator = scout.NewOrchestrator(scout.Config{
		Weather:       weatherSvc,
		Traffic:       trafficSvc,
		Sampler:       engine.Sampler,
		History:       history,
		Advisor:       adv,
		DefaultOrigin: &origin,
		Location:      cfg.Location(),
		CallTimeout:   cfg.Providers.Timeout,
		Logger:        logger,
	})

	return engine, nil
}

// httpClient creates a registered resilient client for one provider.
func (e *Engine) httpClient(cfg *config.Config, name string, logger zerolog.Logger) *resilience.Client {
	clientCfg := resilience.DefaultClientConfig(name)
	clientCfg.Timeout = cfg.Providers.Timeout
	clientCfg.Registry = e.Registry
	clientCfg.CircuitBreaker.OnStateChange = resilience.LogStateChanges(logger)
	if !cfg.Providers.CircuitBreaker {
		clientCfg.CircuitBreaker.ReadyToTrip = func(gobreaker.Counts) bool { return false }
	}
	return resilience.NewClient(clientCfg)
}

// areaStore builds the area-name cache: an LRU, fronting Redis when an address
// is configured.
func (e *Engine) areaStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger, offline bool) (geocode.Store, error) {
	local := geocode.NewLRUStore(cfg.Geocode.CacheCapacity)
	if offline || cfg.Geocode.RedisAddr == "" {
		return local, nil
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    []string{cfg.Geocode.RedisAddr},
		Password: cfg.Geocode.RedisPassword,
		DB:       cfg.Geocode.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Geocode.RedisAddr, err)
	}
	e.closers = append(e.closers, func() { _ = client.Close() })
	e.Checks = append(e.Checks, Check{
		Name:  "redis",
		Probe: func(ctx context.Context) error { return client.Ping(ctx).Err() },
	})

	logger.Info().Str("addr", cfg.Geocode.RedisAddr).Msg("area name cache backed by redis")
	return geocode.NewTieredStore(local, geocode.NewRedisStore(client, cfg.Geocode.RedisTTL, logger)), nil
}

// historyStore returns the Postgres work log when enabled, else an in-memory one.
func (e *Engine) historyStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger, offline bool) (transactions.Repository, error) {
	if offline || !cfg.Database.Enabled {
		return transactions.NewInMemoryRepository(), nil
	}

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	e.closers = append(e.closers, pool.Close)
	e.Checks = append(e.Checks, Check{Name: "postgres", Probe: pool.Ping})

	logger.Info().
		Str("host", cfg.Database.Host).
		Int("port", cfg.Database.Port).
		Str("database", cfg.Database.Database).
		Msg("database connected")
	return transactions.NewPostgresRepository(pool), nil
}

func logProviderKeys(cfg *config.Config, logger zerolog.Logger) {
	missing := func(name string) {
		logger.Warn().Str("provider", name).Msg("no API key configured, signal will use defaults")
	}
	if cfg.TomTom.APIKey == "" {
		missing(tomtom.ProviderName)
	}
	if cfg.OpenWeatherMap.APIKey == "" {
		missing(openweathermap.ProviderName)
	}
	if cfg.Advisor.APIKey == "" {
		missing("anthropic")
	}
}
