package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigpilot/gigpilot/internal/app"
	"github.com/gigpilot/gigpilot/internal/config"
	"github.com/gigpilot/gigpilot/internal/geo"
	"github.com/gigpilot/gigpilot/internal/transactions"
	"github.com/gigpilot/gigpilot/internal/weather"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.TomTom.APIKey = ""
	cfg.OpenWeatherMap.APIKey = ""
	cfg.Advisor.APIKey = ""
	cfg.Geocode.RedisAddr = ""
	cfg.Database.Enabled = false
	return cfg
}

func TestBuild_Offline(t *testing.T) {
	cfg := testConfig(t)

	engine, err := app.Build(context.Background(), cfg, zerolog.Nop(), app.Options{Offline: true})
	require.NoError(t, err)
	defer engine.Close()

	assert.Zero(t, engine.Registry.ProviderCount())
	assert.Empty(t, engine.Checks)
	require.NotNil(t, engine.Orchestrator)
	require.NotNil(t, engine.Sampler)

	result, err := engine.Orchestrator.Predict(context.Background(), "rider-1", nil)
	require.NoError(t, err)
	assert.Equal(t, cfg.DefaultOrigin(), result.Origin)
	assert.Equal(t, weather.ConditionUnknown, result.Weather.Condition)
	assert.Equal(t, "Low", result.Confidence)
	assert.Equal(t, app.OfflineAdvice, result.RawAIText)
}

func TestBuild_RegistersProviderClients(t *testing.T) {
	cfg := testConfig(t)

	engine, err := app.Build(context.Background(), cfg, zerolog.Nop(), app.Options{})
	require.NoError(t, err)
	defer engine.Close()

	assert.Equal(t, 2, engine.Registry.ProviderCount())
	assert.NotNil(t, engine.Registry.GetHealth("tomtom"))
	assert.NotNil(t, engine.Registry.GetHealth("openweathermap"))
	assert.Nil(t, engine.Registry.GetHealth("overpass"))
}

func TestBuild_OverpassPOIProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.Providers.POI = config.POIProviderOverpass

	engine, err := app.Build(context.Background(), cfg, zerolog.Nop(), app.Options{})
	require.NoError(t, err)
	defer engine.Close()

	assert.Equal(t, 3, engine.Registry.ProviderCount())
	assert.NotNil(t, engine.Registry.GetHealth("overpass"))
}

func TestBuild_UnconfiguredKeysDegradeToDefaults(t *testing.T) {
	cfg := testConfig(t)

	engine, err := app.Build(context.Background(), cfg, zerolog.Nop(), app.Options{})
	require.NoError(t, err)
	defer engine.Close()

	origin := geo.Coordinate{Lat: 12.9716, Lon: 77.5946}
	result, err := engine.Orchestrator.Predict(context.Background(), "rider-1", &origin)
	require.NoError(t, err)
	assert.Equal(t, origin, result.Origin)
	assert.Equal(t, weather.ConditionUnknown, result.Weather.Condition)
	assert.Equal(t, "Medium", result.Confidence)
}

func TestBuild_HistoryStoreIsShared(t *testing.T) {
	cfg := testConfig(t)

	engine, err := app.Build(context.Background(), cfg, zerolog.Nop(), app.Options{Offline: true})
	require.NoError(t, err)
	defer engine.Close()

	err = engine.History.Add(context.Background(), "rider-1", transactions.Record{
		Income:      900,
		HoursWorked: 3,
		LoggedAt:    time.Now(),
	})
	require.NoError(t, err)

	records, err := engine.History.History(context.Background(), "rider-1")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
