package places_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/gigpilot/gigpilot/internal/geo"
	"github.com/gigpilot/gigpilot/internal/places"
	"github.com/gigpilot/gigpilot/internal/signals"
)

type mockProvider struct {
	count      int
	err        error
	lastRadius int
	lastLimit  int
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) CountPlaces(_ context.Context, _ geo.Coordinate, radiusM, limit int) (int, error) {
	m.lastRadius = radiusM
	m.lastLimit = limit
	return m.count, m.err
}

var point = geo.Coordinate{Lat: 28.6139, Lon: 77.2090}

func TestService_Count(t *testing.T) {
	provider := &mockProvider{count: 42}
	svc := places.NewService(places.ServiceConfig{Provider: provider, Logger: zerolog.Nop()})

	n := svc.Count(context.Background(), point, places.DefaultRadiusM, places.DefaultLimit)
	assert.Equal(t, 42, n)
	assert.Equal(t, 1000, provider.lastRadius)
	assert.Equal(t, 100, provider.lastLimit)
}

func TestService_Count_CappedAtLimit(t *testing.T) {
	svc := places.NewService(places.ServiceConfig{Provider: &mockProvider{count: 250}, Logger: zerolog.Nop()})

	assert.Equal(t, 100, svc.Count(context.Background(), point, 1000, 100))
}

func TestService_Count_Defaults(t *testing.T) {
	tests := []struct {
		name     string
		provider places.Provider
	}{
		{"provider error", &mockProvider{count: 9, err: errors.New("boom")}},
		{"not configured", &mockProvider{err: signals.ErrNotConfigured}},
		{"negative count", &mockProvider{count: -3}},
		{"no provider", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := places.NewService(places.ServiceConfig{Provider: tt.provider, Logger: zerolog.Nop()})
			assert.Equal(t, 0, svc.Count(context.Background(), point, 1000, 100))
		})
	}
}
