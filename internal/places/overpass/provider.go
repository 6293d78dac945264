// Package overpass counts venues from OpenStreetMap through the Overpass API.
package overpass

import (
	"context"
	"fmt"

	"github.com/serjvanilla/go-overpass"

	"github.com/gigpilot/gigpilot/internal/geo"
	"github.com/gigpilot/gigpilot/internal/provider/resilience"
)

const (
	// ProviderName identifies this POI provider.
	ProviderName = "overpass"

	// DefaultEndpoint is the public Overpass interpreter.
	DefaultEndpoint = "https://overpass-api.de/api/interpreter"

	// amenityFilter approximates the food-delivery venue categories.
	amenityFilter = "restaurant|fast_food|cafe"
)

// ProviderConfig holds configuration for the Overpass provider.
type ProviderConfig struct {
	// Endpoint is the interpreter URL (optional).
	Endpoint string

	// HTTPClient is the resilient client used for queries (optional).
	HTTPClient *resilience.Client
}

// Provider implements places.Provider over Overpass QL.
type Provider struct {
	client  overpass.Client
	timeout int
}

// NewProvider creates a new Overpass POI provider.
func NewProvider(cfg ProviderConfig) *Provider {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Provider{
		client:  overpass.NewWithSettings(endpoint, 2, httpClient),
		timeout: int(httpClient.Timeout().Seconds()),
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return ProviderName
}

// CountPlaces counts amenity nodes within radiusM of point, capped at limit.
func (p *Provider) CountPlaces(ctx context.Context, point geo.Coordinate, radiusM, limit int) (int, error) {
	query := buildQuery(point, radiusM, limit, p.timeout)

	type queryResult struct {
		result overpass.Result
		err    error
	}
	done := make(chan queryResult, 1)

	// The library call takes no context, so cancellation is honoured here.
	go func() {
		res, err := p.client.Query(query)
		done <- queryResult{result: res, err: err}
	}()

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return 0, fmt.Errorf("overpass query failed: %w", r.err)
		}
		n := len(r.result.Nodes)
		if limit > 0 && n > limit {
			n = limit
		}
		return n, nil
	}
}

func buildQuery(point geo.Coordinate, radiusM, limit, timeoutSec int) string {
	if timeoutSec <= 0 {
		timeoutSec = 3
	}
	return fmt.Sprintf(`[out:json][timeout:%d];
node(around:%d,%.6f,%.6f)["amenity"~"%s"];
out ids %d;`, timeoutSec, radiusM, point.Lat, point.Lon, amenityFilter, limit)
}
