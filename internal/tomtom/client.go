// Package tomtom is a client for the TomTom traffic flow, category search and
// reverse geocoding APIs. One client serves as the traffic, POI and
// reverse-geocode provider.
package tomtom

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gigpilot/gigpilot/internal/geo"
	"github.com/gigpilot/gigpilot/internal/geocode"
	"github.com/gigpilot/gigpilot/internal/provider/resilience"
	"github.com/gigpilot/gigpilot/internal/signals"
	"github.com/gigpilot/gigpilot/internal/traffic"
)

const (
	// ProviderName identifies this provider.
	ProviderName = "tomtom"

	// DefaultBaseURL is the TomTom API base URL.
	DefaultBaseURL = "https://api.tomtom.com"

	// DefaultCategory is the venue category counted for POI density.
	DefaultCategory = "restaurant"
)

// ClientConfig holds configuration for the TomTom client.
type ClientConfig struct {
	// APIKey is the TomTom API key. Empty means not configured.
	APIKey string

	// BaseURL is the API base URL (optional).
	BaseURL string

	// Category is the category search term (optional, defaults to restaurant).
	Category string

	// HTTPClient is the resilient HTTP client (optional).
	HTTPClient *resilience.Client
}

// Client is a TomTom API client.
type Client struct {
	apiKey     string
	baseURL    string
	category   string
	httpClient *resilience.Client
}

// NewClient creates a new TomTom client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	category := cfg.Category
	if category == "" {
		category = DefaultCategory
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		category:   category,
		httpClient: httpClient,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// FlowSegment returns current and free-flow speed for the segment nearest point.
func (c *Client) FlowSegment(ctx context.Context, point geo.Coordinate) (*traffic.Flow, error) {
	q := url.Values{}
	q.Set("point", fmt.Sprintf("%.6f,%.6f", point.Lat, point.Lon))
	q.Set("unit", "KMPH")

	var resp flowSegmentResponse
	if err := c.get(ctx, "/traffic/services/4/flowSegmentData/absolute/10/json", q, &resp); err != nil {
		return nil, err
	}

	return &traffic.Flow{
		CurrentSpeed:  resp.FlowSegmentData.CurrentSpeed,
		FreeFlowSpeed: resp.FlowSegmentData.FreeFlowSpeed,
	}, nil
}

// CountPlaces counts category matches within radiusM of point, capped at limit.
func (c *Client) CountPlaces(ctx context.Context, point geo.Coordinate, radiusM, limit int) (int, error) {
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%.6f", point.Lat))
	q.Set("lon", fmt.Sprintf("%.6f", point.Lon))
	q.Set("radius", strconv.Itoa(radiusM))
	q.Set("limit", strconv.Itoa(limit))

	var resp categorySearchResponse
	path := "/search/2/categorySearch/" + url.PathEscape(c.category) + ".json"
	if err := c.get(ctx, path, q, &resp); err != nil {
		return 0, err
	}

	return len(resp.Results), nil
}

// ReverseGeocode returns the first address for point, or nil when there is none.
// Coordinates are rounded to four decimal places.
func (c *Client) ReverseGeocode(ctx context.Context, point geo.Coordinate) (*geocode.Address, error) {
	p := point.Round(geocode.KeyPrecision)
	path := fmt.Sprintf("/search/2/reverseGeocode/%.4f,%.4f.json", p.Lat, p.Lon)

	var resp reverseGeocodeResponse
	if err := c.get(ctx, path, url.Values{}, &resp); err != nil {
		return nil, err
	}

	if len(resp.Addresses) == 0 {
		return nil, nil
	}
	addr := resp.Addresses[0].Address
	return &addr, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out interface{}) error {
	if c.apiKey == "" {
		return signals.ErrNotConfigured
	}
	q.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

type flowSegmentResponse struct {
	FlowSegmentData struct {
		CurrentSpeed  float64 `json:"currentSpeed"`
		FreeFlowSpeed float64 `json:"freeFlowSpeed"`
		Confidence    float64 `json:"confidence"`
	} `json:"flowSegmentData"`
}

type categorySearchResponse struct {
	Results []json.RawMessage `json:"results"`
}

type reverseGeocodeResponse struct {
	Addresses []struct {
		Address  geocode.Address `json:"address"`
		Position string          `json:"position"`
	} `json:"addresses"`
}
