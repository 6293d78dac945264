// Package scout is the opportunity scouting engine. It samples a ring of
// points around a worker, scores them as hotspots, estimates demand surge and
// combines the result with narrative advice into an opportunity prediction.
package scout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/gigpilot/gigpilot/internal/advisor"
	"github.com/gigpilot/gigpilot/internal/geo"
	"github.com/gigpilot/gigpilot/internal/signals"
	"github.com/gigpilot/gigpilot/internal/traffic"
	"github.com/gigpilot/gigpilot/internal/transactions"
	"github.com/gigpilot/gigpilot/internal/weather"
)

// ErrMissingUserID is returned when Predict is called without a user id.
var ErrMissingUserID = errors.New("user id is required")

// DefaultOrigin is used when the caller supplies no coordinates (Mumbai).
var DefaultOrigin = geo.Coordinate{Lat: 19.0760, Lon: 72.8777}

const (
	orchestratorConcurrency = 4
	topHotspots             = 4

	// Fallbacks for missing advisor fields.
	fallbackArea       = "Nearby Area"
	fallbackAction     = "Plan a focused 3-hour shift."
	fallbackWhy        = "Typical demand for this time and place."
	fallbackConfidence = "Medium"
)

// HistorySource is satisfied by transactions.Repository.
type HistorySource interface {
	History(ctx context.Context, userID string) ([]transactions.Record, error)
}

// Result is the full opportunity prediction.
type Result struct {
	BestTime        string         `json:"bestTime"`
	BestArea        string         `json:"bestArea"`
	ExpectedBoost   int            `json:"expectedBoost"`
	Weather         weather.Signal `json:"weather"`
	Traffic         traffic.Level  `json:"traffic"`
	HotspotSample   *Hotspot       `json:"hotspot_sample"`
	Hotspots        []Hotspot      `json:"hotspots"`
	FinalHourlyUsed float64        `json:"finalHourlyUsed"`
	SurgeScore      float64        `json:"surgeScore"`
	Multiplier      float64        `json:"multiplier"`
	Reasons         []string       `json:"reasons"`
	AIAdvice        string         `json:"aiAdvice"`
	Action          string         `json:"action"`
	Why             string         `json:"why"`
	Confidence      string         `json:"confidence"`
	RawAIText       string         `json:"raw_ai_text"`
	SuggestedWindow Window         `json:"suggestedWindow"`
	Origin          geo.Coordinate `json:"origin"`
	GeneratedAt     time.Time      `json:"generatedAt"`
}

// adviceContext is the blob handed to the advisor.
type adviceContext struct {
	Lat             float64        `json:"lat"`
	Lon             float64        `json:"lon"`
	Now             string         `json:"now"`
	Weather         weather.Signal `json:"weather"`
	TrafficAtUser   traffic.Level  `json:"traffic_at_user"`
	TopHotspot      *Hotspot       `json:"top_hotspot"`
	Hotspots        []Hotspot      `json:"hotspots"`
	DefaultHourly   float64        `json:"default_hourly"`
	UserHourly      *float64       `json:"user_hourly"`
	FinalHourly     float64        `json:"final_hourly"`
	ExpectedBoost   int            `json:"expected_boost"`
	SurgeScore      float64        `json:"surge_score"`
	Reasons         []string       `json:"reasons"`
	SuggestedWindow string         `json:"suggested_window"`
}

// Config holds the orchestrator's collaborators.
type Config struct {
	Weather WeatherSource
	Traffic TrafficSource
	Sampler *Sampler
	History HistorySource
	Advisor advisor.Advisor

	// DefaultOrigin overrides DefaultOrigin when non-zero.
	DefaultOrigin *geo.Coordinate

	// Location is the local time zone for hour and weekend. Defaults to time.Local.
	Location *time.Location

	// Now is the clock. Defaults to time.Now.
	Now func() time.Time

	// CallTimeout bounds the origin weather, traffic and history lookups.
	CallTimeout time.Duration

	Logger zerolog.Logger
}

// Orchestrator produces opportunity predictions.
type Orchestrator struct {
	weather       WeatherSource
	traffic       TrafficSource
	sampler       *Sampler
	history       HistorySource
	advisor       advisor.Advisor
	defaultOrigin geo.Coordinate
	location      *time.Location
	now           func() time.Time
	callTimeout   time.Duration
	logger        zerolog.Logger
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(cfg Config) *Orchestrator {
	origin := DefaultOrigin
	if cfg.DefaultOrigin != nil {
		origin = *cfg.DefaultOrigin
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	callTimeout := cfg.CallTimeout
	if callTimeout <= 0 {
		callTimeout = 3 * time.Second
	}

	return &Orchestrator{
		weather:       cfg.Weather,
		traffic:       cfg.Traffic,
		sampler:       cfg.Sampler,
		history:       cfg.History,
		advisor:       cfg.Advisor,
		defaultOrigin: origin,
		location:      loc,
		now:           now,
		callTimeout:   callTimeout,
		logger:        cfg.Logger,
	}
}

// Predict scouts opportunities for userID around origin, or around the default
// origin when origin is nil. Only caller input errors are returned; every
// signal or advisor failure degrades into a fully populated result.
func (o *Orchestrator) Predict(ctx context.Context, userID string, origin *geo.Coordinate) (*Result, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrMissingUserID
	}

	point := o.defaultOrigin
	if origin != nil {
		point = *origin
	}
	if err := point.Validate(); err != nil {
		return nil, err
	}

	now := o.now().In(o.location)
	hour := now.Hour()
	isWeekend := now.Weekday() == time.Saturday || now.Weekday() == time.Sunday

	var (
		wx       = weather.DefaultSignal()
		hotspots []Hotspot
		level    = traffic.LevelUnknown
		records  []transactions.Record
	)

	var g errgroup.Group
	g.SetLimit(orchestratorConcurrency)

	g.Go(func() error {
		if o.weather != nil {
			callCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
			defer cancel()
			wx = o.weather.Weather(callCtx, point)
		}
		return nil
	})
	g.Go(func() error {
		if o.sampler != nil {
			hotspots = o.sampler.Sample(ctx, point)
		}
		return nil
	})
	g.Go(func() error {
		if o.traffic != nil {
			callCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
			defer cancel()
			level = o.traffic.Level(callCtx, point)
		}
		return nil
	})
	g.Go(func() error {
		records = o.fetchHistory(ctx, userID)
		return nil
	})
	_ = g.Wait()

	var userRate *float64
	if rate, ok := HourlyRate(records); ok {
		userRate = &rate
	}
	finalHourly := FinalHourly(userRate)

	var top *Hotspot
	if len(hotspots) > 0 {
		top = &hotspots[0]
	}

	surge := EstimateSurge(wx, isWeekend, top, level)
	boost := ExpectedBoost(finalHourly, surge.Multiplier)
	window := SuggestWindow(hour)

	bestArea := fallbackArea
	if top != nil {
		bestArea = top.AreaName
	}

	sample := hotspots[:min(topHotspots, len(hotspots))]
	if sample == nil {
		sample = []Hotspot{}
	}

	blob := adviceContext{
		Lat:             point.Lat,
		Lon:             point.Lon,
		Now:             now.Format(time.RFC3339),
		Weather:         wx,
		TrafficAtUser:   level,
		TopHotspot:      top,
		Hotspots:        sample,
		DefaultHourly:   DefaultHourly,
		FinalHourly:     round(finalHourly, 2),
		ExpectedBoost:   boost,
		SurgeScore:      round(surge.Score, 3),
		Reasons:         surge.Reasons,
		SuggestedWindow: window.Label,
	}
	if userRate != nil {
		r := round(*userRate, 2)
		blob.UserHourly = &r
	}

	rawText := o.advise(ctx, blob)
	fields := advisor.ExtractJSON(rawText)

	result := &Result{
		BestTime:        stringOr(fields, "bestTime", window.Label),
		BestArea:        stringOr(fields, "bestArea", bestArea),
		ExpectedBoost:   boost,
		Weather:         wx,
		Traffic:         level,
		HotspotSample:   top,
		Hotspots:        sample,
		FinalHourlyUsed: round(finalHourly, 2),
		SurgeScore:      round(surge.Score, 3),
		Multiplier:      round(surge.Multiplier, 3),
		Reasons:         surge.Reasons,
		AIAdvice:        stringOr(fields, "advice", fmt.Sprintf("Work %s near %s.", window.Label, bestArea)),
		Action:          stringOr(fields, "action", fallbackAction),
		Why:             stringOr(fields, "why", fallbackWhyFor(surge.Reasons)),
		Confidence:      stringOr(fields, "confidence", fallbackConfidence),
		RawAIText:       rawText,
		SuggestedWindow: window,
		Origin:          point,
		GeneratedAt:     now,
	}

	o.logger.Info().
		Str("user_id", userID).
		Float64("lat", point.Lat).
		Float64("lon", point.Lon).
		Float64("surge_score", result.SurgeScore).
		Int("expected_boost", boost).
		Str("best_area", result.BestArea).
		Msg("opportunity predicted")

	return result, nil
}

func (o *Orchestrator) fetchHistory(ctx context.Context, userID string) []transactions.Record {
	if o.history == nil {
		return nil
	}

	callCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()

	records, err := o.history.History(callCtx, userID)
	if err != nil {
		o.logger.Warn().Err(err).Str("user_id", userID).Msg("transaction history unavailable, using baseline rate")
		return nil
	}
	return records
}

func (o *Orchestrator) advise(ctx context.Context, blob adviceContext) string {
	if o.advisor == nil {
		return ""
	}

	data, err := json.Marshal(blob)
	if err != nil {
		o.logger.Error().Err(err).Msg("failed to encode advisor context")
		return ""
	}

	text, err := o.advisor.Advise(ctx, string(data))
	if err != nil {
		event := o.logger.Warn()
		if errors.Is(err, signals.ErrNotConfigured) {
			event = o.logger.Debug()
		}
		event.Err(err).Msg("advisor unavailable, using fallbacks")
		return ""
	}
	return text
}

func stringOr(fields map[string]any, key, fallback string) string {
	if v, ok := advisor.String(fields, key); ok {
		return v
	}
	return fallback
}

func fallbackWhyFor(reasons []string) string {
	if len(reasons) == 0 {
		return fallbackWhy
	}
	return strings.Join(reasons, ", ")
}
