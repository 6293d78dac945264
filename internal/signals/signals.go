// Package signals holds the outcome bookkeeping shared by every external
// signal lookup. Callers never see provider errors; they see a value that is
// either live or a documented default, and the outcome is logged and counted here.
package signals

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/gigpilot/gigpilot/internal/geo"
)

// ErrNotConfigured is returned by providers whose credential is missing.
var ErrNotConfigured = errors.New("provider not configured")

// Outcome tags how a signal value was produced.
type Outcome string

const (
	// OutcomeLive means the provider answered and the value was derived from it.
	OutcomeLive Outcome = "live"
	// OutcomeDefault means the documented default was substituted.
	OutcomeDefault Outcome = "default"
)

// Recorder receives per-call provider metrics.
type Recorder interface {
	RecordRequest(provider, operation string, duration time.Duration, err error)
}

// NopRecorder discards metrics.
type NopRecorder struct{}

// RecordRequest implements Recorder.
func (NopRecorder) RecordRequest(string, string, time.Duration, error) {}

// Observation describes one completed lookup.
type Observation struct {
	Provider  string
	Operation string
	Point     geo.Coordinate
	Started   time.Time
	Err       error
}

// Observe logs and records the lookup and returns its outcome.
func Observe(logger zerolog.Logger, rec Recorder, obs Observation) Outcome {
	duration := time.Since(obs.Started)
	if rec != nil {
		rec.RecordRequest(obs.Provider, obs.Operation, duration, obs.Err)
	}

	if obs.Err == nil {
		logger.Debug().
			Str("provider", obs.Provider).
			Str("operation", obs.Operation).
			Float64("lat", obs.Point.Lat).
			Float64("lon", obs.Point.Lon).
			Dur("duration", duration).
			Str("outcome", string(OutcomeLive)).
			Msg("signal fetched")
		return OutcomeLive
	}

	event := logger.Warn()
	if errors.Is(obs.Err, ErrNotConfigured) {
		event = logger.Debug()
	}
	event.Err(obs.Err).
		Str("provider", obs.Provider).
		Str("operation", obs.Operation).
		Float64("lat", obs.Point.Lat).
		Float64("lon", obs.Point.Lon).
		Dur("duration", duration).
		Str("outcome", string(OutcomeDefault)).
		Msg("signal unavailable, using default")
	return OutcomeDefault
}
