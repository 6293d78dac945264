package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/gigpilot/gigpilot"

// ProviderMetrics records external signal lookups and area-name cache traffic.
// It satisfies signals.Recorder and geocode.CacheRecorder.
type ProviderMetrics struct {
	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
	defaultTotal    metric.Int64Counter
	cacheHits       metric.Int64Counter
	cacheMisses     metric.Int64Counter
}

// NewProviderMetrics creates the provider instruments on meter. Processes get
// theirs from Init; tests may pass any meter.
func NewProviderMetrics(meter metric.Meter) (*ProviderMetrics, error) {
	requestDuration, err := meter.Float64Histogram(
		"provider.request.duration",
		metric.WithDescription("Duration of provider requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	requestTotal, err := meter.Int64Counter(
		"provider.request.total",
		metric.WithDescription("Total number of provider requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	defaultTotal, err := meter.Int64Counter(
		"provider.default.total",
		metric.WithDescription("Lookups answered with the documented default"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	cacheHits, err := meter.Int64Counter(
		"cache.hit",
		metric.WithDescription("Number of cache hits"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, err
	}

	cacheMisses, err := meter.Int64Counter(
		"cache.miss",
		metric.WithDescription("Number of cache misses"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return nil, err
	}

	return &ProviderMetrics{
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		defaultTotal:    defaultTotal,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
	}, nil
}

// RecordRequest records one provider lookup.
func (m *ProviderMetrics) RecordRequest(provider, operation string, duration time.Duration, err error) {
	outcome := "live"
	if err != nil {
		outcome = "default"
	}
	attrs := metric.WithAttributes(
		attribute.String("provider.name", provider),
		attribute.String("provider.operation", operation),
		attribute.String("outcome", outcome),
	)

	// Metrics outlive the request context.
	ctx := context.Background()
	m.requestDuration.Record(ctx, duration.Seconds(), attrs)
	m.requestTotal.Add(ctx, 1, attrs)
	if err != nil {
		m.defaultTotal.Add(ctx, 1, attrs)
	}
}

// RecordCacheHit records a cache hit.
func (m *ProviderMetrics) RecordCacheHit(cache string) {
	m.cacheHits.Add(context.Background(), 1, metric.WithAttributes(attribute.String("cache.name", cache)))
}

// RecordCacheMiss records a cache miss.
func (m *ProviderMetrics) RecordCacheMiss(cache string) {
	m.cacheMisses.Add(context.Background(), 1, metric.WithAttributes(attribute.String("cache.name", cache)))
}
