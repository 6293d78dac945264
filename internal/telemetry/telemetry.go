// Package telemetry wires OpenTelemetry tracing and the scouting engine's
// provider metrics.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

const (
	// DefaultOTLPEndpoint is the collector address used when none is configured.
	DefaultOTLPEndpoint = "localhost:4317"

	servicePrefix  = "gigpilot"
	exportInterval = 15 * time.Second
)

// Config describes one gigpilot process.
type Config struct {
	// Component is the binary role, e.g. "api" or "worker".
	Component      string
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTLPEndpoint   string
	Enabled        bool
}

func (c Config) withDefaults() Config {
	if c.ServiceName == "" {
		c.ServiceName = servicePrefix
		if c.Component != "" {
			c.ServiceName += "-" + c.Component
		}
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = "dev"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.OTLPEndpoint == "" {
		c.OTLPEndpoint = DefaultOTLPEndpoint
	}
	return c
}

// ResourceAttributes returns the attributes stamped on every exported span
// and metric, after defaults are applied.
func (c Config) ResourceAttributes() []attribute.KeyValue {
	c = c.withDefaults()
	attrs := []attribute.KeyValue{
		semconv.ServiceName(c.ServiceName),
		semconv.ServiceVersion(c.ServiceVersion),
		semconv.DeploymentEnvironment(c.Environment),
		semconv.ServiceNamespace(servicePrefix),
	}
	if c.Component != "" {
		attrs = append(attrs, attribute.String("gigpilot.component", c.Component))
	}
	return attrs
}

// Provider owns the SDK providers and the instruments built on them.
type Provider struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	// Metrics is never nil; with telemetry disabled it records to no-op instruments.
	Metrics *ProviderMetrics
}

// Shutdown flushes and stops the SDK providers.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			return err
		}
	}
	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Init sets up tracing and metrics for cfg and installs them globally.
// The returned Provider must be shut down when the process exits.
func Init(ctx context.Context, cfg Config) (*Provider, error) {
	cfg = cfg.withDefaults()

	if !cfg.Enabled {
		metrics, err := NewProviderMetrics(otel.Meter(meterName))
		if err != nil {
			return nil, err
		}
		return &Provider{Metrics: metrics}, nil
	}

	res, err := resource.New(ctx, resource.WithAttributes(cfg.ResourceAttributes()...))
	if err != nil {
		return nil, err
	}

	tracerProvider, err := initTracerProvider(ctx, cfg, res)
	if err != nil {
		return nil, err
	}

	meterProvider, err := initMeterProvider(ctx, cfg, res)
	if err != nil {
		_ = tracerProvider.Shutdown(ctx) //nolint:errcheck // best effort cleanup
		return nil, err
	}

	metrics, err := NewProviderMetrics(meterProvider.Meter(meterName,
		metric.WithInstrumentationVersion(cfg.ServiceVersion),
	))
	if err != nil {
		_ = tracerProvider.Shutdown(ctx) //nolint:errcheck // best effort cleanup
		_ = meterProvider.Shutdown(ctx)  //nolint:errcheck // best effort cleanup
		return nil, err
	}

	// The HTTP middleware reads tracers and meters from the globals.
	otel.SetTracerProvider(tracerProvider)
	otel.SetMeterProvider(meterProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &Provider{
		TracerProvider: tracerProvider,
		MeterProvider:  meterProvider,
		Metrics:        metrics,
	}, nil
}

func initTracerProvider(ctx context.Context, cfg Config, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	// Scouting requests are low volume; keep every trace.
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	), nil
}

func initMeterProvider(ctx context.Context, cfg Config, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	exporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(exportInterval),
		)),
		sdkmetric.WithResource(res),
	), nil
}
