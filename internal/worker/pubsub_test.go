package worker_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigpilot/gigpilot/internal/geo"
	"github.com/gigpilot/gigpilot/internal/geocode"
	"github.com/gigpilot/gigpilot/internal/provider/resilience"
	"github.com/gigpilot/gigpilot/internal/worker"
)

func oneCentreJob(sampler worker.HotspotSampler) *worker.PrewarmJob {
	return worker.NewPrewarmJob(worker.PrewarmJobConfig{
		Config: worker.PrewarmConfig{
			Zones: []worker.Zone{{Name: "Pune", Centres: []geo.Coordinate{{Lat: 18.5362, Lon: 73.8940}}}},
		},
		Sampler: sampler,
		Logger:  zerolog.Nop(),
	})
}

func TestDispatcher_Prewarm(t *testing.T) {
	sampler := &mockSampler{areas: []string{"Koregaon Park"}}
	d := worker.NewDispatcher(worker.DispatcherConfig{Prewarm: oneCentreJob(sampler), Logger: zerolog.Nop()})

	err := d.Dispatch(context.Background(), []byte(`{"job_type":"prewarm"}`))

	require.NoError(t, err)
	assert.Equal(t, int32(1), sampler.calls.Load())
}

func TestDispatcher_PrewarmResolvingNothingFails(t *testing.T) {
	sampler := &mockSampler{areas: []string{geocode.UnknownArea, geocode.UnknownArea}}
	d := worker.NewDispatcher(worker.DispatcherConfig{Prewarm: oneCentreJob(sampler), Logger: zerolog.Nop()})

	err := d.Dispatch(context.Background(), []byte(`{"job_type":"prewarm"}`))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolved no areas")
}

func TestDispatcher_PrewarmNotConfigured(t *testing.T) {
	d := worker.NewDispatcher(worker.DispatcherConfig{Logger: zerolog.Nop()})

	assert.Error(t, d.Dispatch(context.Background(), []byte(`{"job_type":"prewarm"}`)))
}

func TestDispatcher_HealthCheckLogsProviders(t *testing.T) {
	var buf bytes.Buffer
	registry := resilience.NewRegistry()
	registry.Register("tomtom", resilience.NewClient(resilience.DefaultClientConfig("tomtom")))
	registry.RecordFailure("tomtom", errors.New("unexpected status code: 429"))

	d := worker.NewDispatcher(worker.DispatcherConfig{Registry: registry, Logger: zerolog.New(&buf)})

	require.NoError(t, d.Dispatch(context.Background(), []byte(`{"job_type":"health_check"}`)))
	assert.Contains(t, buf.String(), `"provider":"tomtom"`)
	assert.Contains(t, buf.String(), `"circuit_state":"closed"`)
	assert.Contains(t, buf.String(), "429")
}

func TestDispatcher_UnknownJobTypeIsDropped(t *testing.T) {
	sampler := &mockSampler{}
	d := worker.NewDispatcher(worker.DispatcherConfig{Prewarm: oneCentreJob(sampler), Logger: zerolog.Nop()})

	assert.NoError(t, d.Dispatch(context.Background(), []byte(`{"job_type":"provider_refresh"}`)))
	assert.NoError(t, d.Dispatch(context.Background(), []byte(`{}`)))
	assert.Zero(t, sampler.calls.Load())
}

func TestDispatcher_MalformedMessage(t *testing.T) {
	d := worker.NewDispatcher(worker.DispatcherConfig{Logger: zerolog.Nop()})

	err := d.Dispatch(context.Background(), []byte(`not json`))

	assert.ErrorIs(t, err, worker.ErrMalformedMessage)
}
