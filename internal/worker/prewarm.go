package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gigpilot/gigpilot/internal/geo"
	"github.com/gigpilot/gigpilot/internal/geocode"
	"github.com/gigpilot/gigpilot/internal/scout"
)

// HotspotSampler is satisfied by *scout.Sampler.
type HotspotSampler interface {
	Sample(ctx context.Context, origin geo.Coordinate) []scout.Hotspot
}

// PrewarmJob samples every zone centre so the area names of its hotspot ring
// land in the shared cache before API instances ask for them.
type PrewarmJob struct {
	config  PrewarmConfig
	sampler HotspotSampler
	logger  zerolog.Logger
	metrics *PrewarmMetrics
}

// PrewarmMetrics tracks pre-warm job statistics across runs.
type PrewarmMetrics struct {
	mu sync.RWMutex

	TotalRuns       int64
	CentresWarmed   int64
	AreasResolved   int64
	AreasUnresolved int64

	LastRunAt       time.Time
	LastRunDuration time.Duration
	TotalDuration   time.Duration
}

// PrewarmJobConfig holds configuration for creating a PrewarmJob.
type PrewarmJobConfig struct {
	Config  PrewarmConfig
	Sampler HotspotSampler
	Logger  zerolog.Logger
}

// NewPrewarmJob creates a new pre-warm job.
func NewPrewarmJob(cfg PrewarmJobConfig) *PrewarmJob {
	config := cfg.Config
	if len(config.Zones) == 0 {
		config.Zones = DefaultZones()
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 3
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	return &PrewarmJob{
		config:  config,
		sampler: cfg.Sampler,
		logger:  cfg.Logger,
		metrics: &PrewarmMetrics{},
	}
}

// PrewarmResult summarises one run.
type PrewarmResult struct {
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
	TotalCentres int

	// Sampled counts centres whose ring was sampled before cancellation.
	Sampled int

	// Resolved and Unresolved count ring points by whether the area name
	// came back as a real place or a placeholder.
	Resolved   int
	Unresolved int
}

type centreResult struct {
	resolved   int
	unresolved int
}

// Run samples all configured centres through a pool of Concurrency workers.
func (j *PrewarmJob) Run(ctx context.Context) *PrewarmResult {
	startTime := time.Now()
	centres := j.config.AllCentres()
	result := &PrewarmResult{
		StartTime:    startTime,
		TotalCentres: len(centres),
	}

	j.logger.Info().
		Int("total_centres", result.TotalCentres).
		Int("concurrency", j.config.Concurrency).
		Msg("starting area cache pre-warm")

	centresChan := make(chan geo.Coordinate, len(centres))
	resultsChan := make(chan centreResult, len(centres))

	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.worker(ctx, centresChan, resultsChan)
		}()
	}

	for _, c := range centres {
		centresChan <- c
	}
	close(centresChan)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	for cr := range resultsChan {
		result.Sampled++
		result.Resolved += cr.resolved
		result.Unresolved += cr.unresolved
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)
	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("sampled", result.Sampled).
		Int("resolved", result.Resolved).
		Int("unresolved", result.Unresolved).
		Msg("area cache pre-warm completed")

	return result
}

func (j *PrewarmJob) worker(ctx context.Context, centres <-chan geo.Coordinate, results chan<- centreResult) {
	for centre := range centres {
		if ctx.Err() != nil {
			return
		}
		results <- j.warmCentre(ctx, centre)
	}
}

func (j *PrewarmJob) warmCentre(ctx context.Context, centre geo.Coordinate) centreResult {
	var cr centreResult
	if j.sampler == nil {
		return cr
	}

	centreCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	for _, h := range j.sampler.Sample(centreCtx, centre) {
		if h.AreaName == geocode.UnknownArea || h.AreaName == geocode.NearbyArea || h.AreaName == "" {
			cr.unresolved++
			continue
		}
		cr.resolved++
	}

	j.logger.Debug().
		Str("centre", centre.String()).
		Int("resolved", cr.resolved).
		Int("unresolved", cr.unresolved).
		Msg("centre warmed")
	return cr
}

func (j *PrewarmJob) updateMetrics(result *PrewarmResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRuns++
	j.metrics.CentresWarmed += int64(result.Sampled)
	j.metrics.AreasResolved += int64(result.Resolved)
	j.metrics.AreasUnresolved += int64(result.Unresolved)
	j.metrics.LastRunAt = result.EndTime
	j.metrics.LastRunDuration = result.Duration
	j.metrics.TotalDuration += result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (j *PrewarmJob) GetMetrics() PrewarmMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return PrewarmMetrics{
		TotalRuns:       j.metrics.TotalRuns,
		CentresWarmed:   j.metrics.CentresWarmed,
		AreasResolved:   j.metrics.AreasResolved,
		AreasUnresolved: j.metrics.AreasUnresolved,
		LastRunAt:       j.metrics.LastRunAt,
		LastRunDuration: j.metrics.LastRunDuration,
		TotalDuration:   j.metrics.TotalDuration,
	}
}

// MetricsSnapshot returns the current metrics as a log-friendly map.
func (j *PrewarmJob) MetricsSnapshot() map[string]any {
	m := j.GetMetrics()
	return map[string]any{
		"total_runs":        m.TotalRuns,
		"centres_warmed":    m.CentresWarmed,
		"areas_resolved":    m.AreasResolved,
		"areas_unresolved":  m.AreasUnresolved,
		"last_run_at":       m.LastRunAt,
		"last_run_duration": m.LastRunDuration.String(),
		"total_duration":    m.TotalDuration.String(),
	}
}
