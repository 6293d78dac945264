// Package handler provides HTTP handlers for the gigpilot API.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gigpilot/gigpilot/internal/api/models"
	"github.com/gigpilot/gigpilot/internal/api/response"
	"github.com/gigpilot/gigpilot/internal/provider/resilience"
)

// readyTimeout bounds each readiness probe.
const readyTimeout = 2 * time.Second

// Check probes one subsystem. A nil error means healthy.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

// OpsConfig holds the dependencies of the ops endpoints.
type OpsConfig struct {
	Version   string
	BuildTime string

	// Registry reports provider circuit state. Optional.
	Registry *resilience.Registry

	// Checks are subsystems probed by ready and status. Optional.
	Checks []Check
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	registry  *resilience.Registry
	checks    []Check
	now       func() time.Time
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsConfig) *OpsHandler {
	return &OpsHandler{
		version:   cfg.Version,
		buildTime: cfg.BuildTime,
		registry:  cfg.Registry,
		checks:    cfg.Checks,
		now:       time.Now,
	}
}

// HealthCheck handles GET /v1/ops/health. It only proves the process serves HTTP.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(h.now()),
		Details: map[string]any{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	})
}

// ReadinessCheck handles GET /v1/ops/ready. Any failing subsystem answers 503.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	subsystems := h.probe(r.Context())

	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(h.now()),
	}
	failed := map[string]any{}
	for _, s := range subsystems {
		if s.Status != models.HealthStatusOK {
			failed[s.Name] = *s.Detail
		}
	}
	if len(failed) > 0 {
		health.Status = models.HealthStatusFail
		health.Details = failed
		response.JSON(w, r, http.StatusServiceUnavailable, health)
		return
	}
	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status. Open circuits and failing
// subsystems degrade the status but never fail it, because every signal has
// a default and predictions keep being served.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	status := models.SystemStatus{
		Status:     models.HealthStatusOK,
		Time:       models.Timestamp(h.now()),
		Subsystems: h.probe(r.Context()),
		Providers:  []models.ProviderStatus{},
	}

	for _, s := range status.Subsystems {
		if s.Status != models.HealthStatusOK {
			status.Status = models.HealthStatusDegraded
		}
	}

	if h.registry != nil {
		for _, ph := range h.registry.GetAllHealth() {
			ps := providerStatus(ph)
			if ps.Status != models.HealthStatusOK {
				status.Status = models.HealthStatusDegraded
			}
			if ph.IsUnhealthy() {
				status.ActiveDegradationFlags = append(status.ActiveDegradationFlags, ph.Name+"_defaults")
			}
			status.Providers = append(status.Providers, ps)
		}
	}

	response.JSON(w, r, http.StatusOK, status)
}

func (h *OpsHandler) probe(ctx context.Context) []models.SubsystemStatus {
	out := make([]models.SubsystemStatus, 0, len(h.checks))
	for _, c := range h.checks {
		s := models.SubsystemStatus{Name: c.Name, Status: models.HealthStatusOK}

		probeCtx, cancel := context.WithTimeout(ctx, readyTimeout)
		err := c.Probe(probeCtx)
		cancel()

		if err != nil {
			detail := err.Error()
			s.Status = models.HealthStatusFail
			s.Detail = &detail
		}
		out = append(out, s)
	}
	return out
}

func providerStatus(ph *resilience.ProviderHealth) models.ProviderStatus {
	ps := models.ProviderStatus{
		Provider:      ph.Name,
		Status:        models.HealthStatusOK,
		CircuitState:  ph.CircuitState.String(),
		LastSuccessAt: models.TimestampPtr(ph.LastSuccessAt),
		LastFailureAt: models.TimestampPtr(ph.LastFailureAt),
	}
	switch {
	case ph.IsUnhealthy():
		ps.Status = models.HealthStatusFail
	case ph.IsDegraded():
		ps.Status = models.HealthStatusDegraded
	}
	if ph.LastError != "" {
		msg := ph.LastError
		ps.Message = &msg
	}
	return ps
}
