package services

import (
	"context"
	"runtime"
	"time"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	pctx      *PipelineContext
	startTime time.Time
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual component health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a new health service
func NewHealthService(version string, pctx *PipelineContext) *HealthService {
	return &HealthService{
		version:   version,
		pctx:      pctx,
		startTime: time.Now(),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := hs.ReadinessCheck(ctx)
	if status.Status == "ready" {
		status.Status = "ok"
	} else {
		status.Status = "degraded"
	}
	return status
}

// ReadinessCheck reports whether a dataset and a model are loaded
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]ServiceHealth{
			"dataset": hs.checkDataset(),
			"model":   hs.checkModel(),
		},
	}

	for _, sh := range status.Services {
		if sh.Status != "ready" {
			status.Status = "not_ready"
			break
		}
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

func (hs *HealthService) checkDataset() ServiceHealth {
	ds := hs.pctx.Dataset()
	if ds == nil || ds.Lagged == nil {
		return ServiceHealth{Status: "not_ready", Message: "dataset not built"}
	}
	return ServiceHealth{Status: "ready"}
}

func (hs *HealthService) checkModel() ServiceHealth {
	b, err := hs.pctx.Artifact()
	if err != nil {
		return ServiceHealth{Status: "not_ready", Message: "no model artifact loaded"}
	}
	return ServiceHealth{Status: "ready", Message: b.Metadata.ID}
}
