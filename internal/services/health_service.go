package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"
)

// HealthService answers liveness and readiness probes
type HealthService struct {
	version   string
	reports   *ReportService
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Report    *ReportHealth          `json:"report,omitempty"`
}

// ReportHealth describes the published report
type ReportHealth struct {
	Ready       bool      `json:"ready"`
	GeneratedAt time.Time `json:"generated_at,omitempty"`
	Entities    int       `json:"entities,omitempty"`
	Charts      int       `json:"charts,omitempty"`
}

// NewHealthService creates a new health service
func NewHealthService(version string, reports *ReportService, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		reports:   reports,
		startTime: time.Now(),
		logger:    logger.With(slog.String("service", "health")),
	}
}

// HealthCheck returns liveness plus the state of the current report
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
		Report: hs.reportHealth(),
	}

	hs.logger.DebugContext(ctx, "health check",
		slog.String("status", status.Status),
		slog.Bool("report_ready", status.Report.Ready))
	return status
}

// ReadinessCheck is "ready" once a report has been published
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	rh := hs.reportHealth()
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Report:    rh,
	}
	if !rh.Ready {
		status.Status = "not_ready"
	}
	return status
}

func (hs *HealthService) reportHealth() *ReportHealth {
	if hs.reports == nil {
		return &ReportHealth{}
	}
	r, err := hs.reports.Current()
	if err != nil {
		return &ReportHealth{}
	}
	rh := &ReportHealth{
		Ready:       true,
		GeneratedAt: r.GeneratedAt,
		Entities:    len(r.Entities),
	}
	if r.Manifest != nil {
		rh.Charts = len(r.Manifest.Charts)
	}
	return rh
}
