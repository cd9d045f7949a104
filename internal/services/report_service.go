package services

import (
	"context"
	"log/slog"
	"sync"

	"owidreport/internal/charts"
	"owidreport/internal/dataprocessing"
	"owidreport/internal/operations"
	"owidreport/pkg/contracts/domain"
)

// ReportService holds the most recent report for the HTTP layer
type ReportService struct {
	mu     sync.RWMutex
	report *operations.Report
	logger *slog.Logger
}

// NewReportService creates an empty report store
func NewReportService(logger *slog.Logger) *operations.ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{logger: logger.With(slog.String("service", "report"))}
}

// Publish replaces the current report
func (s *operations.ReportService) Publish(ctx context.Context, r *operations.Report) {
	s.mu.Lock()
	s.report = r
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "report published",
		slog.Int("entities", len(r.Entities)),
		slog.Int("rows_kept", r.RowsKept),
		slog.Time("generated_at", r.GeneratedAt))
}

// Current returns the published report or ErrReportNotReady
func (s *operations.ReportService) Current() (*operations.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.report == nil {
		return nil, ErrReportNotReady
	}
	return s.report, nil
}

// Ready reports whether a report has been published
func (s *operations.ReportService) Ready() bool {
	_, err := s.Current()
	return err == nil
}

// Summaries returns the per-entity summaries of the current report
func (s *operations.ReportService) Summaries() ([]domain.EntitySummary, error) {
	r, err := s.Current()
	if err != nil {
		return nil, err
	}
	return r.Summaries, nil
}

// Snapshot returns the latest snapshot. When countriesOnly is set OWID
// aggregates are left out.
func (s *operations.ReportService) Snapshot(countriesOnly bool) ([]domain.Snapshot, error) {
	r, err := s.Current()
	if err != nil {
		return nil, err
	}
	if countriesOnly {
		return dataprocessing.Countries(r.Snapshot), nil
	}
	return r.Snapshot, nil
}

// Missing returns the missing-value report of the unfiltered dataset
func (s *operations.ReportService) Missing() (domain.MissingReport, error) {
	r, err := s.Current()
	if err != nil {
		return domain.MissingReport{}, err
	}
	return r.Missing, nil
}

// Charts returns the chart manifest
func (s *operations.ReportService) Charts() (*charts.Manifest, error) {
	r, err := s.Current()
	if err != nil {
		return nil, err
	}
	if r.Manifest == nil {
		return &charts.Manifest{}, nil
	}
	return r.Manifest, nil
}

// Chart looks up a rendered chart by file name
func (s *operations.ReportService) Chart(file string) (charts.ChartFile, error) {
	m, err := s.Charts()
	if err != nil {
		return charts.ChartFile{}, err
	}
	c, ok := m.Find(file)
	if !ok {
		return charts.ChartFile{}, ErrChartNotFound
	}
	return c, nil
}
