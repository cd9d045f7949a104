package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"owidreport/internal/charts"
	"owidreport/internal/operations"
	"owidreport/pkg/contracts/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func sampleReport() *operations.Report {
	return &operations.Report{
		GeneratedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Entities:    []string{"Kenya", "India"},
		RowsKept:    4,
		Snapshot: []domain.Snapshot{
			{Location: "Africa", ISOCode: "OWID_AFR"},
			{Location: "Kenya", ISOCode: "KEN"},
		},
		Summaries: []domain.EntitySummary{{Location: "India"}, {Location: "Kenya"}},
		Missing:   domain.MissingReport{Rows: 6},
		Manifest: &charts.Manifest{Charts: []charts.ChartFile{
			{Name: "total_cases", File: "total_cases.png", Format: "png"},
		}},
	}
}

func TestReportServiceNotReady(t *testing.T) {
	s := NewReportService(testLogger())
	assert.False(t, s.Ready())

	_, err := s.Current()
	assert.ErrorIs(t, err, ErrReportNotReady)
	_, err = s.Summaries()
	assert.ErrorIs(t, err, ErrReportNotReady)
	_, err = s.Snapshot(false)
	assert.ErrorIs(t, err, ErrReportNotReady)
	_, err = s.Missing()
	assert.ErrorIs(t, err, ErrReportNotReady)
	_, err = s.Charts()
	assert.ErrorIs(t, err, ErrReportNotReady)
	_, err = s.Chart("total_cases.png")
	assert.ErrorIs(t, err, ErrReportNotReady)
}

func TestReportServicePublished(t *testing.T) {
	s := NewReportService(testLogger())
	s.Publish(context.Background(), sampleReport())
	require.True(t, s.Ready())

	sums, err := s.Summaries()
	require.NoError(t, err)
	assert.Len(t, sums, 2)

	all, err := s.Snapshot(false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	countries, err := s.Snapshot(true)
	require.NoError(t, err)
	require.Len(t, countries, 1)
	assert.Equal(t, "Kenya", countries[0].Location)

	missing, err := s.Missing()
	require.NoError(t, err)
	assert.Equal(t, 6, missing.Rows)

	c, err := s.Chart("total_cases.png")
	require.NoError(t, err)
	assert.Equal(t, "total_cases", c.Name)

	_, err = s.Chart("nope.png")
	assert.ErrorIs(t, err, ErrChartNotFound)
}

func TestReportServiceNilManifest(t *testing.T) {
	s := NewReportService(testLogger())
	r := sampleReport()
	r.Manifest = nil
	s.Publish(context.Background(), r)

	m, err := s.Charts()
	require.NoError(t, err)
	assert.Empty(t, m.Charts)
}

func TestHealthService(t *testing.T) {
	reports := NewReportService(testLogger())
	hs := NewHealthService("1.2.3", reports, testLogger())

	status := hs.HealthCheck(context.Background())
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "1.2.3", status.Version)
	assert.False(t, status.Report.Ready)
	assert.Equal(t, "not_ready", hs.ReadinessCheck(context.Background()).Status)

	reports.Publish(context.Background(), sampleReport())
	ready := hs.ReadinessCheck(context.Background())
	assert.Equal(t, "ready", ready.Status)
	assert.Equal(t, 2, ready.Report.Entities)
	assert.Equal(t, 1, ready.Report.Charts)
}
