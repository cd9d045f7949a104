package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"owidreport/internal/config"
)

func TestInitializeOTel_Prometheus(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(config.LoggingConfig{Level: "info"}, &buf)
	require.NoError(t, err)

	providers, err := InitializeOTel(config.TelemetryConfig{
		TraceExporter:  "none",
		MetricExporter: "prometheus",
		SampleRatio:    1,
		Environment:    "test",
	}, logger)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	assert.Contains(t, buf.String(), "Metrics initialized")
	require.NotNil(t, providers.PrometheusHTTP)
	require.NotNil(t, providers.MeterProvider)
	assert.Nil(t, providers.TracerProvider)

	metrics, err := CreatePipelineMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordRows(ctx, 10, 4)
	metrics.RecordInterpolated(ctx, map[string]int{"total_cases": 2})
	metrics.RecordChart(ctx, "total_cases", nil)
	metrics.RecordStage(ctx, "load", 150*time.Millisecond, nil)
	metrics.RecordRun(ctx, errors.New("boom"))

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	text := string(body)
	assert.Contains(t, text, "owid_rows_loaded")
	assert.Contains(t, text, "owid_values_interpolated")
	assert.Contains(t, text, "owid_stage_duration")
	assert.Contains(t, text, `status="error"`)
}

func TestInitializeOTel_TwiceDoesNotCollide(t *testing.T) {
	cfg := config.TelemetryConfig{TraceExporter: "none", MetricExporter: "prometheus", SampleRatio: 1}
	for i := 0; i < 2; i++ {
		p, err := InitializeOTel(cfg, nil)
		require.NoError(t, err)
		_, err = CreatePipelineMetrics(p.Meter)
		require.NoError(t, err)
		require.NoError(t, p.Shutdown(context.Background()))
	}
}

func TestInitializeOTel_Disabled(t *testing.T) {
	providers, err := InitializeOTel(config.TelemetryConfig{TraceExporter: "none", MetricExporter: "none"}, nil)
	require.NoError(t, err)

	assert.Nil(t, providers.PrometheusHTTP)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.Meter)

	metrics, err := CreatePipelineMetrics(providers.Meter)
	require.NoError(t, err)
	metrics.RecordRows(context.Background(), 1, 1)

	ctx, span := providers.Tracer.Start(context.Background(), "noop")
	RecordError(ctx, errors.New("ignored"))
	AddSpanEvent(ctx, "event", map[string]interface{}{"k": "v"})
	span.End()

	require.NoError(t, providers.Shutdown(context.Background()))
}

func TestInitializeOTel_UnsupportedExporter(t *testing.T) {
	_, err := InitializeOTel(config.TelemetryConfig{TraceExporter: "otlp", MetricExporter: "none"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported trace exporter")

	_, err = InitializeOTel(config.TelemetryConfig{TraceExporter: "none", MetricExporter: "statsd"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported metric exporter")
}

func TestPipelineMetrics_NilSafe(t *testing.T) {
	var m *PipelineMetrics
	ctx := context.Background()
	assert.NotPanics(t, func() {
		m.RecordRows(ctx, 1, 1)
		m.RecordStage(ctx, "load", time.Second, nil)
		m.RecordChart(ctx, "x", nil)
		m.RecordRun(ctx, nil)
		m.RecordInterpolated(ctx, map[string]int{"a": 1})
		m.RecordHTTPRequest(ctx, "GET", "/", 200, time.Millisecond)
	})
}

func TestToAttributes(t *testing.T) {
	attrs := toAttributes(map[string]interface{}{
		"s": "x", "i": 1, "f": 1.5, "b": true, "list": []string{"a"}, "other": time.Second,
	})
	assert.Len(t, attrs, 6)
}
