package operations

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"owidreport/internal/infrastructure"
)

// OperationTracer instruments pipeline runs and their steps
type OperationTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// NewOperationTracer creates a tracer. Nil providers give a no-op tracer;
// nil metrics disable metric recording.
func NewOperationTracer(providers *infrastructure.OTelProviders, metrics *infrastructure.PipelineMetrics) *OperationTracer {
	var tracer trace.Tracer = noop.NewTracerProvider().Tracer(infrastructure.ServiceName)
	if providers != nil && providers.Tracer != nil {
		tracer = providers.Tracer
	}
	return &OperationTracer{tracer: tracer, metrics: metrics}
}

// TraceRun starts the span covering a whole run
func (ot *OperationTracer) TraceRun(ctx context.Context, source string, entities []string) (context.Context, trace.Span) {
	return ot.tracer.Start(ctx, "pipeline.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("pipeline.source", source),
			attribute.StringSlice("pipeline.entities", entities),
		),
	)
}

// TraceStep starts the span of one step
func (ot *OperationTracer) TraceStep(ctx context.Context, step string) (context.Context, trace.Span) {
	return ot.tracer.Start(ctx, "pipeline.step."+step,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("step.id", step)),
	)
}

// RecordStepCompletion closes out a step span and records its duration
func (ot *OperationTracer) RecordStepCompletion(ctx context.Context, span trace.Span, step string, duration time.Duration, err error) {
	ot.metrics.RecordStage(ctx, step, duration, err)

	status := "success"
	if err != nil {
		status = "failure"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.SetAttributes(
		attribute.String("step.status", status),
		attribute.Float64("step.duration_seconds", duration.Seconds()),
	)
}

// RecordRunCompletion closes out the run span
func (ot *OperationTracer) RecordRunCompletion(ctx context.Context, span trace.Span, err error) {
	ot.metrics.RecordRun(ctx, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}

// Metrics returns the metric set, possibly nil
func (ot *OperationTracer) Metrics() *infrastructure.PipelineMetrics {
	return ot.metrics
}
