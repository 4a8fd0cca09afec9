package operations

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"coastereda/internal/infrastructure"
)

const TracerName = "coastereda.operation"

// StageTracer provides spans and metrics for operation steps
type StageTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// NewStageTracer creates a stage tracer. A nil tracer disables spans and nil
// metrics disables recording.
func NewStageTracer(tracer trace.Tracer, metrics *infrastructure.PipelineMetrics) *StageTracer {
	if tracer == nil {
		tracer = tracenoop.NewTracerProvider().Tracer(TracerName)
	}
	return &StageTracer{tracer: tracer, metrics: metrics}
}

// Metrics returns the pipeline instruments, possibly nil
func (st *StageTracer) Metrics() *infrastructure.PipelineMetrics {
	return st.metrics
}

// TraceOperation creates the root span of a run
func (st *StageTracer) TraceOperation(ctx context.Context, operationID string) (context.Context, trace.Span) {
	return st.tracer.Start(ctx, "operation.execute",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("operation.id", operationID)),
	)
}

// TraceStage creates a span for one step
func (st *StageTracer) TraceStage(ctx context.Context, operationID, stepID string) (context.Context, trace.Span) {
	return st.tracer.Start(ctx, fmt.Sprintf("operation.step.%s", stepID),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", operationID),
			attribute.String("step.id", stepID),
		),
	)
}

// RecordStageCompletion closes out a step span and records its metrics
func (st *StageTracer) RecordStageCompletion(ctx context.Context, span trace.Span, stepID string, rows int, duration time.Duration, err error) {
	span.SetAttributes(
		attribute.Int("step.rows", rows),
		attribute.Float64("step.duration_seconds", duration.Seconds()),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	st.metrics.RecordStage(ctx, stepID, rows, duration, err)
}
