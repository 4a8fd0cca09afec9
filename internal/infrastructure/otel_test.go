package infrastructure

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coastereda/internal/shared/testutil"
)

func TestInitializeOTel_Disabled(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)

	providers, err := InitializeOTel(nil, logger)
	require.NoError(t, err)

	assert.Nil(t, providers.TracerProvider)
	assert.Nil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Tracer, "disabled tracing still yields a usable tracer")
	assert.NotNil(t, providers.Meter)

	metrics, err := CreatePipelineMetrics(providers.Meter)
	require.NoError(t, err)
	metrics.RecordStage(context.Background(), "load", 10, time.Millisecond, nil)

	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestInitializeOTel_UnsupportedExporter(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)

	_, err := InitializeOTel(&OTelConfig{ServiceName: "x", TraceExporter: "otlp"}, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported trace exporter")
}

func TestPipelineMetrics_TextfileExport(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	metricsFile := filepath.Join(t.TempDir(), "metrics.prom")

	providers, err := InitializeOTel(&OTelConfig{
		ServiceName:    "coastereda-test",
		ServiceVersion: "test",
		TraceExporter:  "none",
		EnableMetrics:  true,
		MetricsFile:    metricsFile,
	}, logger)
	require.NoError(t, err)

	metrics, err := CreatePipelineMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordStage(ctx, "load", 5, 20*time.Millisecond, nil)
	metrics.RecordStage(ctx, "impute", 0, time.Millisecond, errors.New("boom"))
	metrics.RecordImputed(ctx, "Speed MPH", 1)
	metrics.RecordDuplicatesRemoved(ctx, 1)

	require.NoError(t, providers.Shutdown(ctx))

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "pipeline_rows_total")
	assert.Contains(t, text, `stage="load"`)
	assert.Contains(t, text, "pipeline_stage_duration_seconds")
	assert.Contains(t, text, "pipeline_errors_total")
	assert.Contains(t, text, `column="Speed MPH"`)
	assert.Contains(t, text, "pipeline_duplicates_removed_total")
}

func TestTraceFileExport(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	traceFile := filepath.Join(t.TempDir(), "trace.json")

	providers, err := InitializeOTel(&OTelConfig{
		ServiceName:    "coastereda-test",
		ServiceVersion: "test",
		TraceExporter:  "stdout",
		TraceFile:      traceFile,
	}, logger)
	require.NoError(t, err)
	require.NotNil(t, providers.TracerProvider)

	ctx, span := providers.Tracer.Start(context.Background(), "pipeline.stage.load")
	assert.NotEmpty(t, TraceIDFromContext(ctx))
	RecordError(ctx, assert.AnError)
	span.End()

	require.NoError(t, providers.Shutdown(context.Background()))

	data, err := os.ReadFile(traceFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "pipeline.stage.load")
}

func TestPipelineMetrics_NilReceiver(t *testing.T) {
	var metrics *PipelineMetrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		metrics.RecordStage(ctx, "load", 1, time.Second, nil)
		metrics.RecordImputed(ctx, "Latitude", 2)
		metrics.RecordDuplicatesRemoved(ctx, 3)
	})
}

func TestTraceIDFromContext_NoSpan(t *testing.T) {
	assert.Empty(t, TraceIDFromContext(context.Background()))
}
