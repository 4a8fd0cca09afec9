package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coastereda/internal/errors"
	"coastereda/internal/operations"
	"coastereda/internal/shared/testutil"
	"coastereda/pkg/contracts/domain"
)

type recordingSink struct {
	name  string
	err   error
	calls int
	rows  int
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Write(ctx context.Context, result *Result) ([]domain.Artifact, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	s.rows = result.Cleaned.Len()
	return []domain.Artifact{{Name: s.name, Format: domain.FormatCSV, Path: s.name + ".csv", Rows: s.rows}}, nil
}

func TestPipeline_Run(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	path := testutil.WriteCoasterCSV(t, testutil.FiveRowFixture()...)
	sink := &recordingSink{name: "memory"}

	result, err := NewPipeline(logger, nil, Options{Sinks: []Sink{sink}}).Run(context.Background(), path)
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 5, result.Raw.Len())
	assert.Equal(t, 5, result.Imputed.Len())
	assert.Equal(t, 4, result.Cleaned.Len())
	assert.Equal(t, DedupStats{Input: 5, AfterStageA: 4, AfterStageB: 4}, result.Dedup)

	assert.Equal(t, append(domain.DisplayColumns(), domain.ColDecade), result.Cleaned.Names())

	names, _ := result.Cleaned.Column(domain.ColCoasterName)
	assert.Equal(t, []string{"Gamma", "Alpha", "Beta", "Delta"}, stringsOf(names), "ordered by year")

	speed, _ := result.Cleaned.Column(domain.ColSpeedMPH)
	assert.InDelta(t, (50.0+60+55+70)/4, speed.Value(0).Float(), 1e-9, "Gamma speed is the mean of the others")
	assert.Equal(t, 50.0, speed.Value(1).Float(), "first Alpha row survives")

	decades, _ := result.Cleaned.Column(domain.ColDecade)
	assert.Equal(t, []string{"1980s", "1990s", "2000s", "2010s"}, stringsOf(decades))

	assert.Equal(t, 4, result.GroupedByCoaster.Len())
	assert.Equal(t, 4, result.KeepFirst.Len())
	assert.Equal(t, 4, result.KeepLast.Len())
	assert.Equal(t, 1, result.SpeedByType.Len())
	assert.Equal(t, 4, result.AvgByDecade.Len())
	assert.False(t, result.KeepFirst.Has(domain.ColDecade))

	require.Len(t, result.Views(), 6)
	for _, v := range result.Views() {
		assert.NotNil(t, v.Table, v.Name)
	}

	assert.Equal(t, 1, sink.calls)
	assert.Equal(t, 4, sink.rows)
	require.Len(t, result.Artifacts, 1)

	assert.Equal(t, operations.OperationStatusCompleted, result.State.GetStatus())
	require.Len(t, result.State.Steps(), 8)
	assert.Equal(t, "report.memory", result.State.Steps()[7].ID)

	testutil.AssertLogContains(t, handler, slog.LevelInfo, "column imputed")
	testutil.AssertLogAttr(t, handler, "column", domain.ColSpeedMPH)
	testutil.AssertLogContains(t, handler, slog.LevelInfo, "duplicates removed")
	testutil.AssertNoErrors(t, handler)
}

func TestPipeline_Failures(t *testing.T) {
	allNullSpeed := testutil.FiveRowFixture()
	for _, row := range allNullSpeed {
		row[domain.SourceSpeedMPH] = ""
	}
	infiniteSpeed := testutil.FiveRowFixture()
	infiniteSpeed[1][domain.SourceSpeedMPH] = "inf"

	tests := []struct {
		name       string
		path       func(t *testing.T) string
		opts       Options
		wantErr    errors.ErrorType
		failedStep string
	}{
		{
			name:       "missing file",
			path:       func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.csv") },
			wantErr:    errors.ErrTypeIO,
			failedStep: StepLoad,
		},
		{
			name:       "missing column",
			path:       func(t *testing.T) string { return testutil.WriteFile(t, "coaster_db.csv", "coaster_name,Location\nA,B\n") },
			wantErr:    errors.ErrTypeSchema,
			failedStep: StepPrepare,
		},
		{
			name:       "all null column",
			path:       func(t *testing.T) string { return testutil.WriteCoasterCSV(t, allNullSpeed...) },
			wantErr:    errors.ErrTypeImputation,
			failedStep: StepImpute,
		},
		{
			name:       "infinite speed",
			path:       func(t *testing.T) string { return testutil.WriteCoasterCSV(t, infiniteSpeed...) },
			wantErr:    errors.ErrTypeParsing,
			failedStep: StepPrepare,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			sink := &recordingSink{name: "memory"}
			tt.opts.Sinks = []Sink{sink}

			result, err := NewPipeline(logger, nil, tt.opts).Run(context.Background(), tt.path(t))
			require.Error(t, err)
			assert.True(t, errors.IsType(err, tt.wantErr), "got %v", err)
			assert.Zero(t, sink.calls, "sinks never see a failed run")

			require.NotNil(t, result.State)
			assert.Equal(t, operations.OperationStatusFailed, result.State.GetStatus())
			assert.Equal(t, operations.StepStatusFailed, result.State.GetStep(tt.failedStep).GetStatus())
		})
	}
}

func TestPipeline_AllNullLeave(t *testing.T) {
	rows := testutil.FiveRowFixture()
	for _, row := range rows {
		row[domain.SourceSpeedMPH] = ""
	}
	path := testutil.WriteCoasterCSV(t, rows...)
	logger, handler := testutil.NewTestLogger(t)

	result, err := NewPipeline(logger, nil, Options{AllNull: AllNullLeave}).Run(context.Background(), path)
	require.NoError(t, err)

	speed, _ := result.Cleaned.Column(domain.ColSpeedMPH)
	assert.Equal(t, speed.Len(), speed.NullCount())
	testutil.AssertLogContains(t, handler, slog.LevelWarn, "column left unfilled, no observed values")
}

func TestPipeline_SinkError(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	path := testutil.WriteCoasterCSV(t, testutil.FiveRowFixture()...)
	boom := fmt.Errorf("disk full")

	result, err := NewPipeline(logger, nil, Options{Sinks: []Sink{&recordingSink{name: "broken", err: boom}}}).
		Run(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 4, result.Cleaned.Len(), "tables built before the sink remain available")
}

func TestPipeline_Cancelled(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	path := testutil.WriteCoasterCSV(t, testutil.FiveRowFixture()...)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPipeline(logger, nil, Options{}).Run(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}
