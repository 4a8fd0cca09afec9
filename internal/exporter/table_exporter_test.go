package exporter

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coastereda/internal/config"
	"coastereda/internal/dataprocessing"
	"coastereda/internal/shared/testutil"
	"coastereda/pkg/contracts/domain"
)

func TestTableExporter_AsPipelineSink(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	paths := config.NewPaths(filepath.Join(t.TempDir(), "output"))
	exp := NewTableExporter(paths, false, logger)
	input := testutil.WriteCoasterCSV(t, testutil.FiveRowFixture()...)

	result, err := dataprocessing.NewPipeline(logger, nil, dataprocessing.Options{
		Sinks: []dataprocessing.Sink{exp},
	}).Run(context.Background(), input)
	require.NoError(t, err)

	require.Len(t, result.Artifacts, len(paths.CSVExports()))
	for i, target := range paths.CSVExports() {
		a := result.Artifacts[i]
		assert.Equal(t, target.Name, a.Name)
		assert.Equal(t, target.Path, a.Path)
		assert.Equal(t, domain.FormatCSV, a.Format)
		assert.FileExists(t, target.Path)
	}

	cleaned, err := dataprocessing.LoadFile(context.Background(), paths.CleanedCSV)
	require.NoError(t, err)
	assert.Equal(t, result.Cleaned.Names(), cleaned.Names())
	assert.Equal(t, 4, cleaned.Len())

	avg, err := os.ReadFile(paths.AvgByDecadeCSV)
	require.NoError(t, err)
	assert.Contains(t, string(avg), "1980s")

	testutil.AssertLogContains(t, handler, slog.LevelInfo, "view exported")
	testutil.AssertLogAttr(t, handler, "view", "avg_by_decade")
}

func TestTableExporter_MissingView(t *testing.T) {
	paths := config.NewPaths(t.TempDir())
	exp := NewTableExporter(paths, false, nil)

	_, err := exp.Write(context.Background(), &dataprocessing.Result{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cleaned")
}
