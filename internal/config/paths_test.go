package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaths(t *testing.T) {
	paths := NewPaths("out")

	assert.Equal(t, "out", paths.OutputDir)
	assert.Equal(t, filepath.Join("out", "cleaned.csv"), paths.CleanedCSV)
	assert.Equal(t, filepath.Join("out", "grouped_by_coaster.csv"), paths.GroupedCSV)
	assert.Equal(t, filepath.Join("out", "keep_first.csv"), paths.KeepFirstCSV)
	assert.Equal(t, filepath.Join("out", "keep_last.csv"), paths.KeepLastCSV)
	assert.Equal(t, filepath.Join("out", "speed_by_type.csv"), paths.SpeedByTypeCSV)
	assert.Equal(t, filepath.Join("out", "avg_by_decade.csv"), paths.AvgByDecadeCSV)
	assert.Equal(t, filepath.Join("out", "charts.xlsx"), paths.Charts)
	assert.Equal(t, filepath.Join("out", "EDA_Report.html"), paths.Profile)
	assert.Equal(t, filepath.Join("out", "metrics.prom"), paths.Metrics)
	assert.Equal(t, filepath.Join("out", "trace.json"), paths.Trace)
	assert.Equal(t, filepath.Join("out", "logs", "coastereda.log"), paths.LogFile)
}

func TestPaths_CSVExports(t *testing.T) {
	exports := NewPaths("out").CSVExports()

	require.Len(t, exports, 6)
	assert.Equal(t, "cleaned", exports[0].Name)
	assert.Equal(t, filepath.Join("out", "avg_by_decade.csv"), exports[5].Path)
}

func TestPaths_EnsureDirectories(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "out")
	paths := NewPaths(root)

	require.NoError(t, paths.EnsureDirectories())

	for _, dir := range []string{paths.OutputDir, paths.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	// idempotent
	assert.NoError(t, paths.EnsureDirectories())
}
