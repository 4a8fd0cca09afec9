package report

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coastereda/internal/dataprocessing"
	"coastereda/internal/table"
	"coastereda/pkg/contracts/domain"
)

func TestProfiler_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "EDA_Report.html")
	profiler := NewProfiler(path, "EDA Report", nil)
	profiler.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	result := runFixture(t, profiler)
	require.Len(t, result.Artifacts, 1)
	assert.Equal(t, domain.FormatHTML, result.Artifacts[0].Format)
	assert.Equal(t, 4, result.Artifacts[0].Rows)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(content)

	for _, want := range []string{
		"<title>EDA Report</title>",
		"2024-01-02T03:04:05Z",
		result.RunID,
		domain.ColSpeedMPH,
		domain.ColDecade,
		`id="correlation"`,
		`id="imputation"`,
		"58.75",
	} {
		assert.Contains(t, html, want)
	}
}

func TestProfiler_Build(t *testing.T) {
	cleaned := table.MustNew(
		table.Strings("name", "a", "b", "a", ""),
		table.Floats("speed", 1, 2, 1, math.NaN()),
	)
	profile, err := NewProfiler("unused", "EDA Report", nil).Build(&dataprocessing.Result{Cleaned: cleaned, RunID: "run"})
	require.NoError(t, err)

	assert.Equal(t, Overview{Rows: 4, Columns: 2, MissingCells: 2, MissingPercent: 25, DuplicateRows: 1}, profile.Overview)
	assert.Nil(t, profile.Correlation, "feature columns absent")

	require.Len(t, profile.Columns, 2)
	name := profile.Columns[0]
	assert.Equal(t, "string", name.Kind)
	assert.Equal(t, 3, name.Count)
	assert.Equal(t, 2, name.Distinct)
	require.Len(t, name.Top, 2)
	assert.Equal(t, "a", name.Top[0].Value.Str())
	assert.Nil(t, name.Numeric)

	speed := profile.Columns[1]
	require.NotNil(t, speed.Numeric)
	assert.InDelta(t, 4.0/3, speed.Numeric.Mean, 1e-9)
	assert.Equal(t, 1.0, speed.Numeric.Min)
	assert.Equal(t, 2.0, speed.Numeric.Max)
	assert.InDelta(t, 1.0, speed.Numeric.Median, 1e-9)
}

func TestSummarize(t *testing.T) {
	s := summarize([]float64{4, 1, 3, 2, 5})
	require.NotNil(t, s)
	assert.InDelta(t, 3.0, s.Mean, 1e-9)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 5.0, s.Max)
	assert.InDelta(t, 3.0, s.Median, 1e-9)
	// Hyndman-Fan type 8 quartiles
	assert.InDelta(t, 5.0/3, s.Q1, 1e-9)
	assert.InDelta(t, 13.0/3, s.Q3, 1e-9)
	assert.InDelta(t, math.Sqrt(2.5), s.StdDev, 1e-9)

	assert.Nil(t, summarize(nil))
	assert.True(t, math.IsNaN(summarize([]float64{7}).StdDev))
}

func TestRender_EscapesValues(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, &Profile{
		Title:   "<script>alert(1)</script>",
		Columns: []ColumnProfile{{Name: "a&b", Kind: "string"}},
	})
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "<script>alert(1)</script>")
	assert.Contains(t, buf.String(), "a&amp;b")
}
