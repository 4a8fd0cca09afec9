package report

import (
	"bytes"
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coastereda/internal/dataprocessing"
	"coastereda/internal/shared/testutil"
)

func runFixture(t *testing.T, sinks ...dataprocessing.Sink) *dataprocessing.Result {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	path := testutil.WriteCoasterCSV(t, testutil.FiveRowFixture()...)
	result, err := dataprocessing.NewPipeline(logger, nil, dataprocessing.Options{Sinks: sinks}).
		Run(context.Background(), path)
	require.NoError(t, err)
	return result
}

func TestConsole_Write(t *testing.T) {
	var buf bytes.Buffer
	result := runFixture(t, NewConsole(&buf))

	assert.Empty(t, result.Artifacts)

	out := buf.String()
	for _, want := range []string{
		"Shape",
		"cleaned",
		"1 duplicate rows removed",
		"Missing values before imputation",
		"Speed MPH",
		"20.0%",
		"Type Main counts",
		"Steel",
		"Mean speed by type",
		"59.69",
	} {
		assert.Contains(t, out, want)
	}
}

func TestConsole_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewConsole(&bytes.Buffer{}).Write(ctx, &dataprocessing.Result{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "13.40", formatFloat(13.4))
	assert.Equal(t, "", formatFloat(math.NaN()))
	assert.Equal(t, "12.5%", formatPercent(12.5))
}
