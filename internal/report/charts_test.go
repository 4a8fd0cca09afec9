package report

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"coastereda/internal/dataprocessing"
	"coastereda/pkg/contracts/domain"
)

func TestChartWorkbook_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "charts.xlsx")
	workbook := NewChartWorkbook(path, ChartOptions{HistogramBins: 4, TopN: 2}, nil)
	result := runFixture(t, workbook)

	require.Len(t, result.Artifacts, 1)
	assert.Equal(t, domain.FormatXLSX, result.Artifacts[0].Format)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{
		SheetYearCounts, SheetSpeedHist, SheetSpeedKDE, SheetTypeCounts, SheetSpeedHeight,
		SheetCorrelation, SheetSpeedByType, SheetDecadeTrend, SheetDecadeSpeed,
	}, f.GetSheetList())

	tests := []struct {
		sheet    string
		dataRows int
		header   []string
	}{
		{SheetYearCounts, 2, []string{domain.ColYearIntroduced, "Count"}},
		{SheetSpeedHist, 4, []string{"Bin", "Count"}},
		{SheetSpeedKDE, kdePoints, []string{domain.ColSpeedMPH, "Density"}},
		{SheetTypeCounts, 1, []string{domain.ColTypeMain, "Count"}},
		{SheetSpeedHeight, 4, []string{domain.ColSpeedMPH, domain.ColHeightFT}},
		{SheetCorrelation, len(domain.FeatureColumns), append([]string{""}, domain.FeatureColumns...)},
		{SheetSpeedByType, 1, []string{domain.ColTypeMain, domain.ColSpeedMPH}},
		{SheetDecadeTrend, 4, append([]string{domain.ColDecade}, domain.TrendColumns...)},
		{SheetDecadeSpeed, 4, []string{domain.ColDecade, domain.ColSpeedMPH}},
	}
	for _, tt := range tests {
		t.Run(tt.sheet, func(t *testing.T) {
			rows, err := f.GetRows(tt.sheet)
			require.NoError(t, err)
			require.Len(t, rows, tt.dataRows+1)
			assert.Equal(t, tt.header, rows[0][:len(tt.header)])
		})
	}

	decades, err := f.GetRows(SheetDecadeSpeed)
	require.NoError(t, err)
	assert.Equal(t, "1980s", decades[1][0])
}

func TestChartWorkbook_NoCleanedTable(t *testing.T) {
	_, err := NewChartWorkbook(filepath.Join(t.TempDir(), "x.xlsx"), ChartOptions{}, nil).
		Write(context.Background(), &dataprocessing.Result{})
	assert.Error(t, err)
}

func TestKDEPoints(t *testing.T) {
	xs := []float64{50, 55, 60, 65, 70, 72, 90}
	points := KDEPoints(xs, 50)
	require.Len(t, points, 50)

	// the density integrates to roughly one over the padded range
	var area float64
	for i := 1; i < len(points); i++ {
		dx := points[i][0] - points[i-1][0]
		area += dx * (points[i][1] + points[i-1][1]) / 2
	}
	assert.InDelta(t, 1.0, area, 0.02)

	for _, p := range points {
		assert.False(t, math.IsNaN(p[1]))
		assert.GreaterOrEqual(t, p[1], 0.0)
	}

	assert.Nil(t, KDEPoints([]float64{5, 5, 5}, 10), "constant sample")
	assert.Nil(t, KDEPoints([]float64{5}, 10))
}
