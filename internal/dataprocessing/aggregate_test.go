package dataprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coastereda/internal/errors"
	"coastereda/internal/table"
	"coastereda/pkg/contracts/domain"
)

func TestGroupBy_MaxSpeed(t *testing.T) {
	tbl := table.MustNew(
		table.Strings(domain.ColCoasterName, "A", "A"),
		table.Strings(domain.ColLocation, "loc1", "loc1"),
		table.Floats(domain.ColSpeedMPH, 50, 70),
		table.Floats(domain.ColHeightFT, 100, 200),
		table.Floats(domain.ColGforceClean, 4, 5),
	)

	out, err := GroupByCoaster(tbl)
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	assert.Equal(t, []string{domain.ColCoasterName, domain.ColLocation, domain.ColSpeedMPH, domain.ColHeightFT, domain.ColGforceClean}, out.Names())

	speed, _ := out.Column(domain.ColSpeedMPH)
	height, _ := out.Column(domain.ColHeightFT)
	gforce, _ := out.Column(domain.ColGforceClean)
	assert.Equal(t, 70.0, speed.Value(0).Float())
	assert.Equal(t, 150.0, height.Value(0).Float())
	assert.Equal(t, 4.5, gforce.Value(0).Float())
}

func TestGroupBy_Functions(t *testing.T) {
	tbl := table.MustNew(
		table.Strings("k", "b", "a", "b", "", "a", "c"),
		table.Floats("v", 1, 2, 3, 100, math.NaN(), math.NaN()),
	)

	out, err := GroupBy(tbl, []string{"k"},
		Aggregation{Column: "v", Func: Max, As: "max"},
		Aggregation{Column: "v", Func: Min, As: "min"},
		Aggregation{Column: "v", Func: Mean, As: "mean"},
		Aggregation{Column: "v", Func: Sum, As: "sum"},
		Aggregation{Column: "v", Func: Count, As: "n"},
	)
	require.NoError(t, err)

	keys, _ := out.Column("k")
	assert.Equal(t, []string{"b", "a", "c"}, stringsOf(keys), "first appearance order, null key dropped")

	tests := []struct {
		column string
		want   []float64
	}{
		{"max", []float64{3, 2, math.NaN()}},
		{"min", []float64{1, 2, math.NaN()}},
		{"mean", []float64{2, 2, math.NaN()}},
		{"sum", []float64{4, 2, 0}},
		{"n", []float64{2, 1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			col, err := out.Column(tt.column)
			require.NoError(t, err)
			assertFloats(t, tt.want, col.Floats())
		})
	}

	n, _ := out.Column("n")
	assert.Equal(t, table.KindInt, n.Kind())
}

func TestGroupBy_Errors(t *testing.T) {
	tbl := table.MustNew(table.Strings("k", "a"), table.Strings("s", "x"))

	tests := []struct {
		name    string
		keys    []string
		agg     Aggregation
		wantErr errors.ErrorType
	}{
		{name: "no keys", agg: Aggregation{Column: "s", Func: Max}, wantErr: errors.ErrTypeSchema},
		{name: "missing key", keys: []string{"z"}, agg: Aggregation{Column: "s", Func: Max}, wantErr: errors.ErrTypeSchema},
		{name: "missing value column", keys: []string{"k"}, agg: Aggregation{Column: "v", Func: Max}, wantErr: errors.ErrTypeSchema},
		{name: "mean of text", keys: []string{"k"}, agg: Aggregation{Column: "s", Func: Mean}, wantErr: errors.ErrTypeSchema},
		{name: "unknown function", keys: []string{"k"}, agg: Aggregation{Column: "s", Func: "median"}, wantErr: errors.ErrTypeValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GroupBy(tbl, tt.keys, tt.agg)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestMeanSpeedByType(t *testing.T) {
	tbl := table.MustNew(
		table.Strings(domain.ColTypeMain, "Wood", "Steel", "Wood", "Other"),
		table.Floats(domain.ColSpeedMPH, 40, 70, 50, math.NaN()),
	)

	out, err := MeanSpeedByType(tbl)
	require.NoError(t, err)

	types, _ := out.Column(domain.ColTypeMain)
	assert.Equal(t, []string{"Steel", "Wood", "Other"}, stringsOf(types), "descending, null mean last")

	speed, _ := out.Column(domain.ColSpeedMPH)
	assertFloats(t, []float64{70, 45, math.NaN()}, speed.Floats())
}

func TestAverageByDecade(t *testing.T) {
	tbl := table.MustNew(
		table.Strings(domain.ColDecade, "2000s", "1990s", "2000s"),
		table.Floats(domain.ColYearIntroduced, 2001, 1995, 2002),
		table.Floats(domain.ColSpeedMPH, 10, 20, 10.005),
		table.Floats(domain.ColHeightFT, 1, 2, 2),
		table.Floats(domain.ColInversionsClean, 0, 1, 1),
		table.Floats(domain.ColGforceClean, 3, 4, 4.01),
	)

	out, err := AverageByDecade(tbl)
	require.NoError(t, err)

	decades, _ := out.Column(domain.ColDecade)
	assert.Equal(t, []string{"1990s", "2000s"}, stringsOf(decades))

	year, _ := out.Column(domain.ColYearIntroduced)
	assert.Equal(t, []float64{1995, 2001.5}, year.Floats())
	height, _ := out.Column(domain.ColHeightFT)
	assert.Equal(t, []float64{2, 1.5}, height.Floats())
	gforce, _ := out.Column(domain.ColGforceClean)
	assert.Equal(t, []float64{4, 3.5}, gforce.Floats())

	_, err = AverageByDecade(table.MustNew(table.Floats(domain.ColSpeedMPH, 1)))
	assert.True(t, errors.IsType(err, errors.ErrTypeSchema))
}

func TestRoundTo(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1.005, 1.0},
		{1.015, 1.02},
		{2.345, 2.34},
		{-1.255, -1.26},
		{3.14159, 3.14},
		{7, 7},
		{math.Inf(1), math.Inf(1)},
		{math.Inf(-1), math.Inf(-1)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RoundTo(tt.in, 2), "RoundTo(%v)", tt.in)
	}
	assert.True(t, math.IsNaN(RoundTo(math.NaN(), 2)))
}

func stringsOf(c *table.Column) []string {
	out := make([]string, c.Len())
	for i := 0; i < c.Len(); i++ {
		out[i] = c.Value(i).Str()
	}
	return out
}
