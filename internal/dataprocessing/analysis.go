package dataprocessing

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"coastereda/internal/errors"
	"coastereda/internal/table"
)

// ValueCount is one distinct value and how often it occurs
type ValueCount struct {
	Value table.Value
	Count int
}

// ValueCounts tallies the non-null values of a column, most frequent first.
// Equal counts keep first-appearance order.
func ValueCounts(t *table.Table, column string) ([]ValueCount, error) {
	col, err := t.Column(column)
	if err != nil {
		return nil, errors.NewSchemaError("cannot count values of missing column", []string{column})
	}

	index := make(map[string]int)
	var counts []ValueCount
	for _, v := range col.Values() {
		if v.IsNull() {
			continue
		}
		k := v.Key()
		if i, ok := index[k]; ok {
			counts[i].Count++
			continue
		}
		index[k] = len(counts)
		counts = append(counts, ValueCount{Value: v, Count: 1})
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return counts, nil
}

// HistogramBin is a half-open interval [Low, High); the last bin is closed.
type HistogramBin struct {
	Low   float64
	High  float64
	Count int
}

// Histogram splits the range of values into equal-width bins. NaNs and
// infinities are ignored. When every value is equal the range is widened by
// 0.5 on each side.
func Histogram(values []float64, bins int) []HistogramBin {
	xs := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			xs = append(xs, v)
		}
	}
	if len(xs) == 0 || bins < 1 {
		return nil
	}
	sort.Float64s(xs)

	lo, hi := xs[0], xs[len(xs)-1]
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	edges := floats.Span(make([]float64, bins+1), lo, hi)
	edges[bins] = hi

	// stat.Histogram bins are half-open, so the top divider sits just above
	// the maximum to close the last bin.
	dividers := append([]float64(nil), edges...)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, xs, nil)

	out := make([]HistogramBin, bins)
	for i := range out {
		out[i] = HistogramBin{Low: edges[i], High: edges[i+1], Count: int(counts[i])}
	}
	return out
}

// Correlation is a symmetric matrix of Pearson coefficients
type Correlation struct {
	Columns []string
	Values  [][]float64
	// Rows is the number of complete rows the coefficients were computed on
	Rows int
}

// At returns the coefficient between two columns, or NaN if either is absent
func (c *Correlation) At(a, b string) float64 {
	i, j := -1, -1
	for k, name := range c.Columns {
		if name == a {
			i = k
		}
		if name == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return math.NaN()
	}
	return c.Values[i][j]
}

// CorrelationMatrix computes pairwise Pearson correlation over the rows where
// every named column is present. A constant column correlates as NaN.
func CorrelationMatrix(t *table.Table, columns []string) (*Correlation, error) {
	if missing := t.Missing(columns...); len(missing) > 0 {
		return nil, errors.NewSchemaError("cannot correlate missing columns", missing)
	}

	cols := make([]*table.Column, len(columns))
	for i, name := range columns {
		cols[i], _ = t.Column(name)
		if !cols[i].Kind().Numeric() {
			return nil, errors.NewSchemaError("correlation needs numeric columns", []string{name})
		}
	}

	data := make([][]float64, len(columns))
rows:
	for r := 0; r < t.Len(); r++ {
		for _, c := range cols {
			if c.Value(r).IsNull() {
				continue rows
			}
		}
		for i, c := range cols {
			data[i] = append(data[i], c.Value(r).Float())
		}
	}

	n := 0
	if len(data) > 0 {
		n = len(data[0])
	}
	result := &Correlation{Columns: append([]string{}, columns...), Rows: n}
	result.Values = make([][]float64, len(columns))
	for i := range result.Values {
		result.Values[i] = make([]float64, len(columns))
	}
	for i := range columns {
		for j := i; j < len(columns); j++ {
			r := pearson(data[i], data[j])
			result.Values[i][j] = r
			result.Values[j][i] = r
		}
	}
	return result, nil
}

func pearson(xs, ys []float64) float64 {
	if len(xs) < 2 || constant(xs) || constant(ys) {
		return math.NaN()
	}
	r := stat.Correlation(xs, ys, nil)
	return math.Max(-1, math.Min(1, r))
}

func constant(xs []float64) bool {
	return floats.Min(xs) == floats.Max(xs)
}

// NullCount reports the missing cells of one column
type NullCount struct {
	Column  string
	Missing int
	// Percent is Missing as a share of all rows, 0 for an empty table
	Percent float64
}

// NullCounts reports missing cells per column, in column order
func NullCounts(t *table.Table) []NullCount {
	out := make([]NullCount, 0, t.Width())
	for _, c := range t.Columns() {
		missing := c.NullCount()
		nc := NullCount{Column: c.Name(), Missing: missing}
		if c.Len() > 0 {
			nc.Percent = float64(missing) / float64(c.Len()) * 100
		}
		out = append(out, nc)
	}
	return out
}
