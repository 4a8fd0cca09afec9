package dataprocessing

import (
	"fmt"
	"math"

	"github.com/aclements/go-moremath/stats"
	"github.com/shopspring/decimal"

	"coastereda/internal/errors"
	"coastereda/internal/table"
	"coastereda/pkg/contracts/domain"
)

// AggFunc names a per-group reduction
type AggFunc string

const (
	Max   AggFunc = "max"
	Min   AggFunc = "min"
	Mean  AggFunc = "mean"
	Sum   AggFunc = "sum"
	Count AggFunc = "count"
)

// Aggregation reduces Column with Func into an output column named As, or
// Column when As is empty.
type Aggregation struct {
	Column string
	Func   AggFunc
	As     string
}

// OutputName returns the name of the produced column
func (a Aggregation) OutputName() string {
	if a.As != "" {
		return a.As
	}
	return a.Column
}

type group struct {
	rows []int
}

// GroupBy partitions t by the key columns and reduces each partition with
// aggs. Output rows follow the first appearance of each key; rows with a null
// key cell are dropped. Reductions skip nulls. Max and Min keep the column
// kind and are null for a group without values; Mean and Sum are floats (Mean
// null, Sum 0 for an empty group); Count is an integer.
func GroupBy(t *table.Table, keys []string, aggs ...Aggregation) (*table.Table, error) {
	if len(keys) == 0 {
		return nil, errors.NewSchemaError("group by needs at least one key column", nil)
	}

	needed := append([]string{}, keys...)
	for _, a := range aggs {
		needed = append(needed, a.Column)
	}
	if missing := t.Missing(needed...); len(missing) > 0 {
		return nil, errors.NewSchemaError("missing aggregation columns", dedupeNames(missing))
	}

	for _, a := range aggs {
		col, _ := t.Column(a.Column)
		switch a.Func {
		case Max, Min, Count:
		case Mean, Sum:
			if !col.Kind().Numeric() {
				return nil, errors.NewSchemaError(fmt.Sprintf("%s needs a numeric column, got %s", a.Func, col.Kind()), []string{a.Column})
			}
		default:
			return nil, errors.NewValueError(fmt.Sprintf("unknown aggregation %q", a.Func), nil)
		}
	}

	keyCols := make([]*table.Column, len(keys))
	for i, k := range keys {
		keyCols[i], _ = t.Column(k)
	}

	var order []string
	groups := make(map[string]*group)
rows:
	for i := 0; i < t.Len(); i++ {
		for _, c := range keyCols {
			if c.Value(i).IsNull() {
				continue rows
			}
		}
		k := t.RowKey(i, keys)
		g, ok := groups[k]
		if !ok {
			g = &group{}
			groups[k] = g
			order = append(order, k)
		}
		g.rows = append(g.rows, i)
	}

	firsts := make([]int, len(order))
	for i, k := range order {
		firsts[i] = groups[k].rows[0]
	}
	keyTable, err := t.Select(keys...)
	if err != nil {
		return nil, errors.NewSchemaError(err.Error(), keys)
	}
	cols := keyTable.Take(firsts).Columns()

	for _, a := range aggs {
		src, _ := t.Column(a.Column)
		out, err := reduce(src, a, order, groups)
		if err != nil {
			return nil, err
		}
		cols = append(cols, out)
	}

	result, err := table.New(cols...)
	if err != nil {
		return nil, errors.NewSchemaError(fmt.Sprintf("aggregation output is invalid (%v)", err), nil)
	}
	return result, nil
}

func reduce(src *table.Column, a Aggregation, order []string, groups map[string]*group) (*table.Column, error) {
	kind := src.Kind()
	switch a.Func {
	case Mean, Sum:
		kind = table.KindFloat
	case Count:
		kind = table.KindInt
	}

	cells := make([]table.Value, len(order))
	for i, k := range order {
		cells[i] = reduceGroup(src, a.Func, groups[k].rows)
	}
	return table.NewColumn(a.OutputName(), kind, cells)
}

func reduceGroup(src *table.Column, fn AggFunc, rows []int) table.Value {
	switch fn {
	case Max, Min:
		var best table.Value
		found := false
		for _, r := range rows {
			v := src.Value(r)
			if v.IsNull() {
				continue
			}
			c := v.Compare(best)
			if !found || (fn == Max && c > 0) || (fn == Min && c < 0) {
				best, found = v, true
			}
		}
		if !found {
			return table.Null(src.Kind())
		}
		return best
	case Count:
		n := 0
		for _, r := range rows {
			if !src.Value(r).IsNull() {
				n++
			}
		}
		return table.IntValue(int64(n))
	}

	xs := make([]float64, 0, len(rows))
	for _, r := range rows {
		if v := src.Value(r); !v.IsNull() {
			xs = append(xs, v.Float())
		}
	}
	if fn == Sum {
		return table.FloatValue(stats.Sample{Xs: xs}.Sum())
	}
	if len(xs) == 0 {
		return table.Null(table.KindFloat)
	}
	return table.FloatValue(stats.Sample{Xs: xs}.Mean())
}

// SortBy is a stable sort on one column with nulls last
func SortBy(t *table.Table, column string, descending bool) (*table.Table, error) {
	out, err := t.SortStable(column, descending)
	if err != nil {
		return nil, errors.NewSchemaError("cannot sort by missing column", []string{column})
	}
	return out, nil
}

// GroupByCoaster summarises each (Coaster Name, Location) pair: the top speed,
// the mean height and the mean g-force.
func GroupByCoaster(t *table.Table) (*table.Table, error) {
	return GroupBy(t, domain.CoasterKey,
		Aggregation{Column: domain.ColSpeedMPH, Func: Max},
		Aggregation{Column: domain.ColHeightFT, Func: Mean},
		Aggregation{Column: domain.ColGforceClean, Func: Mean},
	)
}

// MeanSpeedByType averages Speed MPH per Type Main, fastest type first
func MeanSpeedByType(t *table.Table) (*table.Table, error) {
	grouped, err := GroupBy(t, []string{domain.ColTypeMain},
		Aggregation{Column: domain.ColSpeedMPH, Func: Mean},
	)
	if err != nil {
		return nil, err
	}
	return SortBy(grouped, domain.ColSpeedMPH, true)
}

// AverageByDecade averages the feature columns per Decade, rounded to two
// decimals and ordered by decade. t must already carry the Decade column.
func AverageByDecade(t *table.Table) (*table.Table, error) {
	aggs := make([]Aggregation, len(domain.FeatureColumns))
	for i, c := range domain.FeatureColumns {
		aggs[i] = Aggregation{Column: c, Func: Mean}
	}

	grouped, err := GroupBy(t, []string{domain.ColDecade}, aggs...)
	if err != nil {
		return nil, err
	}

	rounded := grouped
	for _, c := range domain.FeatureColumns {
		col, err := rounded.Column(c)
		if err != nil {
			return nil, err
		}
		r, err := col.Map(table.KindFloat, func(v table.Value) table.Value {
			if v.IsNull() {
				return v
			}
			return table.FloatValue(RoundTo(v.Float(), 2))
		})
		if err != nil {
			return nil, err
		}
		if rounded, err = rounded.WithColumn(r); err != nil {
			return nil, err
		}
	}
	return SortBy(rounded, domain.ColDecade, false)
}

// RoundTo rounds f to places decimals, half to even, on the shortest decimal
// representation of f. NaN and infinities are returned unchanged.
func RoundTo(f float64, places int32) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}
	return decimal.NewFromFloat(f).RoundBank(places).InexactFloat64()
}

func dedupeNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := names[:0:0]
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
