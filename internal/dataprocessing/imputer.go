package dataprocessing

import (
	"fmt"

	"github.com/aclements/go-moremath/stats"

	"coastereda/internal/errors"
	"coastereda/internal/table"
	"coastereda/pkg/contracts/domain"
)

// AllNullPolicy decides what happens to a column with no observed values
type AllNullPolicy int

const (
	// AllNullFail stops the run with an imputation error
	AllNullFail AllNullPolicy = iota
	// AllNullLeave keeps the column unchanged and notes it in the report
	AllNullLeave
)

// String returns the policy name used in configuration
func (p AllNullPolicy) String() string {
	if p == AllNullLeave {
		return "leave"
	}
	return "fail"
}

// ParseAllNullPolicy parses "fail" or "leave"
func ParseAllNullPolicy(s string) (AllNullPolicy, error) {
	switch s {
	case "", "fail":
		return AllNullFail, nil
	case "leave":
		return AllNullLeave, nil
	}
	return AllNullFail, errors.NewConfigError(fmt.Sprintf("unknown all-null policy %q (want fail or leave)", s), nil)
}

// Imputation statistics
const (
	StatMean = "mean"
	StatMode = "mode"
)

// ImputedColumn is the outcome of filling one column
type ImputedColumn struct {
	Column    string
	Statistic string
	Fill      table.Value
	Filled    int
	// AllNull is set when the column had no values and was left untouched
	AllNull bool
}

// ImputationReport lists the columns processed by Impute, in order
type ImputationReport struct {
	Columns []ImputedColumn
}

// TotalFilled returns the number of cells filled across all columns
func (r ImputationReport) TotalFilled() int {
	n := 0
	for _, c := range r.Columns {
		n += c.Filled
	}
	return n
}

// Imputer fills missing values: the mean for MeanColumns, then the mode for
// ModeColumns. Other columns are never touched.
type Imputer struct {
	Policy      AllNullPolicy
	MeanColumns []string
	ModeColumns []string
}

// NewImputer returns an imputer for the coaster display columns
func NewImputer(policy AllNullPolicy) *Imputer {
	return &Imputer{
		Policy:      policy,
		MeanColumns: domain.MeanImputedColumns,
		ModeColumns: domain.ModeImputedColumns,
	}
}

// Impute runs the numeric pass and then the categorical pass
func (im *Imputer) Impute(t *table.Table) (*table.Table, ImputationReport, error) {
	var report ImputationReport

	all := append(append([]string{}, im.MeanColumns...), im.ModeColumns...)
	if missing := t.Missing(all...); len(missing) > 0 {
		return nil, report, errors.NewSchemaError("cannot impute missing columns", missing)
	}

	out := t
	passes := []struct {
		columns   []string
		statistic string
		fill      func(*table.Table, string) (*table.Table, ImputedColumn, error)
	}{
		{im.MeanColumns, StatMean, ImputeMean},
		{im.ModeColumns, StatMode, ImputeMode},
	}

	for _, pass := range passes {
		for _, name := range pass.columns {
			next, col, err := pass.fill(out, name)
			if err != nil {
				if im.Policy == AllNullLeave && errors.IsType(err, errors.ErrTypeImputation) {
					report.Columns = append(report.Columns, ImputedColumn{Column: name, Statistic: pass.statistic, AllNull: true})
					continue
				}
				return nil, report, err
			}
			report.Columns = append(report.Columns, col)
			out = next
		}
	}
	return out, report, nil
}

// ImputeMean replaces the nulls of a numeric column with the mean of its
// non-null values. Integer columns become float columns. A column without
// nulls is returned unchanged.
func ImputeMean(t *table.Table, name string) (*table.Table, ImputedColumn, error) {
	result := ImputedColumn{Column: name, Statistic: StatMean}

	col, err := t.Column(name)
	if err != nil {
		return nil, result, errors.NewSchemaError("cannot impute missing column", []string{name})
	}
	if !col.Kind().Numeric() {
		return nil, result, errors.NewSchemaError(fmt.Sprintf("mean imputation needs a numeric column, got %s", col.Kind()), []string{name})
	}

	observed := col.NonNullFloats()
	if len(observed) == 0 {
		return nil, result, errors.NewImputationError(name, StatMean)
	}

	mean := stats.Sample{Xs: observed}.Mean()
	result.Fill = table.FloatValue(mean)

	nulls := col.NullCount()
	if nulls == 0 {
		return t, result, nil
	}

	filled, err := col.Map(table.KindFloat, func(v table.Value) table.Value {
		if v.IsNull() {
			return result.Fill
		}
		return table.FloatValue(v.Float())
	})
	if err != nil {
		return nil, result, err
	}

	out, err := t.WithColumn(filled)
	if err != nil {
		return nil, result, err
	}
	result.Filled = nulls
	return out, result, nil
}

// ImputeMode replaces the nulls of a column with its most frequent value. Ties
// go to the smallest value in the column's natural order.
func ImputeMode(t *table.Table, name string) (*table.Table, ImputedColumn, error) {
	result := ImputedColumn{Column: name, Statistic: StatMode}

	col, err := t.Column(name)
	if err != nil {
		return nil, result, errors.NewSchemaError("cannot impute missing column", []string{name})
	}

	mode, ok := Mode(col)
	if !ok {
		return nil, result, errors.NewImputationError(name, StatMode)
	}
	result.Fill = mode

	nulls := col.NullCount()
	if nulls == 0 {
		return t, result, nil
	}

	filled, err := col.Map(col.Kind(), func(v table.Value) table.Value {
		if v.IsNull() {
			return mode
		}
		return v
	})
	if err != nil {
		return nil, result, err
	}

	out, err := t.WithColumn(filled)
	if err != nil {
		return nil, result, err
	}
	result.Filled = nulls
	return out, result, nil
}

// Mode returns the most frequent non-null value of col, breaking ties by the
// smallest value. ok is false when col has no values.
func Mode(col *table.Column) (mode table.Value, ok bool) {
	counts := make(map[string]int)
	values := make(map[string]table.Value)
	for _, v := range col.Values() {
		if v.IsNull() {
			continue
		}
		k := v.Key()
		counts[k]++
		if _, seen := values[k]; !seen {
			values[k] = v
		}
	}

	best := -1
	for k, n := range counts {
		v := values[k]
		if n > best || (n == best && v.Compare(mode) < 0) {
			best, mode = n, v
		}
	}
	return mode, best > 0
}
