package dataprocessing

import (
	"fmt"
	"math"

	"coastereda/internal/errors"
	"coastereda/internal/table"
)

// Decade returns the ten-year bucket of a year, such as "1980s" for 1987.
// Negative years floor toward minus infinity (-5 is "-10s"). A missing year,
// a fractional year or a non-numeric cell is a value error.
func Decade(v table.Value) (string, error) {
	if v.IsNull() {
		return "", errors.NewValueError("cannot derive a decade from a missing year", nil)
	}

	var year int64
	switch v.Kind() {
	case table.KindInt:
		year = v.Int()
	case table.KindFloat:
		f := v.Float()
		if math.IsInf(f, 0) || f != math.Trunc(f) {
			return "", errors.NewValueError(fmt.Sprintf("year %v is not a whole number", f), nil)
		}
		year = int64(f)
	default:
		return "", errors.NewValueError(fmt.Sprintf("year %q is not numeric", v.Str()), nil)
	}

	return fmt.Sprintf("%ds", floorDiv(year, 10)*10), nil
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// AddDecadeColumn appends outColumn holding the decade of yearColumn. The
// first row whose year has no decade fails the whole call.
func AddDecadeColumn(t *table.Table, yearColumn, outColumn string) (*table.Table, error) {
	years, err := t.Column(yearColumn)
	if err != nil {
		return nil, errors.NewSchemaError("cannot derive decade", []string{yearColumn})
	}
	if t.Has(outColumn) {
		return nil, errors.NewSchemaError("decade column already exists", []string{outColumn})
	}

	cells := make([]table.Value, years.Len())
	for i := 0; i < years.Len(); i++ {
		d, err := Decade(years.Value(i))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		cells[i] = table.StringValue(d)
	}

	col, err := table.NewColumn(outColumn, table.KindString, cells)
	if err != nil {
		return nil, err
	}
	return t.WithColumn(col)
}
