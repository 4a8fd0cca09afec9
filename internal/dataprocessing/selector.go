package dataprocessing

import (
	stderrors "errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"coastereda/internal/errors"
	"coastereda/internal/table"
	"coastereda/pkg/contracts/domain"
)

// DateLayouts are tried in order when parsing date text.
var DateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// SelectColumns projects t onto names, in that order. Every missing name is
// reported in one SchemaError.
func SelectColumns(t *table.Table, names []string) (*table.Table, error) {
	if missing := t.Missing(names...); len(missing) > 0 {
		return nil, errors.NewSchemaError("missing required columns", missing)
	}
	out, err := t.Select(names...)
	if err != nil {
		return nil, errors.NewSchemaError(err.Error(), nil)
	}
	return out, nil
}

// RenameColumns applies a one-to-one rename. Every key must be a column and no
// new name may collide with a column that is not itself being renamed.
func RenameColumns(t *table.Table, mapping map[string]string) (*table.Table, error) {
	keys := make([]string, 0, len(mapping))
	for old := range mapping {
		keys = append(keys, old)
	}
	sort.Strings(keys)

	if missing := t.Missing(keys...); len(missing) > 0 {
		return nil, errors.NewSchemaError("cannot rename missing columns", missing)
	}

	out, err := t.Rename(mapping)
	if err != nil {
		if stderrors.Is(err, table.ErrDuplicateColumn) {
			return nil, errors.NewSchemaError(fmt.Sprintf("rename collides with an existing column (%v)", err), keys)
		}
		return nil, errors.NewSchemaError(err.Error(), keys)
	}
	return out, nil
}

// ReverseMapping inverts a rename mapping. Applying a mapping and then its
// reverse restores the original column names.
func ReverseMapping(mapping map[string]string) map[string]string {
	reversed := make(map[string]string, len(mapping))
	for old, renamed := range mapping {
		reversed[renamed] = old
	}
	return reversed
}

// ParseDateColumn converts a text column to dates. Cells matching none of
// DateLayouts become null. A column that is already a date is returned as is.
func ParseDateColumn(t *table.Table, name string) (*table.Table, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, errors.NewSchemaError("cannot parse dates", []string{name})
	}

	switch col.Kind() {
	case table.KindDate:
		return t, nil
	case table.KindString:
	default:
		return nil, errors.NewSchemaError(fmt.Sprintf("date column holds %s values", col.Kind()), []string{name})
	}

	parsed, err := col.Map(table.KindDate, func(v table.Value) table.Value {
		if v.IsNull() {
			return table.Null(table.KindDate)
		}
		if d, ok := parseDate(v.Str()); ok {
			return table.DateValue(d)
		}
		return table.Null(table.KindDate)
	})
	if err != nil {
		return nil, err
	}
	return t.WithColumn(parsed)
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range DateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

// CoerceNumeric makes sure each named column is numeric and finite. Text
// columns are parsed as floats; text that is not a number, and infinities in
// any form, are parsing errors.
func CoerceNumeric(t *table.Table, names []string) (*table.Table, error) {
	out := t
	for _, name := range names {
		col, err := out.Column(name)
		if err != nil {
			return nil, errors.NewSchemaError("cannot coerce missing column", []string{name})
		}
		if col.Kind().Numeric() {
			for i, v := range col.Values() {
				if !v.IsNull() && math.IsInf(v.Float(), 0) {
					return nil, nonFinite(name, i, v.String())
				}
			}
			continue
		}
		if col.Kind() != table.KindString {
			return nil, errors.NewSchemaError(fmt.Sprintf("expected a numeric column, got %s", col.Kind()), []string{name})
		}

		cells := make([]table.Value, col.Len())
		for i, v := range col.Values() {
			if v.IsNull() {
				cells[i] = table.Null(table.KindFloat)
				continue
			}
			f, err := strconv.ParseFloat(strings.TrimSpace(v.Str()), 64)
			if err != nil {
				return nil, errors.NewParsingError(fmt.Sprintf("column %q row %d holds non-numeric value %q", name, i+1, v.Str()), err).
					WithContext("column", name)
			}
			if math.IsInf(f, 0) {
				return nil, nonFinite(name, i, v.Str())
			}
			cells[i] = table.FloatValue(f)
		}
		coerced, err := table.NewColumn(name, table.KindFloat, cells)
		if err != nil {
			return nil, err
		}
		if out, err = out.WithColumn(coerced); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func nonFinite(column string, row int, text string) error {
	return errors.NewParsingError(fmt.Sprintf("column %q row %d holds non-finite value %q", column, row+1, text), nil).
		WithContext("column", column)
}

// Prepare projects the raw table onto the source columns, fixes column types
// and applies the display names.
func Prepare(t *table.Table) (*table.Table, error) {
	selected, err := SelectColumns(t, domain.SourceColumns)
	if err != nil {
		return nil, err
	}
	typed, err := CoerceNumeric(selected, domain.NumericSourceColumns)
	if err != nil {
		return nil, err
	}
	dated, err := ParseDateColumn(typed, domain.SourceOpeningDateClean)
	if err != nil {
		return nil, err
	}
	return RenameColumns(dated, domain.RenameMapping)
}
