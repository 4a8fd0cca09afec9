// Package table implements the immutable, column-oriented table that flows
// through the cleaning pipeline.
//
// A Table never changes after construction. Operations such as Select,
// Rename, WithColumn and Take return a new Table that may share column storage
// with the receiver; because columns are immutable as well, sharing is safe and
// no stage can observe another stage's edits.
package table

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrColumnNotFound is returned when a named column is absent.
	ErrColumnNotFound = errors.New("column not found")
	// ErrDuplicateColumn is returned when two columns share a name.
	ErrDuplicateColumn = errors.New("duplicate column")
	// ErrLengthMismatch is returned when columns differ in row count.
	ErrLengthMismatch = errors.New("column length mismatch")
	// ErrKindMismatch is returned when a cell does not match its column kind.
	ErrKindMismatch = errors.New("value kind mismatch")
)

// Table is an ordered list of equally sized columns.
type Table struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// New builds a table from columns. All columns must have the same length and
// distinct names.
func New(columns ...*Column) (*Table, error) {
	t := &Table{
		columns: make([]*Column, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, col := range columns {
		if _, dup := t.index[col.Name()]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, col.Name())
		}
		if i == 0 {
			t.rows = col.Len()
		} else if col.Len() != t.rows {
			return nil, fmt.Errorf("%w: %q has %d rows, want %d", ErrLengthMismatch, col.Name(), col.Len(), t.rows)
		}
		t.index[col.Name()] = len(t.columns)
		t.columns = append(t.columns, col)
	}
	return t, nil
}

// MustNew is New that panics on error. Intended for fixtures.
func MustNew(columns ...*Column) *Table {
	t, err := New(columns...)
	if err != nil {
		panic(err)
	}
	return t
}

// Len returns the number of rows
func (t *Table) Len() int { return t.rows }

// Width returns the number of columns
func (t *Table) Width() int { return len(t.columns) }

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name()
	}
	return names
}

// Columns returns the columns in order.
func (t *Table) Columns() []*Column {
	out := make([]*Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// Has reports whether a column exists.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the named column.
func (t *Table) Column(name string) (*Column, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	return t.columns[i], nil
}

// Missing returns the names that are not columns of t, in argument order.
func (t *Table) Missing(names ...string) []string {
	var missing []string
	for _, n := range names {
		if !t.Has(n) {
			missing = append(missing, n)
		}
	}
	return missing
}

// Select returns a table holding exactly the named columns, in that order.
func (t *Table) Select(names ...string) (*Table, error) {
	if missing := t.Missing(names...); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, strings.Join(missing, ", "))
	}
	cols := make([]*Column, len(names))
	for i, n := range names {
		cols[i] = t.columns[t.index[n]]
	}
	out, err := New(cols...)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		out.rows = t.rows
	}
	return out, nil
}

// Rename applies an old-name to new-name mapping. Every key must exist.
func (t *Table) Rename(mapping map[string]string) (*Table, error) {
	keys := make([]string, 0, len(mapping))
	for old := range mapping {
		keys = append(keys, old)
	}
	sort.Strings(keys)
	if missing := t.Missing(keys...); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, strings.Join(missing, ", "))
	}

	cols := make([]*Column, len(t.columns))
	for i, c := range t.columns {
		if newName, ok := mapping[c.Name()]; ok {
			cols[i] = c.Renamed(newName)
			continue
		}
		cols[i] = c
	}
	return New(cols...)
}

// WithColumn returns a table where col replaces the column of the same name,
// or is appended when no such column exists.
func (t *Table) WithColumn(col *Column) (*Table, error) {
	if len(t.columns) > 0 && col.Len() != t.rows {
		return nil, fmt.Errorf("%w: %q has %d rows, want %d", ErrLengthMismatch, col.Name(), col.Len(), t.rows)
	}
	cols := make([]*Column, len(t.columns), len(t.columns)+1)
	copy(cols, t.columns)
	if i, ok := t.index[col.Name()]; ok {
		cols[i] = col
	} else {
		cols = append(cols, col)
	}
	return New(cols...)
}

// Take returns the rows at the given indices, in that order.
func (t *Table) Take(rows []int) *Table {
	cols := make([]*Column, len(t.columns))
	for i, c := range t.columns {
		cols[i] = c.Take(rows)
	}
	out := &Table{columns: cols, index: make(map[string]int, len(cols)), rows: len(rows)}
	for i, c := range cols {
		out.index[c.Name()] = i
	}
	return out
}

// Row returns the cells of row i in column order.
func (t *Table) Row(i int) []Value {
	row := make([]Value, len(t.columns))
	for j, c := range t.columns {
		row[j] = c.Value(i)
	}
	return row
}

// Records formats the table as text rows, header first.
func (t *Table) Records() [][]string {
	records := make([][]string, 0, t.rows+1)
	records = append(records, t.Names())
	for i := 0; i < t.rows; i++ {
		rec := make([]string, len(t.columns))
		for j, c := range t.columns {
			rec[j] = c.Value(i).String()
		}
		records = append(records, rec)
	}
	return records
}

// RowKey returns a composite equality key for row i over the named columns.
// Callers must have validated the names.
func (t *Table) RowKey(i int, names []string) string {
	var b strings.Builder
	for j, n := range names {
		if j > 0 {
			b.WriteByte('\x1f')
		}
		b.WriteString(t.columns[t.index[n]].Value(i).Key())
	}
	return b.String()
}

// SortStable returns the rows ordered by the named column. Equal values keep
// their relative order and nulls are placed last in either direction.
func (t *Table) SortStable(name string, descending bool) (*Table, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	order := make([]int, t.rows)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		va, vb := col.Value(order[a]), col.Value(order[b])
		if va.IsNull() || vb.IsNull() {
			return !va.IsNull() && vb.IsNull()
		}
		if descending {
			return va.Compare(vb) > 0
		}
		return va.Compare(vb) < 0
	})
	return t.Take(order), nil
}
