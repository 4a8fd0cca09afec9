package table

import (
	"fmt"
)

// Column is a named, typed, immutable sequence of cells.
type Column struct {
	name   string
	kind   Kind
	values []Value
}

// NewColumn copies values into a new column. Every non-null value must have the
// column kind; nulls are re-tagged with it.
func NewColumn(name string, kind Kind, values []Value) (*Column, error) {
	cells := make([]Value, len(values))
	for i, v := range values {
		if v.IsNull() {
			cells[i] = Null(kind)
			continue
		}
		if v.Kind() != kind {
			return nil, fmt.Errorf("column %q row %d: %w: got %s, want %s", name, i, ErrKindMismatch, v.Kind(), kind)
		}
		cells[i] = v
	}
	return &Column{name: name, kind: kind, values: cells}, nil
}

// MustColumn is NewColumn that panics on error. Intended for fixtures.
func MustColumn(name string, kind Kind, values ...Value) *Column {
	col, err := NewColumn(name, kind, values)
	if err != nil {
		panic(err)
	}
	return col
}

// Strings builds a string column; empty strings become nulls.
func Strings(name string, values ...string) *Column {
	cells := make([]Value, len(values))
	for i, s := range values {
		if s == "" {
			cells[i] = Null(KindString)
			continue
		}
		cells[i] = StringValue(s)
	}
	return &Column{name: name, kind: KindString, values: cells}
}

// Floats builds a float column; NaN entries become nulls.
func Floats(name string, values ...float64) *Column {
	cells := make([]Value, len(values))
	for i, f := range values {
		cells[i] = FloatValue(f)
	}
	return &Column{name: name, kind: KindFloat, values: cells}
}

// Ints builds an integer column with no nulls.
func Ints(name string, values ...int64) *Column {
	cells := make([]Value, len(values))
	for i, n := range values {
		cells[i] = IntValue(n)
	}
	return &Column{name: name, kind: KindInt, values: cells}
}

// Name returns the column name
func (c *Column) Name() string { return c.name }

// Kind returns the column kind
func (c *Column) Kind() Kind { return c.kind }

// Len returns the number of cells
func (c *Column) Len() int { return len(c.values) }

// Value returns the cell at row i.
func (c *Column) Value(i int) Value { return c.values[i] }

// Values returns a copy of the cells.
func (c *Column) Values() []Value {
	out := make([]Value, len(c.values))
	copy(out, c.values)
	return out
}

// Floats returns the cells as float64 with NaN for nulls.
func (c *Column) Floats() []float64 {
	out := make([]float64, len(c.values))
	for i, v := range c.values {
		out[i] = v.Float()
	}
	return out
}

// NonNullFloats returns the numeric cells, skipping nulls.
func (c *Column) NonNullFloats() []float64 {
	out := make([]float64, 0, len(c.values))
	for _, v := range c.values {
		if !v.IsNull() {
			out = append(out, v.Float())
		}
	}
	return out
}

// NullCount returns the number of missing cells.
func (c *Column) NullCount() int {
	n := 0
	for _, v := range c.values {
		if v.IsNull() {
			n++
		}
	}
	return n
}

// Renamed returns the same cells under a new name.
func (c *Column) Renamed(name string) *Column {
	return &Column{name: name, kind: c.kind, values: c.values}
}

// Take returns the cells at the given row indices, in that order.
func (c *Column) Take(rows []int) *Column {
	cells := make([]Value, len(rows))
	for i, r := range rows {
		cells[i] = c.values[r]
	}
	return &Column{name: c.name, kind: c.kind, values: cells}
}

// Map returns a new column of the given kind built by applying fn to every cell.
func (c *Column) Map(kind Kind, fn func(Value) Value) (*Column, error) {
	cells := make([]Value, len(c.values))
	for i, v := range c.values {
		cells[i] = fn(v)
	}
	return NewColumn(c.name, kind, cells)
}
