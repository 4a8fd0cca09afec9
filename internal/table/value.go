package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the canonical text form of KindDate values.
const DateLayout = "2006-01-02"

// Kind is the logical type of a column.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindDate
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindDate:
		return "date"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Numeric reports whether values of this kind can be averaged.
func (k Kind) Numeric() bool {
	return k == KindInt || k == KindFloat
}

// Value is a single nullable cell. The zero Value is a null string.
type Value struct {
	kind  Kind
	valid bool
	s     string
	i     int64
	f     float64
	t     time.Time
}

// Null returns a missing value of the given kind.
func Null(kind Kind) Value {
	return Value{kind: kind}
}

// StringValue returns a non-null string cell.
func StringValue(s string) Value {
	return Value{kind: KindString, valid: true, s: s}
}

// IntValue returns a non-null integer cell.
func IntValue(i int64) Value {
	return Value{kind: KindInt, valid: true, i: i}
}

// FloatValue returns a float cell. NaN is stored as null.
func FloatValue(f float64) Value {
	if math.IsNaN(f) {
		return Null(KindFloat)
	}
	return Value{kind: KindFloat, valid: true, f: f}
}

// DateValue returns a non-null date cell truncated to the day.
func DateValue(t time.Time) Value {
	y, m, d := t.Date()
	return Value{kind: KindDate, valid: true, t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Kind returns the cell kind
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the cell is missing.
func (v Value) IsNull() bool { return !v.valid }

// Str returns the string payload. Non-string kinds are formatted.
func (v Value) Str() string {
	if v.kind == KindString {
		return v.s
	}
	return v.String()
}

// Int returns the integer payload; floats are truncated.
func (v Value) Int() int64 {
	switch v.kind {
	case KindInt:
		return v.i
	case KindFloat:
		return int64(v.f)
	}
	return 0
}

// Float returns the numeric payload as float64, or NaN when null or non-numeric.
func (v Value) Float() float64 {
	if !v.valid {
		return math.NaN()
	}
	switch v.kind {
	case KindInt:
		return float64(v.i)
	case KindFloat:
		return v.f
	}
	return math.NaN()
}

// Time returns the date payload.
func (v Value) Time() time.Time { return v.t }

// String formats the cell for CSV output. Nulls format as the empty string.
func (v Value) String() string {
	if !v.valid {
		return ""
	}
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindDate:
		return v.t.Format(DateLayout)
	default:
		return v.s
	}
}

// Key returns an equality key. Every null shares one key whatever its kind,
// so two missing cells compare equal to each other and to nothing else.
func (v Value) Key() string {
	if !v.valid {
		return "\x00null"
	}
	switch v.kind {
	case KindInt:
		return "i:" + strconv.FormatInt(v.i, 10)
	case KindFloat:
		if v.f == math.Trunc(v.f) && math.Abs(v.f) < 1e15 {
			return "i:" + strconv.FormatInt(int64(v.f), 10)
		}
		return "f:" + strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindDate:
		return "d:" + v.t.Format(DateLayout)
	default:
		return "s:" + v.s
	}
}

// Equal reports key equality, including null == null.
func (v Value) Equal(o Value) bool {
	return v.Key() == o.Key()
}

// Compare orders two cells of compatible kinds. Nulls sort after every
// non-null value.
func (v Value) Compare(o Value) int {
	switch {
	case !v.valid && !o.valid:
		return 0
	case !v.valid:
		return 1
	case !o.valid:
		return -1
	}

	if v.kind.Numeric() && o.kind.Numeric() {
		a, b := v.Float(), o.Float()
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	}
	if v.kind == KindDate && o.kind == KindDate {
		return v.t.Compare(o.t)
	}
	return strings.Compare(v.Str(), o.Str())
}
