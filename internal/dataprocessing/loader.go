package dataprocessing

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"coastereda/internal/errors"
	"coastereda/internal/table"
)

// NullTokens are the cell spellings read as missing values.
var NullTokens = []string{"", "NA", "NaN", "nan", "null", "<nil>"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LoadFile reads the CSV at path. A missing or unreadable file is an IO error.
func LoadFile(ctx context.Context, path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIOError(path, err)
	}
	defer f.Close()

	t, err := LoadCSV(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return t, nil
}

// LoadCSV reads comma-delimited text with a header row. Columns are exactly the
// header, in order; cell types are inferred per column (integer, float or
// string). Date-like text stays a string until ParseDateColumn.
func LoadCSV(ctx context.Context, r io.Reader) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records, err := readRecords(r)
	if err != nil {
		return nil, err
	}

	header := records[0]
	if len(records) == 1 {
		cols := make([]*table.Column, len(header))
		for i, name := range header {
			cols[i] = table.Strings(name)
		}
		return newTable(cols)
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(NullTokens),
	)
	if df.Err != nil {
		return nil, errors.NewParsingError("cannot infer column types", df.Err)
	}

	cols := make([]*table.Column, 0, len(header))
	for i, name := range df.Names() {
		col, err := fromSeries(header[i], df.Col(name))
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return newTable(cols)
}

// readRecords tokenizes the whole input, dropping a leading UTF-8 BOM
func readRecords(r io.Reader) ([][]string, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.NewParsingError("malformed delimited text", err)
	}
	if len(records) == 0 {
		return nil, errors.NewParsingError("input has no header row", nil)
	}
	return records, nil
}

// fromSeries converts a gota series into a typed column. Bool series are kept
// as text.
func fromSeries(name string, s series.Series) (*table.Column, error) {
	n := s.Len()
	switch s.Type() {
	case series.Int:
		cells := make([]table.Value, n)
		for i := 0; i < n; i++ {
			e := s.Elem(i)
			if e.IsNA() {
				cells[i] = table.Null(table.KindInt)
				continue
			}
			v, err := e.Int()
			if err != nil {
				return nil, errors.NewParsingError(fmt.Sprintf("column %q row %d", name, i+1), err)
			}
			cells[i] = table.IntValue(int64(v))
		}
		return table.NewColumn(name, table.KindInt, cells)
	case series.Float:
		cells := make([]table.Value, n)
		for i := 0; i < n; i++ {
			e := s.Elem(i)
			if e.IsNA() {
				cells[i] = table.Null(table.KindFloat)
				continue
			}
			cells[i] = table.FloatValue(e.Float())
		}
		return table.NewColumn(name, table.KindFloat, cells)
	default:
		cells := make([]table.Value, n)
		for i := 0; i < n; i++ {
			e := s.Elem(i)
			if e.IsNA() {
				cells[i] = table.Null(table.KindString)
				continue
			}
			cells[i] = table.StringValue(e.String())
		}
		return table.NewColumn(name, table.KindString, cells)
	}
}

func newTable(cols []*table.Column) (*table.Table, error) {
	t, err := table.New(cols...)
	if err != nil {
		return nil, errors.NewParsingError("invalid header", err)
	}
	return t, nil
}
