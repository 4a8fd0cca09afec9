package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"coastereda/internal/dataprocessing"
	"coastereda/internal/table"
	"coastereda/pkg/contracts/domain"
)

// Console prints inspection tables for a finished run
type Console struct {
	w io.Writer
}

// NewConsole writes to w, or to stdout when w is nil
func NewConsole(w io.Writer) *Console {
	if w == nil {
		w = os.Stdout
	}
	return &Console{w: w}
}

// Name identifies the sink
func (c *Console) Name() string { return "console" }

// Write prints the shape of each stage, missing values before imputation, the
// Type Main counts and the mean speed per type. It produces no files.
func (c *Console) Write(ctx context.Context, result *dataprocessing.Result) ([]domain.Artifact, error) {
	sections := []func(*dataprocessing.Result) error{
		c.shape,
		c.nullCounts,
		c.typeCounts,
		c.speedByType,
	}
	for _, section := range sections {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := section(result); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func (c *Console) shape(result *dataprocessing.Result) error {
	fmt.Fprintln(c.w, "Shape")
	tw := newTable(c.w, []string{"Stage", "Rows", "Columns"})
	for _, s := range []struct {
		name string
		t    *table.Table
	}{
		{"raw", result.Raw},
		{"prepared", result.Prepared},
		{"cleaned", result.Cleaned},
	} {
		if s.t == nil {
			continue
		}
		tw.Append([]string{s.name, strconv.Itoa(s.t.Len()), strconv.Itoa(s.t.Width())})
	}
	tw.SetCaption(true, fmt.Sprintf("%d duplicate rows removed", result.Dedup.Removed()))
	tw.Render()
	return nil
}

func (c *Console) nullCounts(result *dataprocessing.Result) error {
	if result.Prepared == nil {
		return nil
	}
	fmt.Fprintln(c.w, "Missing values before imputation")
	tw := newTable(c.w, []string{"Column", "Missing", "Percent"})
	for _, nc := range dataprocessing.NullCounts(result.Prepared) {
		tw.Append([]string{nc.Column, strconv.Itoa(nc.Missing), formatPercent(nc.Percent)})
	}
	tw.Render()
	return nil
}

func (c *Console) typeCounts(result *dataprocessing.Result) error {
	counts, err := dataprocessing.ValueCounts(result.Cleaned, domain.ColTypeMain)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.w, "Type Main counts")
	tw := newTable(c.w, []string{domain.ColTypeMain, "Count"})
	for _, vc := range counts {
		tw.Append([]string{vc.Value.Str(), strconv.Itoa(vc.Count)})
	}
	tw.Render()
	return nil
}

func (c *Console) speedByType(result *dataprocessing.Result) error {
	if result.SpeedByType == nil {
		return nil
	}
	fmt.Fprintln(c.w, "Mean speed by type")
	renderTable(c.w, result.SpeedByType)
	return nil
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(header)
	tw.SetAutoFormatHeaders(false)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	return tw
}

// renderTable prints every row of t
func renderTable(w io.Writer, t *table.Table) {
	tw := newTable(w, t.Names())
	cols := t.Columns()
	for i := 0; i < t.Len(); i++ {
		row := make([]string, len(cols))
		for j, col := range cols {
			row[j] = formatValue(col.Value(i))
		}
		tw.Append(row)
	}
	tw.Render()
}
