package report

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/aclements/go-moremath/stats"

	"coastereda/internal/dataprocessing"
	"coastereda/internal/errors"
	"coastereda/internal/infrastructure"
	"coastereda/internal/table"
	"coastereda/pkg/contracts"
	"coastereda/pkg/contracts/domain"
)

//go:embed templates/profile.html.tmpl
var templateFS embed.FS

var profileTemplate = template.Must(
	template.New("profile.html.tmpl").
		Funcs(template.FuncMap{
			"num":     formatFloat,
			"percent": formatPercent,
			"cell":    formatValue,
		}).
		ParseFS(templateFS, "templates/profile.html.tmpl"),
)

// topValues is the number of most frequent values listed per column
const topValues = 5

// Overview summarises the whole table
type Overview struct {
	Rows           int
	Columns        int
	MissingCells   int
	MissingPercent float64
	DuplicateRows  int
}

// ColumnProfile describes one column. Numeric holds summary statistics for
// int and float columns; Top lists the most frequent values of the others.
type ColumnProfile struct {
	Name           string
	Kind           string
	Count          int
	Missing        int
	MissingPercent float64
	Distinct       int
	Numeric        *NumericSummary
	Top            []dataprocessing.ValueCount
}

// NumericSummary holds descriptive statistics of the non-null values
type NumericSummary struct {
	Mean   float64
	StdDev float64
	Min    float64
	Q1     float64
	Median float64
	Q3     float64
	Max    float64
}

// Profile is the data behind the HTML report
type Profile struct {
	Title       string
	RunID       string
	Version     string
	Generated   string
	Overview    Overview
	Columns     []ColumnProfile
	Correlation *dataprocessing.Correlation
	Imputation  dataprocessing.ImputationReport
	Dedup       dataprocessing.DedupStats
}

// Profiler renders an exploratory profile of the cleaned table as HTML
type Profiler struct {
	path   string
	title  string
	logger *slog.Logger
	now    func() time.Time
}

// NewProfiler creates a profile sink writing to path
func NewProfiler(path, title string, logger *slog.Logger) *Profiler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Profiler{
		path:   path,
		title:  title,
		logger: infrastructure.WithComponent(logger, "profile"),
		now:    time.Now,
	}
}

// Name identifies the sink
func (p *Profiler) Name() string { return "profile" }

// Write renders the report and writes it to the configured path
func (p *Profiler) Write(ctx context.Context, result *dataprocessing.Result) ([]domain.Artifact, error) {
	profile, err := p.Build(result)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := Render(&buf, profile); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0755); err != nil {
		return nil, errors.NewStorageError("failed to create directory", err).WithContext("path", p.path)
	}
	if err := os.WriteFile(p.path, buf.Bytes(), 0644); err != nil {
		return nil, errors.NewStorageError(fmt.Sprintf("failed to write %s", p.path), err)
	}

	p.logger.InfoContext(ctx, "profile report written",
		slog.String("path", p.path),
		slog.Int("columns", len(profile.Columns)))
	return []domain.Artifact{{Name: "profile", Format: domain.FormatHTML, Path: p.path, Rows: profile.Overview.Rows}}, nil
}

// Build computes the profile of result.Cleaned
func (p *Profiler) Build(result *dataprocessing.Result) (*Profile, error) {
	t := result.Cleaned
	if t == nil {
		return nil, errors.NewValueError("no cleaned table to profile", nil)
	}

	profile := &Profile{
		Title:      p.title,
		RunID:      result.RunID,
		Version:    contracts.Version,
		Generated:  p.now().UTC().Format(time.RFC3339),
		Imputation: result.Imputation,
		Dedup:      result.Dedup,
	}

	deduped, err := dataprocessing.DropDuplicates(t, nil, dataprocessing.KeepFirstOccurrence)
	if err != nil {
		return nil, err
	}
	profile.Overview = Overview{
		Rows:          t.Len(),
		Columns:       t.Width(),
		DuplicateRows: t.Len() - deduped.Len(),
	}

	for _, nc := range dataprocessing.NullCounts(t) {
		profile.Overview.MissingCells += nc.Missing
	}
	if cells := t.Len() * t.Width(); cells > 0 {
		profile.Overview.MissingPercent = float64(profile.Overview.MissingCells) / float64(cells) * 100
	}

	for _, col := range t.Columns() {
		cp, err := profileColumn(t, col)
		if err != nil {
			return nil, err
		}
		profile.Columns = append(profile.Columns, cp)
	}

	if t.Missing(domain.FeatureColumns...) == nil {
		if profile.Correlation, err = dataprocessing.CorrelationMatrix(t, domain.FeatureColumns); err != nil {
			return nil, err
		}
	}
	return profile, nil
}

func profileColumn(t *table.Table, col *table.Column) (ColumnProfile, error) {
	missing := col.NullCount()
	cp := ColumnProfile{
		Name:    col.Name(),
		Kind:    col.Kind().String(),
		Count:   col.Len() - missing,
		Missing: missing,
	}
	if col.Len() > 0 {
		cp.MissingPercent = float64(missing) / float64(col.Len()) * 100
	}

	counts, err := dataprocessing.ValueCounts(t, col.Name())
	if err != nil {
		return cp, err
	}
	cp.Distinct = len(counts)

	if col.Kind().Numeric() {
		cp.Numeric = summarize(col.NonNullFloats())
		return cp, nil
	}
	if len(counts) > topValues {
		counts = counts[:topValues]
	}
	cp.Top = counts
	return cp, nil
}

// summarize returns nil for an empty sample
func summarize(xs []float64) *NumericSummary {
	if len(xs) == 0 {
		return nil
	}
	sample := stats.Sample{Xs: append([]float64(nil), xs...)}
	sample.Sort()

	lo, hi := sample.Bounds()
	s := &NumericSummary{
		Mean:   sample.Mean(),
		StdDev: sample.StdDev(),
		Min:    lo,
		Q1:     sample.Quantile(0.25),
		Median: sample.Quantile(0.5),
		Q3:     sample.Quantile(0.75),
		Max:    hi,
	}
	if len(xs) < 2 {
		s.StdDev = math.NaN()
	}
	return s
}

// Render executes the HTML template for profile
func Render(w io.Writer, profile *Profile) error {
	if err := profileTemplate.Execute(w, profile); err != nil {
		return errors.NewStorageError("failed to render profile report", err)
	}
	return nil
}
