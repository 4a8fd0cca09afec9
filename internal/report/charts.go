package report

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/aclements/go-moremath/stats"
	"github.com/xuri/excelize/v2"

	"coastereda/internal/dataprocessing"
	"coastereda/internal/errors"
	"coastereda/internal/infrastructure"
	"coastereda/internal/table"
	"coastereda/pkg/contracts/domain"
)

// Chart sheet names, in workbook order
const (
	SheetYearCounts   = "Year Introduced"
	SheetSpeedHist    = "Speed Histogram"
	SheetSpeedKDE     = "Speed KDE"
	SheetTypeCounts   = "Type Main"
	SheetSpeedHeight  = "Speed vs Height"
	SheetCorrelation  = "Correlation"
	SheetSpeedByType  = "Speed by Type"
	SheetDecadeTrend  = "Decade Trend"
	SheetDecadeSpeed  = "Decade Speed"
	kdePoints         = 100
	chartAnchorColumn = 8
)

// ChartOptions sizes the charts
type ChartOptions struct {
	HistogramBins int
	TopN          int
}

// ChartWorkbook writes one sheet per chart into an xlsx file. Each sheet holds
// the plotted data in its first columns and a native chart next to it.
type ChartWorkbook struct {
	path   string
	opts   ChartOptions
	logger *slog.Logger
}

// NewChartWorkbook creates a chart sink writing to path
func NewChartWorkbook(path string, opts ChartOptions, logger *slog.Logger) *ChartWorkbook {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.HistogramBins < 1 {
		opts.HistogramBins = 20
	}
	if opts.TopN < 1 {
		opts.TopN = 10
	}
	return &ChartWorkbook{path: path, opts: opts, logger: infrastructure.WithComponent(logger, "charts")}
}

// Name identifies the sink
func (w *ChartWorkbook) Name() string { return "charts" }

// Write builds the workbook from the cleaned table and saves it
func (w *ChartWorkbook) Write(ctx context.Context, result *dataprocessing.Result) ([]domain.Artifact, error) {
	f, err := w.Build(result)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := f.SaveAs(w.path); err != nil {
		return nil, errors.NewStorageError(fmt.Sprintf("failed to save %s", w.path), err)
	}

	w.logger.InfoContext(ctx, "chart workbook written",
		slog.String("path", w.path),
		slog.Int("sheets", len(f.GetSheetList())))
	return []domain.Artifact{{Name: "charts", Format: domain.FormatXLSX, Path: w.path}}, nil
}

// Build creates the workbook in memory. The caller closes the file.
func (w *ChartWorkbook) Build(result *dataprocessing.Result) (*excelize.File, error) {
	if result.Cleaned == nil {
		return nil, errors.NewValueError("no cleaned table to chart", nil)
	}

	f := excelize.NewFile()
	builders := []struct {
		sheet string
		build func(*excelize.File, string, *dataprocessing.Result) error
	}{
		{SheetYearCounts, w.yearCounts},
		{SheetSpeedHist, w.speedHistogram},
		{SheetSpeedKDE, w.speedKDE},
		{SheetTypeCounts, w.typeCounts},
		{SheetSpeedHeight, w.speedVsHeight},
		{SheetCorrelation, w.correlation},
		{SheetSpeedByType, w.speedByType},
		{SheetDecadeTrend, w.decadeTrend},
		{SheetDecadeSpeed, w.decadeSpeed},
	}

	for i, b := range builders {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", b.sheet); err != nil {
				f.Close()
				return nil, errors.NewStorageError("failed to name sheet", err)
			}
		} else if _, err := f.NewSheet(b.sheet); err != nil {
			f.Close()
			return nil, errors.NewStorageError("failed to add sheet", err).WithContext("sheet", b.sheet)
		}
		if err := b.build(f, b.sheet, result); err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet %s: %w", b.sheet, err)
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

func (w *ChartWorkbook) yearCounts(f *excelize.File, sheet string, result *dataprocessing.Result) error {
	counts, err := dataprocessing.ValueCounts(result.Cleaned, domain.ColYearIntroduced)
	if err != nil {
		return err
	}
	if len(counts) > w.opts.TopN {
		counts = counts[:w.opts.TopN]
	}
	rows := make([][]interface{}, len(counts))
	for i, vc := range counts {
		rows[i] = []interface{}{vc.Value.String(), vc.Count}
	}
	if err := writeRows(f, sheet, []string{domain.ColYearIntroduced, "Count"}, rows); err != nil {
		return err
	}
	return addChart(f, sheet, len(rows), &excelize.Chart{
		Type:   excelize.Col,
		Series: []excelize.ChartSeries{series(sheet, 1, 2, len(rows))},
	}, fmt.Sprintf("Top %d Years Coasters Introduced", w.opts.TopN), domain.ColYearIntroduced, "Count")
}

func (w *ChartWorkbook) speedHistogram(f *excelize.File, sheet string, result *dataprocessing.Result) error {
	col, err := result.Cleaned.Column(domain.ColSpeedMPH)
	if err != nil {
		return errors.NewSchemaError("cannot chart missing column", []string{domain.ColSpeedMPH})
	}
	bins := dataprocessing.Histogram(col.Floats(), w.opts.HistogramBins)
	rows := make([][]interface{}, len(bins))
	for i, b := range bins {
		rows[i] = []interface{}{fmt.Sprintf("%s-%s", formatFloat(b.Low), formatFloat(b.High)), b.Count}
	}
	if err := writeRows(f, sheet, []string{"Bin", "Count"}, rows); err != nil {
		return err
	}
	return addChart(f, sheet, len(rows), &excelize.Chart{
		Type:   excelize.Col,
		Series: []excelize.ChartSeries{series(sheet, 1, 2, len(rows))},
	}, "Coaster Speed (mph)", domain.ColSpeedMPH, "Count")
}

func (w *ChartWorkbook) speedKDE(f *excelize.File, sheet string, result *dataprocessing.Result) error {
	col, err := result.Cleaned.Column(domain.ColSpeedMPH)
	if err != nil {
		return errors.NewSchemaError("cannot chart missing column", []string{domain.ColSpeedMPH})
	}
	points := KDEPoints(col.NonNullFloats(), kdePoints)
	rows := make([][]interface{}, len(points))
	for i, p := range points {
		rows[i] = []interface{}{p[0], p[1]}
	}
	if err := writeRows(f, sheet, []string{domain.ColSpeedMPH, "Density"}, rows); err != nil {
		return err
	}
	return addChart(f, sheet, len(rows), &excelize.Chart{
		Type:   excelize.Scatter,
		Series: []excelize.ChartSeries{series(sheet, 1, 2, len(rows))},
	}, "Coaster Speed Density", domain.ColSpeedMPH, "Density")
}

func (w *ChartWorkbook) typeCounts(f *excelize.File, sheet string, result *dataprocessing.Result) error {
	counts, err := dataprocessing.ValueCounts(result.Cleaned, domain.ColTypeMain)
	if err != nil {
		return err
	}
	rows := make([][]interface{}, len(counts))
	for i, vc := range counts {
		rows[i] = []interface{}{vc.Value.Str(), vc.Count}
	}
	if err := writeRows(f, sheet, []string{domain.ColTypeMain, "Count"}, rows); err != nil {
		return err
	}
	return addChart(f, sheet, len(rows), &excelize.Chart{
		Type:   excelize.Bar,
		Series: []excelize.ChartSeries{series(sheet, 1, 2, len(rows))},
	}, "Coasters by Type", "Count", domain.ColTypeMain)
}

func (w *ChartWorkbook) speedVsHeight(f *excelize.File, sheet string, result *dataprocessing.Result) error {
	speed, err := result.Cleaned.Column(domain.ColSpeedMPH)
	if err != nil {
		return errors.NewSchemaError("cannot chart missing column", []string{domain.ColSpeedMPH})
	}
	height, err := result.Cleaned.Column(domain.ColHeightFT)
	if err != nil {
		return errors.NewSchemaError("cannot chart missing column", []string{domain.ColHeightFT})
	}

	var rows [][]interface{}
	for i := 0; i < speed.Len(); i++ {
		s, h := speed.Value(i), height.Value(i)
		if s.IsNull() || h.IsNull() {
			continue
		}
		rows = append(rows, []interface{}{s.Float(), h.Float()})
	}
	if err := writeRows(f, sheet, []string{domain.ColSpeedMPH, domain.ColHeightFT}, rows); err != nil {
		return err
	}

	s := series(sheet, 1, 2, len(rows))
	s.Marker = excelize.ChartMarker{Symbol: "circle", Size: 5}
	s.Line = excelize.ChartLine{Type: excelize.ChartLineNone}
	return addChart(f, sheet, len(rows), &excelize.Chart{
		Type:   excelize.Scatter,
		Series: []excelize.ChartSeries{s},
	}, "Coaster Speed vs. Height", domain.ColSpeedMPH, domain.ColHeightFT)
}

// correlation writes the matrix with a red-yellow-green color scale in place
// of a chart
func (w *ChartWorkbook) correlation(f *excelize.File, sheet string, result *dataprocessing.Result) error {
	corr, err := dataprocessing.CorrelationMatrix(result.Cleaned, domain.FeatureColumns)
	if err != nil {
		return err
	}

	header := append([]string{""}, corr.Columns...)
	rows := make([][]interface{}, len(corr.Columns))
	for i, name := range corr.Columns {
		row := []interface{}{name}
		for _, v := range corr.Values[i] {
			if math.IsNaN(v) {
				row = append(row, "")
				continue
			}
			row = append(row, dataprocessing.RoundTo(v, 4))
		}
		rows[i] = row
	}
	if err := writeRows(f, sheet, header, rows); err != nil {
		return err
	}

	first, _ := excelize.CoordinatesToCellName(2, 2)
	last, _ := excelize.CoordinatesToCellName(len(header), len(rows)+1)
	err = f.SetConditionalFormat(sheet, first+":"+last, []excelize.ConditionalFormatOptions{{
		Type:     "3_color_scale",
		Criteria: "=",
		MinType:  "num",
		MinValue: "-1",
		MidType:  "num",
		MidValue: "0",
		MaxType:  "num",
		MaxValue: "1",
		MinColor: "#F8696B",
		MidColor: "#FFEB84",
		MaxColor: "#63BE7B",
	}})
	if err != nil {
		return errors.NewStorageError("failed to format correlation matrix", err)
	}
	return f.SetColWidth(sheet, "A", "A", 20)
}

func (w *ChartWorkbook) speedByType(f *excelize.File, sheet string, result *dataprocessing.Result) error {
	rows := tableRows(result.SpeedByType)
	if err := writeRows(f, sheet, result.SpeedByType.Names(), rows); err != nil {
		return err
	}
	return addChart(f, sheet, len(rows), &excelize.Chart{
		Type:   excelize.Bar,
		Series: []excelize.ChartSeries{series(sheet, 1, 2, len(rows))},
	}, "Average Speed by Coaster Type", domain.ColSpeedMPH, domain.ColTypeMain)
}

func (w *ChartWorkbook) decadeTrend(f *excelize.File, sheet string, result *dataprocessing.Result) error {
	view, err := result.AvgByDecade.Select(append([]string{domain.ColDecade}, domain.TrendColumns...)...)
	if err != nil {
		return errors.NewSchemaError("cannot chart decade trends", domain.TrendColumns)
	}
	rows := tableRows(view)
	if err := writeRows(f, sheet, view.Names(), rows); err != nil {
		return err
	}

	lines := make([]excelize.ChartSeries, len(domain.TrendColumns))
	for i := range domain.TrendColumns {
		lines[i] = series(sheet, 1, i+2, len(rows))
	}
	return addChart(f, sheet, len(rows), &excelize.Chart{
		Type:   excelize.Line,
		Series: lines,
		Legend: excelize.ChartLegend{Position: "bottom"},
	}, "Coaster Features Trend by Decade", domain.ColDecade, "Average")
}

func (w *ChartWorkbook) decadeSpeed(f *excelize.File, sheet string, result *dataprocessing.Result) error {
	view, err := result.AvgByDecade.Select(domain.ColDecade, domain.ColSpeedMPH)
	if err != nil {
		return errors.NewSchemaError("cannot chart decade speed", []string{domain.ColSpeedMPH})
	}
	rows := tableRows(view)
	if err := writeRows(f, sheet, view.Names(), rows); err != nil {
		return err
	}
	return addChart(f, sheet, len(rows), &excelize.Chart{
		Type:   excelize.Col,
		Series: []excelize.ChartSeries{series(sheet, 1, 2, len(rows))},
	}, "Average Speed by Decade", domain.ColDecade, domain.ColSpeedMPH)
}

// KDEPoints evaluates a Gaussian kernel density estimate of xs on n evenly
// spaced points spanning the sample range padded by three bandwidths. It
// returns nil when the sample has fewer than two distinct values.
func KDEPoints(xs []float64, n int) [][2]float64 {
	sample := stats.Sample{Xs: xs}
	if len(xs) < 2 || n < 2 || sample.StdDev() == 0 {
		return nil
	}

	bw := stats.BandwidthScott(sample)
	kde := &stats.KDE{Sample: sample, Bandwidth: bw}
	lo, hi := sample.Bounds()
	lo, hi = lo-3*bw, hi+3*bw
	step := (hi - lo) / float64(n-1)

	points := make([][2]float64, n)
	for i := range points {
		x := lo + float64(i)*step
		points[i] = [2]float64{x, kde.PDF(x)}
	}
	return points
}

// writeRows writes a header row at A1 followed by rows
func writeRows(f *excelize.File, sheet string, header []string, rows [][]interface{}) error {
	head := make([]interface{}, len(header))
	for i, h := range header {
		head[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &head); err != nil {
		return errors.NewStorageError("failed to write header", err).WithContext("sheet", sheet)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.NewStorageError("invalid cell", err)
		}
		row := row
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.NewStorageError("failed to write row", err).WithContext("sheet", sheet)
		}
	}
	return nil
}

// tableRows converts t to sheet rows, keeping numbers numeric
func tableRows(t *table.Table) [][]interface{} {
	cols := t.Columns()
	rows := make([][]interface{}, t.Len())
	for i := range rows {
		row := make([]interface{}, len(cols))
		for j, c := range cols {
			v := c.Value(i)
			switch {
			case v.IsNull():
				row[j] = nil
			case v.Kind().Numeric():
				row[j] = v.Float()
			default:
				row[j] = v.String()
			}
		}
		rows[i] = row
	}
	return rows
}

// series references categories in column catCol and values in column valCol
// for data rows 2..n+1. The series name is the header of valCol.
func series(sheet string, catCol, valCol, n int) excelize.ChartSeries {
	return excelize.ChartSeries{
		Name:       fmt.Sprintf("'%s'!%s", sheet, absCell(valCol, 1)),
		Categories: fmt.Sprintf("'%s'!%s:%s", sheet, absCell(catCol, 2), absCell(catCol, n+1)),
		Values:     fmt.Sprintf("'%s'!%s:%s", sheet, absCell(valCol, 2), absCell(valCol, n+1)),
	}
}

func absCell(col, row int) string {
	cell, _ := excelize.CoordinatesToCellName(col, row, true)
	return cell
}

// addChart places chart next to the data. A sheet without data rows gets no
// chart.
func addChart(f *excelize.File, sheet string, rows int, chart *excelize.Chart, title, xTitle, yTitle string) error {
	if rows == 0 {
		return nil
	}
	chart.Title = []excelize.RichTextRun{{Text: title}}
	chart.XAxis.Title = []excelize.RichTextRun{{Text: xTitle}}
	chart.YAxis.Title = []excelize.RichTextRun{{Text: yTitle}}
	chart.Dimension = excelize.ChartDimension{Width: 640, Height: 400}
	if chart.Legend.Position == "" {
		chart.Legend = excelize.ChartLegend{Position: "none"}
	}

	anchor, _ := excelize.CoordinatesToCellName(chartAnchorColumn, 2)
	if err := f.AddChart(sheet, anchor, chart); err != nil {
		return errors.NewStorageError("failed to add chart", err).WithContext("sheet", sheet)
	}
	return nil
}
