package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains every file the pipeline writes. All entries are derived from
// OutputDir.
type Paths struct {
	OutputDir string
	LogsDir   string

	CleanedCSV     string
	GroupedCSV     string
	KeepFirstCSV   string
	KeepLastCSV    string
	SpeedByTypeCSV string
	AvgByDecadeCSV string

	Charts  string
	Profile string
	Metrics string
	Trace   string
	LogFile string
}

// NewPaths resolves the artifact layout under outputDir
func NewPaths(outputDir string) *Paths {
	logsDir := filepath.Join(outputDir, LogsDirName)
	return &Paths{
		OutputDir: outputDir,
		LogsDir:   logsDir,

		CleanedCSV:     filepath.Join(outputDir, CleanedCSVName),
		GroupedCSV:     filepath.Join(outputDir, GroupedCSVName),
		KeepFirstCSV:   filepath.Join(outputDir, KeepFirstCSVName),
		KeepLastCSV:    filepath.Join(outputDir, KeepLastCSVName),
		SpeedByTypeCSV: filepath.Join(outputDir, SpeedByTypeCSVName),
		AvgByDecadeCSV: filepath.Join(outputDir, AvgByDecadeCSVName),

		Charts:  filepath.Join(outputDir, ChartsName),
		Profile: filepath.Join(outputDir, ProfileName),
		Metrics: filepath.Join(outputDir, MetricsName),
		Trace:   filepath.Join(outputDir, TraceName),
		LogFile: filepath.Join(logsDir, LogFileName),
	}
}

// EnsureDirectories creates the output and logs directories
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.OutputDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// CSVExports returns the CSV export files keyed by view name, in write order
func (p *Paths) CSVExports() []NamedPath {
	return []NamedPath{
		{Name: "cleaned", Path: p.CleanedCSV},
		{Name: "grouped_by_coaster", Path: p.GroupedCSV},
		{Name: "keep_first", Path: p.KeepFirstCSV},
		{Name: "keep_last", Path: p.KeepLastCSV},
		{Name: "speed_by_type", Path: p.SpeedByTypeCSV},
		{Name: "avg_by_decade", Path: p.AvgByDecadeCSV},
	}
}

// NamedPath pairs a view name with its output file
type NamedPath struct {
	Name string
	Path string
}
