package exporter

import (
	"context"
	"fmt"
	"log/slog"

	"coastereda/internal/config"
	"coastereda/internal/dataprocessing"
	"coastereda/internal/infrastructure"
	"coastereda/pkg/contracts/domain"
)

// TableExporter writes the cleaned table and every derived view as CSV files
// into the output directory. It is a pipeline sink.
type TableExporter struct {
	writer *CSVWriter
	paths  *config.Paths
	logger *slog.Logger
}

// NewTableExporter creates an exporter for the given output layout
func NewTableExporter(paths *config.Paths, bomPrefix bool, logger *slog.Logger) *TableExporter {
	if logger == nil {
		logger = slog.Default()
	}
	logger = infrastructure.WithComponent(logger, "exporter")
	return &TableExporter{
		writer: NewCSVWriter(logger, bomPrefix),
		paths:  paths,
		logger: logger,
	}
}

// Name identifies the sink
func (e *TableExporter) Name() string { return "csv" }

// Write exports every view of result, in the order of config.Paths.CSVExports
func (e *TableExporter) Write(ctx context.Context, result *dataprocessing.Result) ([]domain.Artifact, error) {
	views := make(map[string]dataprocessing.NamedTable)
	for _, v := range result.Views() {
		views[v.Name] = v
	}

	var artifacts []domain.Artifact
	for _, target := range e.paths.CSVExports() {
		if err := ctx.Err(); err != nil {
			return artifacts, err
		}
		view, ok := views[target.Name]
		if !ok || view.Table == nil {
			return artifacts, fmt.Errorf("view %s was not produced", target.Name)
		}

		artifact, err := e.writer.WriteTable(ctx, target.Path, view.Table)
		if err != nil {
			return artifacts, fmt.Errorf("export %s: %w", target.Name, err)
		}
		artifact.Name = target.Name
		artifacts = append(artifacts, artifact)

		e.logger.InfoContext(ctx, "view exported",
			slog.String("view", target.Name),
			slog.String("path", target.Path),
			slog.Int("rows", artifact.Rows))
	}
	return artifacts, nil
}
