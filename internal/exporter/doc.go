// Package exporter writes pipeline tables as CSV files.
//
// CSVWriter streams a table.Table to disk row by row, optionally prefixed with
// a UTF-8 BOM for spreadsheet tools. TableExporter is a dataprocessing.Sink that
// writes the cleaned table and the derived views (grouped_by_coaster,
// keep_first, keep_last, speed_by_type, avg_by_decade) to the paths resolved by
// config.Paths.
//
// Example usage:
//
//	paths := config.NewPaths("output")
//	exp := exporter.NewTableExporter(paths, false, logger)
//	pipeline := dataprocessing.NewPipeline(logger, tracer, dataprocessing.Options{
//		Sinks: []dataprocessing.Sink{exp},
//	})
package exporter
