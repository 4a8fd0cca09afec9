// Package config loads the coastereda run configuration.
//
// Values come from three layers, later layers winning:
//
//  1. Default()
//  2. an optional YAML file passed to Load
//  3. COASTER_* environment variables (envconfig)
//
// Command-line flags are applied by the caller on top of the loaded Config,
// after which Validate checks the result with go-playground/validator.
//
// Paths resolves every artifact the pipeline writes from the output directory:
//
//	paths := config.NewPaths(cfg.Pipeline.OutputDir)
//	if err := paths.EnsureDirectories(); err != nil { ... }
//	exporter.Write(paths.CleanedCSV, cleaned)
package config
