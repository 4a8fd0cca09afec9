package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"coastereda/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Report    ReportConfig    `yaml:"report" envconfig:"REPORT"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// PipelineConfig controls the cleaning stages
type PipelineConfig struct {
	InputPath     string `yaml:"input_path" envconfig:"INPUT_PATH" validate:"required"`
	OutputDir     string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	AllNull       string `yaml:"all_null" envconfig:"ALL_NULL" validate:"oneof=fail leave"`
	HistogramBins int    `yaml:"histogram_bins" envconfig:"HISTOGRAM_BINS" validate:"min=1,max=500"`
	TopN          int    `yaml:"top_n" envconfig:"TOP_N" validate:"min=1"`
}

// ReportConfig toggles the reporter outputs
type ReportConfig struct {
	Charts   bool   `yaml:"charts" envconfig:"CHARTS"`
	Profile  bool   `yaml:"profile" envconfig:"PROFILE"`
	Export   bool   `yaml:"export" envconfig:"EXPORT"`
	Console  bool   `yaml:"console" envconfig:"CONSOLE"`
	WriteBOM bool   `yaml:"write_bom" envconfig:"WRITE_BOM"`
	Title    string `yaml:"title" envconfig:"TITLE" validate:"required"`
}

// LoggingConfig contains logging configuration. An empty FilePath means the
// log file lives under the output directory.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// TelemetryConfig controls tracing and metrics export
type TelemetryConfig struct {
	TraceExporter string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=none stdout"`
	Metrics       bool   `yaml:"metrics" envconfig:"METRICS"`
	ServiceName   string `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			OutputDir:     DefaultOutputDir,
			AllNull:       AllNullFail,
			HistogramBins: DefaultHistogramBins,
			TopN:          DefaultTopN,
		},
		Report: ReportConfig{
			Charts:  true,
			Profile: true,
			Export:  true,
			Console: true,
			Title:   DefaultReportTitle,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: "both",
		},
		Telemetry: TelemetryConfig{
			TraceExporter: "none",
			Metrics:       true,
			ServiceName:   AppName,
		},
	}
}

// Load builds a Config from defaults, the optional YAML file at path and the
// environment. The result is not validated; apply flag overrides first and
// then call Validate.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, err
		}
	}

	// Fields without a COASTER_* variable keep their file or default value
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, errors.NewConfigError("failed to load config from env", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file at path onto cfg
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.NewConfigError(fmt.Sprintf("failed to read config file %s", path), err).
			WithContext("path", path)
	}
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return errors.NewConfigError(fmt.Sprintf("failed to parse config file %s", path), err).
			WithContext("path", path)
	}
	return nil
}

// Validate checks every field constraint and reports all violations at once
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.NewConfigError("config validation failed", err)
	}

	fields := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		fields = append(fields, formatFieldError(fe))
	}
	sort.Strings(fields)

	return errors.NewConfigError("invalid configuration: "+strings.Join(fields, "; "), nil).
		WithContext("fields", fields)
}

// formatFieldError renders a validator failure as "Section.Field: reason"
func formatFieldError(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s: is required", field)
	case "oneof":
		return fmt.Sprintf("%s: must be one of [%s], got %q", field, fe.Param(), fmt.Sprint(fe.Value()))
	case "min":
		return fmt.Sprintf("%s: must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s: must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s: failed %s", field, fe.Tag())
	}
}

// LogFile returns the configured log file, or the default location under the
// output directory.
func (c *Config) LogFile() string {
	if c.Logging.FilePath != "" {
		return c.Logging.FilePath
	}
	return NewPaths(c.Pipeline.OutputDir).LogFile
}
