// Command coastereda cleans the roller-coaster database CSV and writes the
// cleaned table, derived views, a chart workbook and an HTML profile.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"coastereda/internal/config"
	"coastereda/internal/dataprocessing"
	"coastereda/internal/errors"
	"coastereda/internal/exporter"
	"coastereda/internal/infrastructure"
	"coastereda/internal/operations"
	"coastereda/internal/report"
	"coastereda/internal/validation"
	"coastereda/pkg/contracts"
	"coastereda/pkg/contracts/domain"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// options holds the parsed command line
type options struct {
	configPath string
	version    bool
	set        map[string]bool

	in, out, allNull              string
	report, charts, export, quiet bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{set: make(map[string]bool)}

	fs := flag.NewFlagSet(config.AppName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.in, "in", "", "input CSV file (coaster_db.csv)")
	fs.StringVar(&opts.out, "out", config.DefaultOutputDir, "output directory for exports, charts and reports")
	fs.StringVar(&opts.configPath, "config", "", "optional YAML configuration file")
	fs.BoolVar(&opts.report, "report", true, "write "+config.ProfileName)
	fs.BoolVar(&opts.charts, "charts", true, "write "+config.ChartsName)
	fs.BoolVar(&opts.export, "export", true, "write the CSV exports")
	fs.StringVar(&opts.allNull, "all-null", config.AllNullFail, "policy for columns without any value: fail or leave")
	fs.BoolVar(&opts.quiet, "quiet", false, "do not print inspection tables")
	fs.BoolVar(&opts.version, "version", false, "print version information and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })

	if fs.NArg() > 1 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args()[1:])
	}
	if fs.NArg() == 1 && opts.in == "" {
		opts.in = fs.Arg(0)
		opts.set["in"] = true
	}
	return opts, nil
}

// apply overrides cfg with the flags given explicitly on the command line
func (o *options) apply(cfg *config.Config) {
	if o.set["in"] {
		cfg.Pipeline.InputPath = o.in
	}
	if o.set["out"] {
		cfg.Pipeline.OutputDir = o.out
	}
	if o.set["all-null"] {
		cfg.Pipeline.AllNull = o.allNull
	}
	if o.set["report"] {
		cfg.Report.Profile = o.report
	}
	if o.set["charts"] {
		cfg.Report.Charts = o.charts
	}
	if o.set["export"] {
		cfg.Report.Export = o.export
	}
	if o.set["quiet"] {
		cfg.Report.Console = !o.quiet
	}
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err == flag.ErrHelp {
		return errors.ExitOK
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return errors.ExitUsage
	}
	if opts.version {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return errors.ExitOK
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return errors.ExitCode(err)
	}
	opts.apply(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return errors.ExitCode(err)
	}

	paths := config.NewPaths(cfg.Pipeline.OutputDir)
	if err := validation.NewFileValidator(nil).ValidateOutputDirectory(paths.OutputDir); err != nil {
		fmt.Fprintln(stderr, err)
		return errors.ExitCode(err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		fmt.Fprintln(stderr, err)
		return errors.ExitFailure
	}

	cfg.Logging.FilePath = cfg.LogFile()
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintln(stderr, "failed to initialize logger:", err)
		return errors.ExitFailure
	}
	defer infrastructure.CloseLogFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = infrastructure.EnsureTraceID(ctx)

	return execute(ctx, cfg, paths, logger, stdout)
}

// execute wires telemetry and sinks around one pipeline run
func execute(ctx context.Context, cfg *config.Config, paths *config.Paths, logger *slog.Logger, stdout io.Writer) int {
	handler := errors.NewErrorHandler(logger)

	otelCfg := &infrastructure.OTelConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: contracts.Version,
		TraceExporter:  cfg.Telemetry.TraceExporter,
		EnableMetrics:  cfg.Telemetry.Metrics,
	}
	if cfg.Telemetry.TraceExporter == "stdout" {
		otelCfg.TraceFile = paths.Trace
	}
	if cfg.Telemetry.Metrics {
		otelCfg.MetricsFile = paths.Metrics
	}

	providers, err := infrastructure.InitializeOTel(otelCfg, logger)
	if err != nil {
		return handler.Handle(ctx, errors.NewStorageError("failed to initialize telemetry", err))
	}
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			logger.Warn("telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	metrics, err := infrastructure.CreatePipelineMetrics(providers.Meter)
	if err != nil {
		return handler.Handle(ctx, errors.NewStorageError("failed to create metrics", err))
	}
	tracer := operations.NewStageTracer(providers.Tracer, metrics)

	input := cfg.Pipeline.InputPath
	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateCSVFile(input); err != nil {
		return handler.Handle(ctx, err)
	}
	if err := validator.ValidateHeader(input, domain.SourceColumns); err != nil {
		return handler.Handle(ctx, err)
	}

	policy, err := dataprocessing.ParseAllNullPolicy(cfg.Pipeline.AllNull)
	if err != nil {
		return handler.Handle(ctx, err)
	}

	logger.InfoContext(ctx, "starting coaster EDA run",
		slog.String("version", contracts.Version),
		slog.String("input", input),
		slog.String("output_dir", paths.OutputDir),
		slog.String("all_null", policy.String()))

	pipeline := dataprocessing.NewPipeline(logger, tracer, dataprocessing.Options{
		AllNull: policy,
		Sinks:   sinks(cfg, paths, logger, stdout),
	})
	result, err := pipeline.Run(ctx, input)
	if err != nil {
		return handler.Handle(ctx, err)
	}

	for _, a := range result.Artifacts {
		logger.InfoContext(ctx, "artifact written",
			slog.String("name", a.Name),
			slog.String("format", string(a.Format)),
			slog.String("path", a.Path))
	}
	logger.InfoContext(ctx, "run complete",
		slog.Int("rows", result.Cleaned.Len()),
		slog.Int("artifacts", len(result.Artifacts)),
		slog.Duration("duration", result.State.Duration()))
	return errors.ExitOK
}

// sinks returns the enabled outputs in write order
func sinks(cfg *config.Config, paths *config.Paths, logger *slog.Logger, stdout io.Writer) []dataprocessing.Sink {
	var out []dataprocessing.Sink
	if cfg.Report.Console {
		out = append(out, report.NewConsole(stdout))
	}
	if cfg.Report.Export {
		out = append(out, exporter.NewTableExporter(paths, cfg.Report.WriteBOM, logger))
	}
	if cfg.Report.Charts {
		out = append(out, report.NewChartWorkbook(paths.Charts, report.ChartOptions{
			HistogramBins: cfg.Pipeline.HistogramBins,
			TopN:          cfg.Pipeline.TopN,
		}, logger))
	}
	if cfg.Report.Profile {
		out = append(out, report.NewProfiler(paths.Profile, cfg.Report.Title, logger))
	}
	return out
}
