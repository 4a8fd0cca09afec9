package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"

	"coastereda/internal/infrastructure"
	"coastereda/internal/operations"
	"coastereda/internal/table"
	"coastereda/pkg/contracts/domain"
)

// Step IDs, also used as the stage label on metrics
const (
	StepLoad       = "load"
	StepPrepare    = "prepare"
	StepImpute     = "impute"
	StepDedupe     = "deduplicate"
	StepAggregate  = "aggregate"
	StepDecade     = "decade"
	StepDecadeMean = "decade_averages"
)

// Sink consumes a finished Result, typically by writing files. Sinks run after
// the cleaning steps, in registration order, and must not modify the Result.
type Sink interface {
	Name() string
	Write(ctx context.Context, result *Result) ([]domain.Artifact, error)
}

// Options configures a Pipeline
type Options struct {
	AllNull AllNullPolicy
	Sinks   []Sink
}

// Result holds every table produced by a run. Each field is an independent
// immutable table.
type Result struct {
	RunID string

	Raw      *table.Table
	Prepared *table.Table
	Imputed  *table.Table
	// Cleaned is the deduplicated table with the Decade column attached
	Cleaned *table.Table

	Imputation ImputationReport
	Dedup      DedupStats

	GroupedByCoaster *table.Table
	KeepFirst        *table.Table
	KeepLast         *table.Table
	SpeedByType      *table.Table
	AvgByDecade      *table.Table

	Artifacts []domain.Artifact
	State     *operations.OperationState
}

// NamedTable pairs an exported view with its name
type NamedTable struct {
	Name  string
	Table *table.Table
}

// Views returns the exportable tables in a fixed order
func (r *Result) Views() []NamedTable {
	return []NamedTable{
		{Name: "cleaned", Table: r.Cleaned},
		{Name: "grouped_by_coaster", Table: r.GroupedByCoaster},
		{Name: "keep_first", Table: r.KeepFirst},
		{Name: "keep_last", Table: r.KeepLast},
		{Name: "speed_by_type", Table: r.SpeedByType},
		{Name: "avg_by_decade", Table: r.AvgByDecade},
	}
}

// Pipeline runs the cleaning stages over one input file
type Pipeline struct {
	logger  *slog.Logger
	tracer  *operations.StageTracer
	manager *operations.Manager
	opts    Options
}

// NewPipeline creates a pipeline. A nil tracer disables spans and metrics.
func NewPipeline(logger *slog.Logger, tracer *operations.StageTracer, opts Options) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	logger = infrastructure.WithComponent(logger, "pipeline")
	if tracer == nil {
		tracer = operations.NewStageTracer(nil, nil)
	}
	return &Pipeline{
		logger:  logger,
		tracer:  tracer,
		manager: operations.NewManager(logger, tracer),
		opts:    opts,
	}
}

// Run loads the CSV at path and executes every stage. On failure the partial
// Result is returned along with the error so callers can inspect State.
func (p *Pipeline) Run(ctx context.Context, path string) (*Result, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	result := &Result{RunID: infrastructure.GetTraceID(ctx)}

	steps := []operations.Step{
		operations.NewStep(StepLoad, "Load CSV", func(ctx context.Context, s *operations.StepState) error {
			raw, err := LoadFile(ctx, path)
			if err != nil {
				return err
			}
			result.Raw = raw
			s.SetRows(raw.Len())
			s.SetMetadata("columns", raw.Width())
			return nil
		}),
		operations.NewStep(StepPrepare, "Select and rename columns", func(ctx context.Context, s *operations.StepState) error {
			prepared, err := Prepare(result.Raw)
			if err != nil {
				return err
			}
			result.Prepared = prepared
			s.SetRows(prepared.Len())
			p.logNullCounts(ctx, prepared)
			return nil
		}),
		operations.NewStep(StepImpute, "Impute missing values", func(ctx context.Context, s *operations.StepState) error {
			imputed, report, err := NewImputer(p.opts.AllNull).Impute(result.Prepared)
			if err != nil {
				return err
			}
			result.Imputed = imputed
			result.Imputation = report
			s.SetRows(imputed.Len())
			s.SetMetadata("filled", report.TotalFilled())
			p.logImputation(ctx, report)
			return nil
		}),
		operations.NewStep(StepDedupe, "Remove duplicate records", func(ctx context.Context, s *operations.StepState) error {
			deduped, counts, err := Deduplicate(result.Imputed, domain.CompositeKey, domain.ColYearIntroduced)
			if err != nil {
				return err
			}
			result.Cleaned = deduped
			result.Dedup = counts
			s.SetRows(deduped.Len())
			s.SetMetadata("removed", counts.Removed())
			p.tracer.Metrics().RecordDuplicatesRemoved(ctx, counts.Removed())
			p.logger.InfoContext(ctx, "duplicates removed",
				slog.Int("input", counts.Input),
				slog.Int("after_stage_a", counts.AfterStageA),
				slog.Int("after_stage_b", counts.AfterStageB))
			return nil
		}),
		operations.NewStep(StepAggregate, "Group and summarise", func(ctx context.Context, s *operations.StepState) error {
			return p.aggregate(result, s)
		}),
		operations.NewStep(StepDecade, "Derive decade", func(ctx context.Context, s *operations.StepState) error {
			withDecade, err := AddDecadeColumn(result.Cleaned, domain.ColYearIntroduced, domain.ColDecade)
			if err != nil {
				return err
			}
			result.Cleaned = withDecade
			s.SetRows(withDecade.Len())
			return nil
		}),
		operations.NewStep(StepDecadeMean, "Average by decade", func(ctx context.Context, s *operations.StepState) error {
			avg, err := AverageByDecade(result.Cleaned)
			if err != nil {
				return err
			}
			result.AvgByDecade = avg
			s.SetRows(avg.Len())
			return nil
		}),
	}

	for _, sink := range p.opts.Sinks {
		sink := sink
		steps = append(steps, operations.NewStep("report."+sink.Name(), "Write "+sink.Name(), func(ctx context.Context, s *operations.StepState) error {
			artifacts, err := sink.Write(ctx, result)
			if err != nil {
				return err
			}
			result.Artifacts = append(result.Artifacts, artifacts...)
			s.SetRows(len(artifacts))
			return nil
		}))
	}

	state, err := p.manager.Execute(ctx, result.RunID, steps)
	result.State = state
	if err != nil {
		return result, fmt.Errorf("pipeline run %s: %w", result.RunID, err)
	}
	return result, nil
}

func (p *Pipeline) aggregate(result *Result, s *operations.StepState) error {
	var err error
	if result.GroupedByCoaster, err = GroupByCoaster(result.Cleaned); err != nil {
		return fmt.Errorf("group by coaster: %w", err)
	}
	if result.KeepFirst, err = KeepFirst(result.Cleaned); err != nil {
		return fmt.Errorf("keep first: %w", err)
	}
	if result.KeepLast, err = KeepLast(result.Cleaned); err != nil {
		return fmt.Errorf("keep last: %w", err)
	}
	if result.SpeedByType, err = MeanSpeedByType(result.Cleaned); err != nil {
		return fmt.Errorf("mean speed by type: %w", err)
	}
	s.SetRows(result.GroupedByCoaster.Len())
	return nil
}

func (p *Pipeline) logNullCounts(ctx context.Context, t *table.Table) {
	for _, nc := range NullCounts(t) {
		if nc.Missing == 0 {
			continue
		}
		p.logger.DebugContext(ctx, "missing values",
			slog.String("column", nc.Column),
			slog.Int("missing", nc.Missing),
			slog.Float64("percent", nc.Percent))
	}
}

func (p *Pipeline) logImputation(ctx context.Context, report ImputationReport) {
	for _, c := range report.Columns {
		if c.AllNull {
			p.logger.WarnContext(ctx, "column left unfilled, no observed values",
				slog.String("column", c.Column),
				slog.String("statistic", c.Statistic))
			continue
		}
		p.tracer.Metrics().RecordImputed(ctx, c.Column, c.Filled)
		if c.Filled == 0 {
			continue
		}
		p.logger.InfoContext(ctx, "column imputed",
			slog.String("column", c.Column),
			slog.String("statistic", c.Statistic),
			slog.String("fill", c.Fill.String()),
			slog.Int("filled", c.Filled))
	}
}
