// Package operations runs an ordered list of named steps and records the
// outcome of each one.
//
// The Manager executes steps strictly in sequence. Every step gets its own
// StepState, a span and a log line on start and completion; the first failing
// step stops the run and the remaining steps are marked skipped. Cancellation
// is checked between steps only.
//
//	manager := operations.NewManager(logger, operations.NewStageTracer(tracer, metrics))
//	state, err := manager.Execute(ctx, runID, []operations.Step{
//	    operations.NewStep("load", "Load CSV", loadFn),
//	    operations.NewStep("impute", "Impute missing values", imputeFn),
//	})
package operations
