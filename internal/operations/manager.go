package operations

import (
	"context"
	"fmt"
	"log/slog"
)

// Manager executes steps in order
type Manager struct {
	logger *slog.Logger
	tracer *StageTracer
}

// NewManager creates a manager. Nil arguments fall back to the default logger
// and a no-op tracer.
func NewManager(logger *slog.Logger, tracer *StageTracer) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = NewStageTracer(nil, nil)
	}
	return &Manager{logger: logger, tracer: tracer}
}

// Execute runs steps sequentially under operationID. It stops at the first
// failing step and returns that step's error wrapped with the step ID. The
// returned state is never nil.
func (m *Manager) Execute(ctx context.Context, operationID string, steps []Step) (*OperationState, error) {
	state := NewOperationState(operationID)

	seen := make(map[string]bool, len(steps))
	for _, step := range steps {
		if seen[step.ID()] {
			err := fmt.Errorf("duplicate step id %q", step.ID())
			state.Fail(err)
			return state, err
		}
		seen[step.ID()] = true
	}

	ctx, span := m.tracer.TraceOperation(ctx, operationID)
	defer span.End()

	state.Start()
	m.logOperationStart(ctx, operationID, len(steps))

	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			m.skipRemaining(state, steps[i:], "operation cancelled")
			state.Cancel(err)
			m.logOperationComplete(ctx, operationID, state.Duration(), state.GetStatus())
			return state, fmt.Errorf("before step %s: %w", step.ID(), err)
		}

		if err := m.executeStep(ctx, state, step); err != nil {
			wrapped := fmt.Errorf("step %s: %w", step.ID(), err)
			m.skipRemaining(state, steps[i+1:], fmt.Sprintf("step %s failed", step.ID()))
			state.Fail(wrapped)
			m.logOperationComplete(ctx, operationID, state.Duration(), state.GetStatus())
			return state, wrapped
		}
	}

	state.Complete()
	m.logOperationComplete(ctx, operationID, state.Duration(), state.GetStatus())
	return state, nil
}

// executeStep runs one step inside its own span
func (m *Manager) executeStep(ctx context.Context, opState *OperationState, step Step) error {
	stepState := NewStepState(step.ID(), step.Name())
	opState.addStep(stepState)

	ctx, span := m.tracer.TraceStage(ctx, opState.ID, step.ID())
	defer span.End()

	stepState.Start()
	m.logStageStart(ctx, opState.ID, step)

	err := step.Execute(ctx, stepState)
	if err != nil {
		stepState.Fail(err)
		m.tracer.RecordStageCompletion(ctx, span, step.ID(), stepState.GetRows(), stepState.Duration(), err)
		m.logStageError(ctx, opState.ID, stepState, err)
		return err
	}

	stepState.Complete()
	m.tracer.RecordStageCompletion(ctx, span, step.ID(), stepState.GetRows(), stepState.Duration(), nil)
	m.logStageComplete(ctx, opState.ID, stepState)
	return nil
}

// skipRemaining records steps that never ran
func (m *Manager) skipRemaining(state *OperationState, steps []Step, reason string) {
	for _, step := range steps {
		s := NewStepState(step.ID(), step.Name())
		s.Skip(reason)
		state.addStep(s)
	}
}
