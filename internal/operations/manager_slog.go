package operations

import (
	"context"
	"log/slog"
	"time"
)

func (m *Manager) logOperationStart(ctx context.Context, operationID string, steps int) {
	m.logger.InfoContext(ctx, "operation_start",
		slog.String("operation_id", operationID),
		slog.Int("steps", steps))
}

func (m *Manager) logOperationComplete(ctx context.Context, operationID string, duration time.Duration, status OperationStatus) {
	m.logger.InfoContext(ctx, "operation_complete",
		slog.String("operation_id", operationID),
		slog.String("status", string(status)),
		slog.Duration("duration", duration))
}

func (m *Manager) logStageStart(ctx context.Context, operationID string, step Step) {
	m.logger.InfoContext(ctx, "stage_start",
		slog.String("operation_id", operationID),
		slog.String("step", step.ID()),
		slog.String("name", step.Name()))
}

func (m *Manager) logStageComplete(ctx context.Context, operationID string, state *StepState) {
	m.logger.InfoContext(ctx, "stage_complete",
		slog.String("operation_id", operationID),
		slog.String("step", state.ID),
		slog.Int("rows", state.GetRows()),
		slog.Duration("duration", state.Duration()))
}

func (m *Manager) logStageError(ctx context.Context, operationID string, state *StepState, err error) {
	m.logger.ErrorContext(ctx, "stage_error",
		slog.String("operation_id", operationID),
		slog.String("step", state.ID),
		slog.String("error", err.Error()),
		slog.Duration("duration", state.Duration()))
}
