package errors

import (
	"context"
	"log/slog"
	"sort"
)

// Process exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// ErrorHandler logs fatal errors once at the top level and maps them to an
// exit code.
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{
		logger: logger.With(slog.String("component", "error_handler")),
	}
}

// Handle logs err and returns the exit code for it. A nil error yields ExitOK.
func (h *ErrorHandler) Handle(ctx context.Context, err error) int {
	if err == nil {
		return ExitOK
	}

	attrs := []any{
		slog.String("error", err.Error()),
	}
	if appErr, ok := As(err); ok {
		attrs = append(attrs, slog.String("error_type", string(appErr.Type)))
		keys := make([]string, 0, len(appErr.Context))
		for k := range appErr.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			attrs = append(attrs, slog.Any(k, appErr.Context[k]))
		}
	}
	h.logger.ErrorContext(ctx, "run failed", attrs...)

	return ExitCode(err)
}

// ExitCode maps an error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if TypeOf(err) == ErrTypeConfig {
		return ExitUsage
	}
	return ExitFailure
}
