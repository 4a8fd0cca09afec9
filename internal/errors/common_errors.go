package errors

import (
	"fmt"
	"strings"
)

// NewIOError creates an error for a missing or unreadable file
func NewIOError(path string, cause error) *AppError {
	return NewAppError(ErrTypeIO, fmt.Sprintf("cannot read %s", path), cause).
		WithContext("path", path)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewSchemaError creates an error for absent or conflicting columns
func NewSchemaError(message string, columns []string) *AppError {
	if len(columns) > 0 {
		message = fmt.Sprintf("%s: %s", message, strings.Join(columns, ", "))
	}
	return NewAppError(ErrTypeSchema, message, nil).
		WithContext("columns", columns)
}

// NewImputationError creates an error for a column whose fill statistic is undefined
func NewImputationError(column, statistic string) *AppError {
	return NewAppError(ErrTypeImputation,
		fmt.Sprintf("cannot compute %s of column %q: every value is missing", statistic, column), nil).
		WithContext("column", column).
		WithContext("statistic", statistic)
}

// NewValueError creates an error for a cell that violates a value constraint
func NewValueError(message string, cause error) *AppError {
	return NewAppError(ErrTypeValue, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewStorageError creates an error for a failed artifact write
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}
