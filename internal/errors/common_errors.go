package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeSchema           ErrorType = "SCHEMA"
	ErrTypeParsing          ErrorType = "PARSING"
	ErrTypeInsufficientData ErrorType = "INSUFFICIENT_DATA"
	ErrTypeArtifact         ErrorType = "ARTIFACT"
	ErrTypeStorage          ErrorType = "STORAGE"
	ErrTypeConfig           ErrorType = "CONFIG"
)

// Sentinel errors for the pipeline failure taxonomy.
// AppError values wrap one of these so callers can match with errors.Is.
var (
	// ErrSchemaMismatch: a raw source lacks an expected key or measurement column
	ErrSchemaMismatch = stderrors.New("schema mismatch")
	// ErrUnparsableValue: a measurement cell could not be coerced to a number
	ErrUnparsableValue = stderrors.New("unparsable value")
	// ErrNoDataForKey: no row exists for the requested (area, year)
	ErrNoDataForKey = stderrors.New("no data for key")
	// ErrInsufficientTrainingData: the training table is empty or too small to split
	ErrInsufficientTrainingData = stderrors.New("insufficient training data")
	// ErrArtifactMismatch: feature lists of a row and an artifact disagree
	ErrArtifactMismatch = stderrors.New("artifact feature mismatch")
	// ErrArtifactCorrupt: a persisted bundle is malformed or partial
	ErrArtifactCorrupt = stderrors.New("artifact corrupt")
	// ErrArtifactNotFound: no artifact has been persisted or loaded
	ErrArtifactNotFound = stderrors.New("artifact not found")
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewSchemaError reports a source that lacks a required column
func NewSchemaError(source, column string) *AppError {
	return NewAppError(ErrTypeSchema,
		fmt.Sprintf("source %q is missing column %q", source, column),
		ErrSchemaMismatch).
		WithContext("source", source).
		WithContext("column", column)
}

// NewInvalidKeyError reports a key cell (area or year) that cannot be used
func NewInvalidKeyError(source string, row int, column, value string) *AppError {
	return NewAppError(ErrTypeSchema,
		fmt.Sprintf("source %q row %d: invalid %s value %q", source, row, column, value),
		ErrSchemaMismatch).
		WithContext("source", source).
		WithContext("row", row)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewInsufficientDataError reports a training table that cannot be fitted
func NewInsufficientDataError(rows int, reason string) *AppError {
	return NewAppError(ErrTypeInsufficientData,
		fmt.Sprintf("%d training rows: %s", rows, reason),
		ErrInsufficientTrainingData).
		WithContext("rows", rows)
}

// NewArtifactError reports a malformed or partial artifact bundle
func NewArtifactError(message string, cause error) *AppError {
	if cause == nil {
		cause = ErrArtifactCorrupt
	} else if !stderrors.Is(cause, ErrArtifactCorrupt) && !stderrors.Is(cause, ErrArtifactNotFound) {
		cause = fmt.Errorf("%w: %v", ErrArtifactCorrupt, cause)
	}
	return NewAppError(ErrTypeArtifact, message, cause)
}

// NewArtifactNotFoundError reports a missing artifact
func NewArtifactNotFoundError(path string) *AppError {
	return NewAppError(ErrTypeArtifact, fmt.Sprintf("no artifact at %s", path), ErrArtifactNotFound).
		WithContext("path", path)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// IsType reports whether err is an AppError of the given type
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}
