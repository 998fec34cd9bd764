package common

import (
	"errors"
	"fmt"
)

// ErrorKind classifies where in the pipeline a document-level failure
// happened. The orchestrator resolves every kind to a safe default (empty
// text or an empty record) but records the kind so callers can inspect it.
type ErrorKind string

const (
	ClassificationFailed ErrorKind = "CLASSIFICATION_FAILED"
	ExtractionFailed     ErrorKind = "EXTRACTION_FAILED"
	OracleFailed         ErrorKind = "ORACLE_FAILED"
	ParseFailed          ErrorKind = "PARSE_FAILED"
)

// StageError wraps an underlying error with the pipeline stage it came from.
type StageError struct {
	Kind ErrorKind
	Err  error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError wraps err with a stage kind. Returns nil for a nil err.
func NewStageError(kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Kind: kind, Err: err}
}

// KindOf extracts the stage kind from an error chain, or "" if none.
func KindOf(err error) ErrorKind {
	var se *StageError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
)

func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
