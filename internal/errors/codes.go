package errors

import (
	"fmt"
)

// ErrorCode represents a specific error type for insight operations.
type ErrorCode string

const (
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeDimensionMismatch indicates an embedding of the wrong length
	// was presented to the vector index.
	ErrCodeDimensionMismatch ErrorCode = "DIMENSION_MISMATCH"
	// ErrCodeModelUnavailable indicates a scoring or embedding model is not
	// available. Callers are expected to degrade, not fail.
	ErrCodeModelUnavailable ErrorCode = "MODEL_UNAVAILABLE"
	// ErrCodeExternalServiceFailure indicates a best-effort external call
	// (generative coaching) failed or timed out.
	ErrCodeExternalServiceFailure ErrorCode = "EXTERNAL_SERVICE_FAILURE"
	// ErrCodeNotFound indicates the requested record does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeTimeout indicates the operation timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// InsightError represents a structured error for insight operations.
type InsightError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *InsightError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *InsightError) Unwrap() error {
	return e.Cause
}

// Convenience constructors for common error types.

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *InsightError {
	return &InsightError{Code: ErrCodeInvalidArgument, Message: msg}
}

// DimensionMismatch creates a dimension mismatch error.
func DimensionMismatch(want, got int) *InsightError {
	return &InsightError{
		Code:    ErrCodeDimensionMismatch,
		Message: fmt.Sprintf("expected vector dimension %d, got %d", want, got),
	}
}

// ModelUnavailable creates a model unavailable error.
func ModelUnavailable(msg string) *InsightError {
	return &InsightError{Code: ErrCodeModelUnavailable, Message: msg}
}

// ExternalServiceFailure creates an external service failure error.
func ExternalServiceFailure(msg string, cause error) *InsightError {
	return &InsightError{Code: ErrCodeExternalServiceFailure, Message: msg, Cause: cause}
}

// NotFound creates a not found error.
func NotFound(kind, id string) *InsightError {
	return &InsightError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %s", kind, id),
	}
}

// Timeout creates a timeout error.
func Timeout(msg string) *InsightError {
	return &InsightError{Code: ErrCodeTimeout, Message: msg}
}

// Wrap wraps an existing error with a code and message.
func Wrap(cause error, code ErrorCode, msg string) *InsightError {
	return &InsightError{Code: code, Message: msg, Cause: cause}
}

// IsCode checks if an error is of a specific code.
func IsCode(err error, code ErrorCode) bool {
	if insErr, ok := err.(*InsightError); ok {
		return insErr.Code == code
	}
	return false
}

// GetCodeFromError extracts the error code from any error.
// Returns the provided default code if the error is not an InsightError.
func GetCodeFromError(err error, defaultCode ErrorCode) ErrorCode {
	if insErr, ok := err.(*InsightError); ok {
		return insErr.Code
	}
	return defaultCode
}
