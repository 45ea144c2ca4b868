package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code       string // Machine-readable error code
	Message    string // Human-readable error message
	StatusCode int    // HTTP status code
	Err        error  // Underlying error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (underlying: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(code, message string, statusCode int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Err:        err,
	}
}

// AsAppError extracts an AppError from an error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsCode reports whether err carries the given application error code
func IsCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// Error codes surfaced by the quoting and selection engines
const (
	CodeValidation               = "VALIDATION_ERROR"
	CodeLockNotFound             = "LOCK_NOT_FOUND"
	CodeNoProcessorsAvailable    = "NO_PROCESSORS_AVAILABLE"
	CodeNoProcessorsMeetCriteria = "NO_PROCESSORS_MEET_CRITERIA"
	CodeProcessorNotFound        = "PROCESSOR_NOT_FOUND"
	CodeProcessorUnavailable     = "PROCESSOR_UNAVAILABLE"
	CodeAllProcessorsFailed      = "ALL_PROCESSORS_FAILED"
)

// Common error constructors

// ErrValidation creates a validation error for a specific field
func ErrValidation(field, reason string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    fmt.Sprintf("Validation failed for field '%s': %s", field, reason),
		StatusCode: http.StatusBadRequest,
		Err:        nil,
	}
}

// ErrLockNotFound creates an error for a missing or expired rate lock.
// Expired locks are reported identically to never-existing ones.
func ErrLockNotFound(lockID string) *AppError {
	return &AppError{
		Code:       CodeLockNotFound,
		Message:    fmt.Sprintf("Rate lock '%s' not found or expired", lockID),
		StatusCode: http.StatusNotFound,
		Err:        nil,
	}
}

// ErrNoProcessorsAvailable signals that no registered rail covers the location
func ErrNoProcessorsAvailable(country, currency string) *AppError {
	return &AppError{
		Code:       CodeNoProcessorsAvailable,
		Message:    fmt.Sprintf("No payment processors available for %s/%s", country, currency),
		StatusCode: http.StatusServiceUnavailable,
		Err:        nil,
	}
}

// ErrNoProcessorsMeetCriteria signals that the caller's filters emptied a
// non-empty candidate set; the caller must relax criteria or fail the transfer
func ErrNoProcessorsMeetCriteria(reason string) *AppError {
	return &AppError{
		Code:       CodeNoProcessorsMeetCriteria,
		Message:    fmt.Sprintf("No payment processors meet the given criteria: %s", reason),
		StatusCode: http.StatusUnprocessableEntity,
		Err:        nil,
	}
}

// ErrProcessorNotFound creates an error for an unknown processor id
func ErrProcessorNotFound(processorID string) *AppError {
	return &AppError{
		Code:       CodeProcessorNotFound,
		Message:    fmt.Sprintf("Payment processor '%s' is not registered", processorID),
		StatusCode: http.StatusNotFound,
		Err:        nil,
	}
}

// ErrProcessorUnavailable creates an error for a processor whose liveness check failed
func ErrProcessorUnavailable(processorID string) *AppError {
	return &AppError{
		Code:       CodeProcessorUnavailable,
		Message:    fmt.Sprintf("Payment processor '%s' is currently unavailable", processorID),
		StatusCode: http.StatusServiceUnavailable,
		Err:        nil,
	}
}

// ErrAllProcessorsFailed creates the terminal error for a fallback walk that
// exhausted every candidate. The attempted ids and the last failure are kept
// for diagnostics.
func ErrAllProcessorsFailed(attempted []string, lastErr error) *AppError {
	return &AppError{
		Code:       CodeAllProcessorsFailed,
		Message:    fmt.Sprintf("All payment processors failed (attempted: %s)", strings.Join(attempted, ", ")),
		StatusCode: http.StatusBadGateway,
		Err:        lastErr,
	}
}

// ErrInternalServer creates an internal server error
func ErrInternalServer(message string, err error) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}

// ErrDatabaseOperation creates a database operation error
func ErrDatabaseOperation(operation string, err error) *AppError {
	return &AppError{
		Code:       "DATABASE_ERROR",
		Message:    fmt.Sprintf("Database operation '%s' failed", operation),
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}

// ErrQueueOperation creates a queue operation error
func ErrQueueOperation(operation string, err error) *AppError {
	return &AppError{
		Code:       "QUEUE_ERROR",
		Message:    fmt.Sprintf("Queue operation '%s' failed", operation),
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}

// ErrTransferNotFound creates a transfer record not found error
func ErrTransferNotFound(transferID string) *AppError {
	return &AppError{
		Code:       "TRANSFER_NOT_FOUND",
		Message:    fmt.Sprintf("Transfer '%s' not found", transferID),
		StatusCode: http.StatusNotFound,
		Err:        nil,
	}
}

// ErrorResponse represents an error response structure
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error details for API responses
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ToErrorResponse converts an AppError to an ErrorResponse
func ToErrorResponse(err *AppError) ErrorResponse {
	return ErrorResponse{
		Error: ErrorDetail{
			Code:    err.Code,
			Message: err.Message,
		},
	}
}
