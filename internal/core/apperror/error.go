// Package apperror provides structured error handling following RFC 7807 Problem Details.
// All business errors must use AppError for consistent API responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	// Infrastructure errors (5xx)
	CodeInternal  = "INTERNAL_ERROR"
	CodeTransport = "TRANSPORT_ERROR"

	// Validation errors (400)
	CodeValidation   = "VALIDATION_ERROR"
	CodeInvalidInput = "INVALID_INPUT"

	// Business rule violations (422)
	CodeStockExceeded = "STOCK_EXCEEDED"

	// Not found (404)
	CodeNotFound       = "NOT_FOUND"
	CodeSequenceAbsent = "SEQUENCE_ABSENT"

	// Conflict (409)
	CodeConflict          = "CONFLICT"
	CodeInvalidTransition = "INVALID_STATE_TRANSITION"
)

// AppError is the standard error type for the platform.
// It implements error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (field errors, quantities, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions for common errors ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewTransport wraps a network or non-2xx backend failure (502).
func NewTransport(op string, err error) *AppError {
	return &AppError{
		Code:       CodeTransport,
		Message:    fmt.Sprintf("backend call %s failed", op),
		HTTPStatus: http.StatusBadGateway,
		Details:    map[string]any{"operation": op},
		Err:        err,
	}
}

// NewSequenceAbsent reports that the server has no sequence yet for a document type.
// Not a true failure: callers seed the first code of the year.
func NewSequenceAbsent(documentType string) *AppError {
	return &AppError{
		Code:       CodeSequenceAbsent,
		Message:    "No sequence exists yet for this document type",
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"document_type": documentType},
	}
}

// NewStockExceeded creates a recoverable stock ceiling violation (422).
func NewStockExceeded(lineID string, requested int64, ceiling string) *AppError {
	return &AppError{
		Code:       CodeStockExceeded,
		Message:    "Quantity exceeds available stock",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"line_id":   lineID,
			"requested": requested,
			"available": ceiling,
		},
	}
}

// NewInvalidTransition is returned when a document flow is asked to move along a forbidden edge.
func NewInvalidTransition(from, to string) *AppError {
	return &AppError{
		Code:       CodeInvalidTransition,
		Message:    fmt.Sprintf("cannot move from %s to %s", from, to),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"from": from, "to": to},
	}
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewConflict creates a conflict error (409)
func NewConflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// --- Helper functions ---

// IsAppError checks if error is AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

func hasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool { return hasCode(err, CodeNotFound) }

// IsTransport checks if error is CodeTransport
func IsTransport(err error) bool { return hasCode(err, CodeTransport) }

// IsSequenceAbsent checks if error is CodeSequenceAbsent
func IsSequenceAbsent(err error) bool { return hasCode(err, CodeSequenceAbsent) }

// IsValidation checks if error is CodeValidation
func IsValidation(err error) bool { return hasCode(err, CodeValidation) }

// IsConflict checks if error is CodeConflict
func IsConflict(err error) bool { return hasCode(err, CodeConflict) }

// IsStockExceeded checks if error is CodeStockExceeded
func IsStockExceeded(err error) bool { return hasCode(err, CodeStockExceeded) }
