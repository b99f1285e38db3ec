package common

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	ErrCancelled          = errors.New("request cancelled by client")
	ErrMalformedResponse  = errors.New("failed to parse analysis data")
	ErrEmptyAnalysis      = errors.New("no transactions found")
	ErrIncompleteAnalysis = errors.New("analysis summary is missing")
	ErrAnalysisInFlight   = errors.New("an analysis is already in progress")
	ErrStorageUnavailable = errors.New("durable storage is unavailable")
	ErrNotFound           = errors.New("not found")
)

// ValidationError rejects an uploaded file before it is sent anywhere.
// Constraint names the violated rule so callers can surface a message per
// constraint.
type ValidationError struct {
	Constraint string
	Message    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Constraint, e.Message)
}

func NewValidationError(constraint, format string, args ...interface{}) *ValidationError {
	return &ValidationError{
		Constraint: constraint,
		Message:    fmt.Sprintf(format, args...),
	}
}

// RequestError carries the upstream HTTP status and, when the server provided
// one, its error message verbatim.
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}
