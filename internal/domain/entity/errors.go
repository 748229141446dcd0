package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain layer operations.
var (
	// ErrNotFound indicates that a requested entity was not found
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrValidationFailed indicates that validation checks have failed
	ErrValidationFailed = errors.New("validation failed")

	// ErrNetwork indicates that the upstream could not be reached
	ErrNetwork = errors.New("network unavailable")

	// ErrNoData indicates that the upstream answered without a usable body
	ErrNoData = errors.New("no data")
)

// ValidationError represents a validation error with detailed field information.
// It implements the error interface and provides context about which field failed validation.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// HTTPStatusError is returned when the upstream answers with a non-success status.
// Code and Message carry the upstream error envelope when it could be decoded.
type HTTPStatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *HTTPStatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("upstream http %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("upstream http %d", e.StatusCode)
}

// IsServerError reports whether the status is in the 5xx range.
func (e *HTTPStatusError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// CodeMaximumResultsReached is the upstream error code sent once a client
// pages past the last result the API is willing to return.
const CodeMaximumResultsReached = "maximumResultsReached"

// IsEndOfResults reports whether err signals that no further pages exist.
func IsEndOfResults(err error) bool {
	var httpErr *HTTPStatusError
	return errors.As(err, &httpErr) && httpErr.Code == CodeMaximumResultsReached
}

// User-facing messages returned by UserMessage.
const (
	MsgNetwork = "network error: check your connection"
	MsgServer  = "server error: try again later"
	MsgNoData  = "no data available"
	MsgUnknown = "an error occurred"
)

// UserMessage collapses err into a single human-readable message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var httpErr *HTTPStatusError
	switch {
	case errors.Is(err, ErrNetwork):
		return MsgNetwork
	case errors.As(err, &httpErr):
		if httpErr.IsServerError() {
			return MsgServer
		}
		return fmt.Sprintf("http error code: %d", httpErr.StatusCode)
	case errors.Is(err, ErrNoData):
		return MsgNoData
	default:
		return MsgUnknown
	}
}
