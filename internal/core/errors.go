// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Configuration errors
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrModeInvalid   = &Error{Code: "MODE_INVALID", Message: "trading mode missing or invalid"}

	// Order validation errors
	ErrOrderInvalid = &Error{Code: "ORDER_INVALID", Message: "order specification invalid"}

	// Upstream errors
	ErrRemote    = &Error{Code: "REMOTE_ERROR", Message: "brokerage returned an error"}
	ErrTransport = &Error{Code: "TRANSPORT_FAILED", Message: "request to brokerage failed"}

	// Data errors
	ErrMalformedData = &Error{Code: "MALFORMED_DATA", Message: "upstream payload malformed"}
	ErrNotFound      = &Error{Code: "NOT_FOUND", Message: "entity not found"}

	// Host-facing auth errors
	ErrUnauthorized = &Error{Code: "UNAUTHORIZED", Message: "invalid or missing API key"}
)
