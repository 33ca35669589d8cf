// ============================================================================
// internal/apperr/apperr.go
// Typed service errors with stable codes, mapped to HTTP in the gateway
// ============================================================================

package apperr

import (
	"errors"
	"fmt"
)

// Code identifies a class of service failure independent of transport.
type Code string

const (
	CodeInvalidArgument   Code = "INVALID_ARGUMENT"
	CodeInvalidWeight     Code = "INVALID_WEIGHT"
	CodeInvalidScore      Code = "INVALID_SCORE"
	CodeInvalidTimeRange  Code = "INVALID_TIME_RANGE"
	CodeWeightSumExceeded Code = "WEIGHT_SUM_EXCEEDED"
	CodeScheduleConflict  Code = "SCHEDULE_CONFLICT"
	CodeAccountLocked     Code = "ACCOUNT_LOCKED"
	CodeUnauthorized      Code = "UNAUTHORIZED"
	CodeForbidden         Code = "FORBIDDEN"
	CodeNotFound          Code = "NOT_FOUND"
	CodeAlreadyExists     Code = "ALREADY_EXISTS"
	CodeInternal          Code = "INTERNAL"
)

// Error carries a stable code and a user-facing message. Unexpected backend
// failures keep their cause in Err but surface only an opaque message.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a typed error with a formatted message
func New(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Internal wraps an unexpected backend error with an opaque message
func Internal(err error) *Error {
	return &Error{Code: CodeInternal, Message: "internal server error", Err: err}
}

// CodeOf extracts the code from an error chain, defaulting to INTERNAL
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// MessageOf extracts the user-facing message from an error chain.
// Untyped errors stay opaque.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}

// Is reports whether the error chain carries the given code
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}
