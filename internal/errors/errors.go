// Package errors provides the domain error kinds returned by the ICGDB catalog.
//
// Usage:
//
//	// In services - return typed errors
//	if taken {
//	    return errors.NameConflict("Name already taken!")
//	}
//
//	// In callers - check with errors.Is against a sentinel
//	if errors.Is(err, errors.ErrProtectedSentinel) {
//	    ...
//	}
//
//	// Or switch on the Code
//	var domainErr *errors.Error
//	if errors.As(err, &domainErr) {
//	    switch domainErr.Code {
//	    case errors.CodeNotFound:
//	    case errors.CodeUnauthorized:
//	    }
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeNotFound          Code = "NOT_FOUND"
	CodeUnauthorized      Code = "UNAUTHORIZED"
	CodeNameConflict      Code = "NAME_CONFLICT"
	CodeProtectedSentinel Code = "PROTECTED_SENTINEL"
	CodeValidation        Code = "VALIDATION"
	CodeUnauthenticated   Code = "UNAUTHENTICATED"
	CodeUnavailable       Code = "UNAVAILABLE"
	CodeInternal          Code = "INTERNAL"
)

// HTTPStatus returns the HTTP status code for an error code.
// Unauthorized is an ownership failure, so it maps to 403; a missing or
// invalid login is Unauthenticated (401).
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeNameConflict, CodeProtectedSentinel:
		return http.StatusConflict
	case CodeUnauthorized:
		return http.StatusForbidden
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeValidation:
		return http.StatusBadRequest
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a copy of the error carrying details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: details, cause: e.cause}
}

// WithCause returns a copy of the error wrapping err.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: e.Details, cause: err}
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound          = &Error{Code: CodeNotFound, Message: "not found"}
	ErrUnauthorized      = &Error{Code: CodeUnauthorized, Message: "not authorized"}
	ErrNameConflict      = &Error{Code: CodeNameConflict, Message: "name already taken"}
	ErrProtectedSentinel = &Error{Code: CodeProtectedSentinel, Message: "protected record"}
	ErrValidation        = &Error{Code: CodeValidation, Message: "validation error"}
	ErrUnauthenticated   = &Error{Code: CodeUnauthenticated, Message: "authentication required"}
	ErrUnavailable       = &Error{Code: CodeUnavailable, Message: "service unavailable"}
	ErrInternal          = &Error{Code: CodeInternal, Message: "internal error"}
)

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized creates an ownership failure.
func Unauthorized(msg string) *Error {
	return &Error{Code: CodeUnauthorized, Message: msg}
}

// NameConflict creates a uniqueness violation error.
func NameConflict(msg string) *Error {
	return &Error{Code: CodeNameConflict, Message: msg}
}

// ProtectedSentinel creates an error for writes against the "Other" record.
func ProtectedSentinel(msg string) *Error {
	return &Error{Code: CodeProtectedSentinel, Message: msg}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Unauthenticated creates an error for a missing or invalid login.
func Unauthenticated(msg string) *Error {
	return &Error{Code: CodeUnauthenticated, Message: msg}
}

// Unavailable creates an error for a feature that is not configured.
func Unavailable(msg string) *Error {
	return &Error{Code: CodeUnavailable, Message: msg}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}
