package store

import (
	"fmt"
	"net/http"
)

// Error is a persistence error carrying the HTTP status it should surface as.
type Error struct {
	Code    int    // HTTP status code
	Message string // User-facing message
	Err     error  // Underlying error (optional)
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same Code, so WithMessage variants still
// satisfy errors.Is(err, ErrNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// HTTPCode returns the HTTP status code associated with this error.
func (e *Error) HTTPCode() int { return e.Code }

// WithMessage returns a new error with a custom message.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Code: e.Code, Message: msg, Err: e.Err}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Err: err}
}

// Sentinel errors.
var (
	ErrNotFound = &Error{
		Code:    http.StatusNotFound,
		Message: "record not found",
	}

	ErrAlreadyExists = &Error{
		Code:    http.StatusConflict,
		Message: "record already exists",
	}

	// ErrDanglingReference is returned when a write would leave a game
	// pointing at a genre, publisher or user that does not exist.
	ErrDanglingReference = &Error{
		Code:    http.StatusBadRequest,
		Message: "referenced record does not exist",
	}
)
