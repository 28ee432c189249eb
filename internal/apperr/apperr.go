// Package apperr defines the error kinds surfaced by the account services and
// how each kind maps onto an HTTP status.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an application error.
type Kind string

const (
	KindNotFound           Kind = "NOT_FOUND"
	KindAlreadyExists      Kind = "ALREADY_EXISTS"
	KindInvalidCredentials Kind = "INVALID_CREDENTIALS"
	KindUnauthorized       Kind = "UNAUTHORIZED"
	KindForbidden          Kind = "FORBIDDEN"
	KindBadRequest         Kind = "BAD_REQUEST"
	KindInternal           Kind = "INTERNAL"
)

// HTTPStatus maps the kind onto a response status code.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindAlreadyExists:
		return http.StatusConflict
	case KindInvalidCredentials, KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error is an application error with a kind and a user-facing message.
type Error struct {
	Kind    Kind
	Message string
	// Fields carries per-field validation messages for BadRequest errors.
	Fields map[string]string
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil && e.Kind == KindInternal {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Invalid builds a BadRequest error listing the offending fields.
func Invalid(message string, fields map[string]string) *Error {
	return &Error{Kind: KindBadRequest, Message: message, Fields: fields}
}

func NotFound(message string) *Error           { return New(KindNotFound, message) }
func AlreadyExists(message string) *Error      { return New(KindAlreadyExists, message) }
func InvalidCredentials(message string) *Error { return New(KindInvalidCredentials, message) }
func Unauthorized(message string) *Error       { return New(KindUnauthorized, message) }
func Forbidden(message string) *Error          { return New(KindForbidden, message) }
func BadRequest(message string) *Error         { return New(KindBadRequest, message) }

// Internal wraps an unexpected failure. The cause is kept for logs only.
func Internal(message string, cause error) *Error {
	return Wrap(KindInternal, message, cause)
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
