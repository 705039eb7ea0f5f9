// Package apperror carries the typed error taxonomy shared by use cases,
// repositories and the HTTP boundary.
package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an error for propagation and HTTP translation
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUnauthorized
	KindForbidden
	KindUpstream
	KindInvalidTransition
	KindExpired
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindUpstream:
		return "upstream_failure"
	case KindInvalidTransition:
		return "invalid_transition"
	case KindExpired:
		return "expired"
	default:
		return "internal"
	}
}

// Error is a typed application error. Code is a stable machine-readable
// string; Message is safe to show to callers. Err is the internal cause and
// is never rendered.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

// New creates an error of the given kind
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Kind, and on Code when the target carries one. A target with
// an empty Code matches every error of its Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Kind != t.Kind {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

// Wrap returns a copy of e with cause attached
func (e *Error) Wrap(cause error) *Error {
	c := *e
	c.Err = cause
	return &c
}

// WithMessage returns a copy of e with a different caller-facing message
func (e *Error) WithMessage(message string) *Error {
	c := *e
	c.Message = message
	return &c
}

// Status maps the kind onto an HTTP status code
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation, KindConflict, KindInvalidTransition, KindExpired:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Generic sentinels, one per kind
var (
	ErrValidation        = New(KindValidation, "", "invalid input")
	ErrNotFound          = New(KindNotFound, "", "resource not found")
	ErrConflict          = New(KindConflict, "", "resource already exists")
	ErrUnauthorized      = New(KindUnauthorized, "", "user not authenticated")
	ErrForbidden         = New(KindForbidden, "", "not authorized for this resource")
	ErrUpstream          = New(KindUpstream, "", "upstream service failure")
	ErrInvalidTransition = New(KindInvalidTransition, "", "invalid status transition")
	ErrExpired           = New(KindExpired, "", "expired")
	ErrInternal          = New(KindInternal, "", "internal server error")
)

// Validation builds a validation error with a specific code
func Validation(code, message string) *Error {
	return New(KindValidation, code, message)
}

// NotFound builds a not-found error with a specific code
func NotFound(code, message string) *Error {
	return New(KindNotFound, code, message)
}

// Conflict builds a conflict error with a specific code
func Conflict(code, message string) *Error {
	return New(KindConflict, code, message)
}

// Upstream wraps a collaborator failure
func Upstream(code, message string, cause error) *Error {
	return New(KindUpstream, code, message).Wrap(cause)
}

// From extracts the *Error in err's chain, or wraps err as internal
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternal.Wrap(err)
}
