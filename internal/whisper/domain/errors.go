package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure an operation can report.
type ErrorKind string

const (
	KindValidation            ErrorKind = "validation_error"
	KindDuplicateUser         ErrorKind = "duplicate_user"
	KindAuthenticationFailure ErrorKind = "authentication_failed"
	KindMissingCredential     ErrorKind = "missing_credential"
	KindInvalidToken          ErrorKind = "invalid_token"
	KindForbidden             ErrorKind = "forbidden"
	KindNotFound              ErrorKind = "not_found"
)

// Error is a classified failure. Message is safe to show to the caller.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return e.Message }

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound)
// holds for every not-found error whatever its message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func newError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

var (
	ErrValidation            = newError(KindValidation, "invalid request")
	ErrDuplicateUser         = newError(KindDuplicateUser, "username already taken")
	ErrAuthenticationFailure = newError(KindAuthenticationFailure, "invalid username or password")
	ErrMissingCredential     = newError(KindMissingCredential, "authentication required")
	ErrInvalidToken          = newError(KindInvalidToken, "invalid or revoked token")
	ErrForbidden             = newError(KindForbidden, "forbidden")
	ErrNotFound              = newError(KindNotFound, "not found")
)

// Validationf builds a validation error with a specific message.
func Validationf(format string, args ...any) error {
	return newError(KindValidation, fmt.Sprintf(format, args...))
}

// NotFoundf builds a not-found error with a specific message.
func NotFoundf(format string, args ...any) error {
	return newError(KindNotFound, fmt.Sprintf(format, args...))
}

// Forbidden builds a forbidden error with a specific message.
func Forbidden(msg string) error {
	return newError(KindForbidden, msg)
}

// KindOf returns the kind of err, or "" when it is unclassified.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
