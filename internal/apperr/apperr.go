// Package apperr carries the workflow engine's error taxonomy. Every error a
// service surfaces to a caller is tagged with a Kind so transport layers can
// map it without string matching.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	Validation    Kind = "VALIDATION"
	InvalidState  Kind = "INVALID_STATE"
	Authorization Kind = "AUTHORIZATION"
	Conflict      Kind = "CONFLICT"
	Upstream      Kind = "UPSTREAM"
	NotFound      Kind = "NOT_FOUND"
	Internal      Kind = "INTERNAL"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a tagged error.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap tags an underlying error, preserving it for errors.Is/As.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func Validationf(format string, args ...any) *Error {
	return New(Validation, format, args...)
}

func InvalidStatef(format string, args ...any) *Error {
	return New(InvalidState, format, args...)
}

func Authorizationf(format string, args ...any) *Error {
	return New(Authorization, format, args...)
}

func Conflictf(format string, args ...any) *Error {
	return New(Conflict, format, args...)
}

func Upstreamf(err error, format string, args ...any) *Error {
	return Wrap(Upstream, err, format, args...)
}

func NotFoundf(format string, args ...any) *Error {
	return New(NotFound, format, args...)
}

// KindOf extracts the Kind from an error chain; untagged errors are Internal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Internal
}

// IsKind reports whether the error chain carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
