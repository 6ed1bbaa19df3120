// Package triperr defines the closed error taxonomy surfaced at the
// service boundary. Callers match on Kind instead of sniffing message
// strings.
package triperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error into the closed taxonomy.
type Kind string

const (
	Unauthenticated    Kind = "unauthenticated"
	InvalidArgument    Kind = "invalid-argument"
	NotFound           Kind = "not-found"
	PermissionDenied   Kind = "permission-denied"
	FailedPrecondition Kind = "failed-precondition"
	ResourceExhausted  Kind = "resource-exhausted"
	AlreadyExists      Kind = "already-exists"
	Internal           Kind = "internal"
)

// Error is the sum type carried across the service boundary.
type Error struct {
	Kind    Kind
	Message string
	// Detail optionally carries the underlying cause.
	Detail error
}

func (e *Error) Error() string {
	if e.Detail != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Detail
}

// New creates an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error carrying an underlying cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Detail: cause}
}

// KindOf returns the kind of err, or Internal if err is not a *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
