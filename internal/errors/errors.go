package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure. The transport layer owns the mapping of kinds
// to status codes.
type Kind string

const (
	KindValidation   Kind = "validation_error"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindUnauthorized Kind = "unauthorized"
	KindInternal     Kind = "internal_error"
)

// Error is the typed outcome every service operation returns on failure.
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

// Is matches on Kind so errors.Is(err, errors.NotFound("")) style checks work.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func New(kind Kind, msg string) *Error { return &Error{Kind: kind, Message: msg} }

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// Validation is returned for a missing or malformed required field.
func Validation(msg string) error { return New(KindValidation, msg) }

// NotFound is returned for absent entities and, on ownership-gated
// mutations, for present-but-not-owned ones too.
func NotFound(msg string) error { return New(KindNotFound, msg) }

// Conflict is returned when a unique key is already taken.
func Conflict(msg string) error { return New(KindConflict, msg) }

// Unauthorized is returned for a missing or invalid identity.
func Unauthorized(msg string) error { return New(KindUnauthorized, msg) }

// Internal wraps a store or infrastructure failure.
func Internal(msg string, err error) error { return Wrap(KindInternal, msg, err) }

// KindOf reports the kind of err; untyped errors are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the user-facing message for err. Internal details are
// never exposed.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return "internal server error"
}
