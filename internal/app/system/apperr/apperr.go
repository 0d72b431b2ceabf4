// Package apperr defines the error taxonomy shared by stores, services and
// handlers.
//
// Every domain failure is an *Error carrying a Kind. Callers match kinds with
// errors.Is against the kind sentinels (ErrNotFound, ErrForbidden, ...), and
// stores declare their own specific sentinels built with the constructors
// here, e.g.
//
//	var ErrDuplicateEmail = apperr.Conflict("email already registered")
//
// errors.Is(err, userstore.ErrDuplicateEmail) matches that exact failure while
// errors.Is(err, apperr.ErrConflict) matches any conflict. Anything that is not
// an *Error is treated as internal.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the transport layer.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindForbidden
	KindConflict
	KindValidation
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	}
	return "internal"
}

// Error is a classified domain error.
type Error struct {
	Kind Kind
	Msg  string
	Err  error

	sentinel bool
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the kind sentinels by kind. Specific sentinels only match
// themselves (errors.Is handles pointer equality before calling Is).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || !t.sentinel {
		return false
	}
	return t.Kind == e.Kind
}

// Kind sentinels.
var (
	ErrNotFound     = &Error{Kind: KindNotFound, Msg: "not found", sentinel: true}
	ErrForbidden    = &Error{Kind: KindForbidden, Msg: "forbidden", sentinel: true}
	ErrConflict     = &Error{Kind: KindConflict, Msg: "conflict", sentinel: true}
	ErrValidation   = &Error{Kind: KindValidation, Msg: "invalid input", sentinel: true}
	ErrUnauthorized = &Error{Kind: KindUnauthorized, Msg: "unauthorized", sentinel: true}
)

func NotFound(msg string) *Error     { return &Error{Kind: KindNotFound, Msg: msg} }
func Forbidden(msg string) *Error    { return &Error{Kind: KindForbidden, Msg: msg} }
func Conflict(msg string) *Error     { return &Error{Kind: KindConflict, Msg: msg} }
func Validation(msg string) *Error   { return &Error{Kind: KindValidation, Msg: msg} }
func Unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Msg: msg} }

// Validationf formats a validation message.
func Validationf(format string, args ...any) *Error {
	return Validation(fmt.Sprintf(format, args...))
}

// Wrap attaches a kind and public message to an underlying cause.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the public message for err. Internal errors get a generic
// message so driver details never reach clients.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Msg
	}
	return "internal server error"
}
