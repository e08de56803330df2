// Package apperr defines the error taxonomy shared by policies, stores and
// handlers, and maps each kind to an HTTP status.
//
// Kinds:
//   - Validation: bad input shape (400)
//   - Unauthenticated: no or invalid session (401)
//   - Forbidden: authenticated but not allowed (403)
//   - NotFound: resource absent (404)
//   - Dependency: database or auth provider call failed (500)
package apperr

import (
	"errors"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// Kind classifies an Error.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindDependency
)

// Sentinels usable with errors.Is.
var (
	ErrValidation      = &Error{Kind: KindValidation, Msg: "invalid request"}
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated, Msg: "unauthorized"}
	ErrForbidden       = &Error{Kind: KindForbidden, Msg: "forbidden"}
	ErrNotFound        = &Error{Kind: KindNotFound, Msg: "not found"}
	ErrDependency      = &Error{Kind: KindDependency, Msg: "dependency failure"}
)

// Error is a classified application error. Details carries per-field or
// per-item messages (for example program validation errors).
type Error struct {
	Kind    Kind
	Msg     string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrForbidden)
// works for every forbidden error regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Validation returns a KindValidation error with optional detail lines.
func Validation(msg string, details ...string) *Error {
	return &Error{Kind: KindValidation, Msg: msg, Details: details}
}

// Unauthenticated returns a KindUnauthenticated error.
func Unauthenticated(msg string) *Error {
	return &Error{Kind: KindUnauthenticated, Msg: msg}
}

// Forbidden returns a KindForbidden error.
func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Msg: msg}
}

// ForbiddenCause returns a KindForbidden error that keeps the lookup failure
// that caused the denial.
func ForbiddenCause(msg string, err error) *Error {
	return &Error{Kind: KindForbidden, Msg: msg, Err: err}
}

// NotFound returns a KindNotFound error.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

// Dependency wraps a failed call to the data store or auth provider.
func Dependency(msg string, err error) *Error {
	return &Error{Kind: KindDependency, Msg: msg, Err: err}
}

// KindOf returns the Kind of err, or KindUnknown when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// HTTPStatus maps err to a response status. Unclassified errors are 500.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-facing message for err. Dependency and
// unclassified errors never expose their cause.
func Message(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "internal error"
	}
	if e.Kind == KindDependency {
		return strings.TrimSpace(e.Msg)
	}
	return e.Msg
}

// Details returns the detail lines carried by err, if any.
func Details(err error) []string {
	var e *Error
	if errors.As(err, &e) {
		return e.Details
	}
	return nil
}

// Lookup classifies a store read error: a missing document is NotFound with
// msg, anything else is a Dependency failure.
func Lookup(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return NotFound(msg)
	}
	return Dependency("database error", err)
}
