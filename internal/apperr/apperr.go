// Package apperr defines the error taxonomy shared by all domain services.
// Every lifecycle operation returns an *Error with a Kind so handlers can
// map outcomes to HTTP statuses without string matching.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	Validation Kind = iota
	NotFound
	PermissionDenied
	Conflict
	Expired
	InvalidState
	InvalidToken
	Unauthenticated
	Unexpected
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s, %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func New(k Kind, msg string) *Error {
	return &Error{Kind: k, Msg: msg}
}

func Wrap(k Kind, msg string, err error) *Error {
	return &Error{Kind: k, Msg: msg, Err: err}
}

// KindOf returns the kind of err, or Unexpected for anything that isn't
// an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unexpected
}

// Is reports whether err carries the given kind.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// Status maps an error kind to its HTTP status code.
func Status(err error) int {
	switch KindOf(err) {
	case Validation, InvalidState:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case PermissionDenied:
		return http.StatusForbidden
	case Conflict:
		return http.StatusConflict
	case Expired:
		return http.StatusGone
	case InvalidToken, Unauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the caller-safe message for err. Unexpected errors get a
// generic message so internals never leak to clients.
func Message(err error) string {
	if KindOf(err) == Unexpected {
		return "Internal server error"
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return "Internal server error"
}
