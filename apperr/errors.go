// Package apperr defines the error kinds surfaced by the adventure service
// and their HTTP status mapping.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the client.
type Kind string

const (
	KindValidation Kind = "ValidationError"
	KindGeneration Kind = "GenerationFailure"
	KindStorage    Kind = "StorageFailure"
	KindNotFound   Kind = "NotFound"
	KindInternal   Kind = "InternalError"
)

// HTTPStatus returns the response code used for the kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is an error tagged with a Kind.
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

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation reports malformed or missing client input.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Generation reports that an upstream generative call produced no usable result.
func Generation(msg string, err error) *Error {
	return &Error{Kind: KindGeneration, Message: msg, Err: err}
}

// Storage reports a failed write or read of persisted state.
func Storage(msg string, err error) *Error {
	return &Error{Kind: KindStorage, Message: msg, Err: err}
}

// NotFound reports a missing stored record.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Status returns the HTTP status code for err.
func Status(err error) int {
	return KindOf(err).HTTPStatus()
}

// Message returns the client-facing message for err. Errors without a kind
// get a generic message so internal details are not leaked.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}

// Is reports whether err carries the given kind.
func Is(err error, k Kind) bool {
	return KindOf(err) == k
}
