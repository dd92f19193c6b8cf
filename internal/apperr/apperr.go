package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindValidation
	KindUpstreamUnavailable
	KindStoreFailure
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindValidation:
		return "validation failed"
	case KindUpstreamUnavailable:
		return "upstream unavailable"
	case KindStoreFailure:
		return "store failure"
	default:
		return "internal error"
	}
}

// Error is the single error type crossing layer boundaries. Fields is only
// populated for validation errors (field -> messages).
type Error struct {
	Kind   Kind
	Msg    string
	Fields map[string][]string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Validation(msg string, fields map[string][]string) *Error {
	return &Error{Kind: KindValidation, Msg: msg, Fields: fields}
}

// InvalidParam reports a single bad input value, e.g. a malformed query parameter.
func InvalidParam(name, msg string) *Error {
	return Validation("invalid parameters", map[string][]string{name: {msg}})
}

func Upstream(service string, err error) *Error {
	return &Error{Kind: KindUpstreamUnavailable, Msg: fmt.Sprintf("service '%s' unavailable", service), Err: err}
}

func Store(op string, err error) *Error {
	return &Error{Kind: KindStoreFailure, Msg: op, Err: err}
}

// KindOf returns KindInternal for errors that are not *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsNotFound(err error) bool   { return KindOf(err) == KindNotFound }
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// Status maps an error to the HTTP status it is surfaced with.
func Status(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindUpstreamUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
