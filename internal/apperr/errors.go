// Package apperr is the error taxonomy shared by services and handlers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type Kind string

const (
	KindInternal      Kind = "internal"
	KindValidation    Kind = "validation"
	KindNotFound      Kind = "not_found"
	KindForbidden     Kind = "forbidden"
	KindMalformedAI   Kind = "malformed_ai_response"
	KindUpstream      Kind = "upstream"
	KindStore         Kind = "store"
	KindConfiguration Kind = "configuration"
)

// Error carries a Kind, a user-facing message and the wrapped cause.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Msg)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) error {
	return &Error{Kind: KindValidation, Msg: msg}
}

func Validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

func Forbidden(msg string) error {
	return &Error{Kind: KindForbidden, Msg: msg}
}

// MalformedAIResponse reports model output that could not be parsed as JSON.
func MalformedAIResponse(err error) error {
	return &Error{Kind: KindMalformedAI, Msg: "Invalid response format from AI", Err: err}
}

// Upstream wraps a failed call to the text-generation provider.
func Upstream(op string, err error) error {
	return &Error{Kind: KindUpstream, Op: op, Msg: "AI provider request failed", Err: err}
}

// Store wraps any failure of the record store.
func Store(op string, err error) error {
	return &Error{Kind: KindStore, Op: op, Msg: "store operation failed", Err: err}
}

// Configuration lists the settings that are missing or invalid.
func Configuration(problems []string) error {
	return &Error{Kind: KindConfiguration, Msg: "invalid configuration: " + strings.Join(problems, ", ")}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps an error to the response status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the message safe to show to the user. Store and
// internal failures never leak their cause.
func PublicMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "internal error"
	}
	switch e.Kind {
	case KindValidation, KindNotFound, KindForbidden, KindMalformedAI, KindUpstream, KindStore:
		return e.Msg
	default:
		return "internal error"
	}
}
