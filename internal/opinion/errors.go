package opinion

import (
	"errors"
	"fmt"
)

// Kind classifies a local validation failure. None of them are transient, so
// callers must not retry.
type Kind string

const (
	KindInvalidInput         Kind = "invalid_input"
	KindMalformedOpinion     Kind = "malformed_opinion"
	KindInsufficientPersonas Kind = "insufficient_personas"
	KindNotReady             Kind = "not_ready"
	KindNotFound             Kind = "not_found"
)

// Sentinels for errors.Is. Any *Error of the same kind matches.
var (
	ErrInvalidInput         = &Error{Kind: KindInvalidInput}
	ErrMalformedOpinion     = &Error{Kind: KindMalformedOpinion}
	ErrInsufficientPersonas = &Error{Kind: KindInsufficientPersonas}
	ErrNotReady             = &Error{Kind: KindNotReady}
	ErrNotFound             = &Error{Kind: KindNotFound}
)

// Error is a typed engine failure carrying a developer-facing message.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

// Errorf builds an *Error with a formatted message.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error around a cause.
func Wrap(kind Kind, err error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// UserMessage returns a short non-technical sentence suitable for showing to
// the person who asked the question.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	kind, _ := KindOf(err)
	switch kind {
	case KindInvalidInput:
		return "Please describe what you would like an opinion on before asking."
	case KindMalformedOpinion:
		return "One of the opinions could not be compared. Please ask your question again."
	case KindInsufficientPersonas:
		return "A second opinion is not available right now because fewer than two advisors are active."
	case KindNotReady:
		return "Both opinions need to be ready before they can be combined."
	case KindNotFound:
		return "That advisor could not be found."
	default:
		return "Something went wrong while preparing your opinions. Please try again."
	}
}
