package domain

import "errors"

var (
	ErrValidation    = errors.New("validation failed")
	ErrRemoteService = errors.New("remote service failure")
	ErrIO            = errors.New("io failure")
	ErrNotFound      = errors.New("not found")
)

// Error carries a failure kind together with the message that is safe to
// hand back to the caller. Err holds the underlying cause, if any.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Kind != nil {
		return e.Kind.Error()
	}
	return "unknown error"
}

func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// Validation builds a caller error with a fixed message.
func Validation(message string) *Error {
	return &Error{Kind: ErrValidation, Message: message}
}

// Remote wraps a failure of the generation backend. The message defaults to
// the cause's text.
func Remote(err error, message string) *Error {
	if message == "" && err != nil {
		message = err.Error()
	}
	return &Error{Kind: ErrRemoteService, Message: message, Err: err}
}

// IO wraps a filesystem failure.
func IO(err error) *Error {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &Error{Kind: ErrIO, Message: msg, Err: err}
}

// NotFound reports a missing resource.
func NotFound(message string) *Error {
	return &Error{Kind: ErrNotFound, Message: message}
}
