package api

import (
	"errors"
	"fmt"
)

// Error kinds. Callers branch on kind, not on message text: auth failures
// force a logout, network failures are retryable, server errors carry the
// backend's message, validation errors never reach the wire.
type ErrorKind int

const (
	KindNetwork ErrorKind = iota
	KindServer
	KindAuth
	KindValidation
)

// Error is the uniform failure type returned by every Client method.
type Error struct {
	Kind    ErrorKind
	Status  int    // HTTP status for server/auth errors, 0 otherwise
	Message string // human-readable summary
	Detail  string // optional server-provided detail
	Err     error  // wrapped transport error, if any
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// NewValidationError reports malformed user input caught before any
// request is sent.
func NewValidationError(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// IsAuth reports whether err is an authentication failure (401).
func IsAuth(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindAuth
}

// IsNetwork reports whether err is a transport failure or timeout.
func IsNetwork(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindNetwork
}

// IsValidation reports whether err is a client-side input error.
func IsValidation(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindValidation
}

// UserMessage extracts the message to surface in a toast: the server's
// message when present, a generic failure otherwise.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Error()
	}
	return "operation failed"
}
