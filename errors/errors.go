package errors

import (
	"errors"
	"fmt"
	"maps"
	"strings"
)

// Kind is the closed set of failure categories the SDK reports. Callers can
// switch on it exhaustively.
type Kind int

const (
	// KindUnknown is the zero value, used when converting foreign errors.
	KindUnknown Kind = iota

	// KindURLBuild is a template/parameter mismatch. Always a programmer
	// error; never retried.
	KindURLBuild

	// KindEncryption is missing/invalid key material, a malformed envelope,
	// or an authentication-tag failure. Never retried.
	KindEncryption

	// KindAuthentication is an HTTP 401/403. Not retried: repeating the
	// same credentials cannot succeed.
	KindAuthentication

	// KindRequest is a transport failure or other non-2xx status after
	// retries are exhausted.
	KindRequest
)

// String returns the kind's wire/log name.
func (k Kind) String() string {
	switch k {
	case KindURLBuild:
		return "url_build"
	case KindEncryption:
		return "encryption"
	case KindAuthentication:
		return "authentication"
	case KindRequest:
		return "request"
	default:
		return "unknown"
	}
}

// Error is a structured SDK error carrying a failure kind, the HTTP status
// code when one was observed, a message, optional metadata and a cause
// chain.
type Error struct {
	Kind       Kind              `json:"kind"`
	StatusCode int               `json:"status_code,omitempty"`
	Message    string            `json:"message,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	cause      error
}

// Error returns a human-readable error message with optional error chain
func (e *Error) Error() string {
	var msg strings.Builder

	msg.WriteString("kind=")
	msg.WriteString(e.Kind.String())
	if e.StatusCode != 0 {
		msg.WriteString(", status=")
		fmt.Fprintf(&msg, "%d", e.StatusCode)
	}
	msg.WriteString(", message=")
	msg.WriteString(e.Message)

	if len(e.Metadata) > 0 {
		msg.WriteString(", metadata={")
		first := true
		for k, v := range e.Metadata {
			if !first {
				msg.WriteString(", ")
			}
			msg.WriteString(k)
			msg.WriteByte('=')
			msg.WriteString(v)
			first = false
		}
		msg.WriteString("}")
	}

	if e.cause != nil {
		msg.WriteString(", cause=")
		msg.WriteString(e.cause.Error())
	}

	return msg.String()
}

// Unwrap returns the cause of the error
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether err is an *Error with the same kind.
func (e *Error) Is(err error) bool {
	var se *Error
	if errors.As(err, &se) {
		return e.Kind == se.Kind
	}
	return false
}

// WithMetadata adds metadata to the error. Returns a new error instance to
// maintain immutability.
func (e *Error) WithMetadata(m map[string]string) *Error {
	if len(m) == 0 {
		return e
	}

	err := e.clone()
	if err.Metadata == nil {
		err.Metadata = make(map[string]string, len(m))
	}

	maps.Copy(err.Metadata, m)
	return err
}

// WithCause adds a cause to the error. Returns a new error instance to
// maintain immutability.
func (e *Error) WithCause(cause error) *Error {
	if cause == nil {
		return e
	}

	err := e.clone()
	err.cause = cause
	return err
}

// WithStatusCode records the HTTP status code the error was observed with.
func (e *Error) WithStatusCode(code int) *Error {
	err := e.clone()
	err.StatusCode = code
	return err
}

// clone creates a shallow copy of the error while deep copying the metadata map
func (e *Error) clone() *Error {
	var metadata map[string]string
	if len(e.Metadata) > 0 {
		metadata = make(map[string]string, len(e.Metadata))
		maps.Copy(metadata, e.Metadata)
	}

	return &Error{
		Kind:       e.Kind,
		StatusCode: e.StatusCode,
		Message:    e.Message,
		Metadata:   metadata,
		cause:      e.cause,
	}
}

// New creates a new error with the given kind and formatted message
func New(kind Kind, format string, args ...any) *Error {
	var message string
	if len(args) == 0 {
		message = format
	} else {
		message = fmt.Sprintf(format, args...)
	}

	return &Error{
		Kind:    kind,
		Message: message,
	}
}

// FromError converts a generic error to *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}

	if se, ok := err.(*Error); ok {
		return se
	}

	return New(KindUnknown, "%v", err)
}

// Wrap wraps an error with additional context while preserving the original
// error chain. Returns nil if the input error is nil.
func Wrap(err error, kind Kind, format string, args ...any) *Error {
	if err == nil {
		return nil
	}

	newErr := New(kind, format, args...)
	return newErr.WithCause(err)
}
