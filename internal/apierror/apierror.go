// Package apierror defines the single error shape returned by the connector
// layer. Field-scoped validation messages and generic messages share one
// type so callers can display both without branching on where they came from.
package apierror

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind classifies an Error.
type Kind int

// Error kinds.
const (
	// KindNotFound is a single-entity read that matched no row.
	KindNotFound Kind = iota + 1
	// KindValidation carries field-scoped messages from a mutation payload.
	KindValidation
	// KindAuth is a 401/403 from the backend or the login endpoint.
	KindAuth
	// KindTransport is any other non-2xx response or an unreadable body.
	KindTransport
	// KindEnvelope is a GraphQL response carrying top-level errors.
	KindEnvelope
	// KindConfig is a response whose shape does not match the resource
	// descriptor, e.g. a missing list container.
	KindConfig
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindTransport:
		return "transport"
	case KindEnvelope:
		return "envelope"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

// Error is the structured error shape.
type Error struct {
	Kind    Kind
	Message string
	// Fields maps a field name to its messages. Nil for generic errors.
	Fields map[string][]string
	// Status is the HTTP status of the response that produced the error, if any.
	Status int
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Fields) > 0 {
		names := make([]string, 0, len(e.Fields))
		for name := range e.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s: %s", name, strings.Join(e.Fields[name], " ")))
		}
		if e.Message != "" {
			b.WriteString(";")
		} else {
			b.WriteString(":")
		}
		b.WriteString(" ")
		b.WriteString(strings.Join(parts, "; "))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// FieldMessages returns the messages recorded for field.
func (e *Error) FieldMessages(field string) []string {
	if e.Fields == nil {
		return nil
	}
	return e.Fields[field]
}

// NotFound returns a KindNotFound error with a user-facing message.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Invalid returns a KindValidation error carrying one message for field.
func Invalid(field, msg string) *Error {
	return &Error{Kind: KindValidation, Fields: map[string][]string{field: {msg}}}
}

// Configf returns a KindConfig error.
func Configf(format string, args ...any) *Error {
	return &Error{Kind: KindConfig, Message: fmt.Sprintf(format, args...)}
}

// Transport wraps a failed exchange with the backend.
func Transport(status int, msg string, err error) *Error {
	kind := KindTransport
	if status == 401 || status == 403 {
		kind = KindAuth
	}
	return &Error{Kind: kind, Status: status, Message: msg, Err: err}
}

// As reports whether err is (or wraps) an *Error and returns it.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}
