// Package graphql carries requests to the blog backend's GraphQL endpoint and
// decodes the response envelope. It knows nothing about resources; shaping
// the envelope into records is the connector package's job.
package graphql

import (
	"net/http"
	"strings"

	"github.com/leapstack-labs/blogadmin/internal/apierror"
)

// Request is the POST body sent to the endpoint.
type Request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// Envelope is the top-level response object: data, errors, or both.
type Envelope struct {
	Data   map[string]any `json:"data"`
	Errors []Error        `json:"errors,omitempty"`
}

// Error is one entry of an envelope-level error list.
type Error struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Locations  []Location     `json:"locations,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Location points into the query text.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Err converts envelope-level errors into a single KindEnvelope error.
// Returns nil when the envelope carries none.
func (e *Envelope) Err() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(e.Errors))
	for _, gqlErr := range e.Errors {
		msgs = append(msgs, gqlErr.Message)
	}
	return &apierror.Error{Kind: apierror.KindEnvelope, Message: strings.Join(msgs, "; ")}
}

// Field returns data[name]. The second result is false when the key is absent.
func (e *Envelope) Field(name string) (any, bool) {
	if e == nil || e.Data == nil {
		return nil, false
	}
	v, ok := e.Data[name]
	return v, ok
}

// Lookup walks nested objects of v along path.
func Lookup(v any, path ...string) (any, bool) {
	cur := v
	for _, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// TokenScheme is the Authorization scheme the backend expects.
const TokenScheme = "Token"

// AuthHeader returns the header carrying token, or nil when token is empty.
func AuthHeader(token string) http.Header {
	if token == "" {
		return nil
	}
	h := http.Header{}
	h.Set("Authorization", TokenScheme+" "+token)
	return h
}
