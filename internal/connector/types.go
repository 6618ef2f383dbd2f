// Package connector binds admin resources to the GraphQL backend. For every
// resource and operation it holds the query text and a pair of pure
// transforms: one shaping the outgoing payload, one turning the response
// envelope into normalized records or a structured error.
package connector

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/leapstack-labs/blogadmin/internal/graphql"
	"github.com/leapstack-labs/blogadmin/internal/pagination"
	"github.com/leapstack-labs/blogadmin/internal/query"
)

// Operation is the CRUD intent of a request. Reads are split by whether a
// target id is known.
type Operation int

// Operations.
const (
	OpList Operation = iota + 1
	OpRead
	OpCreate
	OpUpdate
	OpDelete
)

func (o Operation) String() string {
	switch o {
	case OpList:
		return "list"
	case OpRead:
		return "read"
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return fmt.Sprintf("operation(%d)", int(o))
	}
}

// Record is a flat mapping of field name to value, shaped like the view's
// field list. Relations are nested {id, name} objects.
type Record map[string]any

// ID returns the record's id as a string, or "" when absent.
func (r Record) ID() string {
	switch v := r["id"].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Clone returns a shallow copy.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Session is the per-call context a transform may read: the authenticated
// identity, its token, and route parameters. It is passed explicitly; there
// is no process-wide runtime object.
type Session struct {
	// User is the authenticated user's id, empty when anonymous.
	User string
	// Token authenticates calls to the backend.
	Token string
	// Params holds route parameters of the current view, e.g. "id".
	Params map[string]string
}

// Param returns a route parameter.
func (s Session) Param(name string) string {
	if s.Params == nil {
		return ""
	}
	return s.Params[name]
}

// Header returns the request headers authenticating s.
func (s Session) Header() http.Header {
	return graphql.AuthHeader(s.Token)
}

// Request is one abstract CRUD action.
type Request struct {
	Op   Operation
	ID   string
	Data Record
	Page pagination.Page
	// OrderBy overrides the resource's ordering field for list reads.
	OrderBy string
	// Filters are extra list arguments, e.g. {"section": "U2VjdGlvbjox"}.
	Filters []query.Arg
}

// Option is one choice of a select field.
type Option struct {
	Value any    `json:"value"`
	Label string `json:"label"`
}

// Result is the normalized outcome of one call. Which fields are set depends
// on the operation.
type Result struct {
	// Records holds the rows of a list read, in backend order.
	Records []Record `json:"records,omitempty"`
	// Next is the cursor of the next page; empty when no more rows exist.
	Next string `json:"next,omitempty"`
	// Record is the entity of a read, create or update.
	Record Record `json:"record,omitempty"`
	// Options is set by option connectors.
	Options []Option `json:"options,omitempty"`
	// Data is the raw envelope data, passed through for deletes.
	Data map[string]any `json:"data,omitempty"`
}

// HasMore reports whether another page can be requested.
func (r *Result) HasMore() bool { return r != nil && r.Next != "" }

// RequestTransform shapes the outgoing payload.
type RequestTransform func(s Session, data Record) Record

// ResponseTransform turns an envelope into a Result or a structured error.
type ResponseTransform func(s Session, env *graphql.Envelope) (*Result, error)

// QueryFunc returns the document for a request.
type QueryFunc func(req Request) (string, error)

// Handler is everything needed to run one operation on one resource.
type Handler struct {
	Query    QueryFunc
	Request  RequestTransform
	Response ResponseTransform
}
