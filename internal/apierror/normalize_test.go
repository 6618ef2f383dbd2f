package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_FieldErrorList(t *testing.T) {
	tests := []struct {
		name       string
		source     any
		wantFields map[string][]string
		wantMsg    string
	}{
		{
			name:       "typed entries",
			source:     []FieldError{{Field: "name", Messages: []string{"required"}}},
			wantFields: map[string][]string{"name": {"required"}},
		},
		{
			name: "decoded json entries",
			source: []any{
				map[string]any{"field": "name", "messages": []any{"required"}},
				map[string]any{"field": "slug", "messages": []any{"taken", "too short"}},
			},
			wantFields: map[string][]string{
				"name": {"required"},
				"slug": {"taken", "too short"},
			},
		},
		{
			name: "__all__ becomes the generic message",
			source: []any{
				map[string]any{"field": "__all__", "messages": []any{"duplicate entry"}},
				map[string]any{"field": "title", "messages": []any{"required"}},
			},
			wantFields: map[string][]string{"title": {"required"}},
			wantMsg:    "duplicate entry",
		},
		{
			name: "only generic entries leave fields nil",
			source: []FieldError{
				{Field: "__all__", Messages: []string{"duplicate entry"}},
				{Field: "non_field_errors", Messages: []string{"try again"}},
			},
			wantMsg: "duplicate entry try again",
		},
		{
			name: "repeated field accumulates",
			source: []FieldError{
				{Field: "email", Messages: []string{"invalid"}},
				{Field: "email", Messages: []string{"taken"}},
			},
			wantFields: map[string][]string{"email": {"invalid", "taken"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Normalize(tt.source)
			require.NotNil(t, e)
			assert.Equal(t, KindValidation, e.Kind)
			assert.Equal(t, tt.wantFields, e.Fields)
			assert.Equal(t, tt.wantMsg, e.Message)
		})
	}
}

func TestNormalize_Payload(t *testing.T) {
	e := Normalize(map[string]any{
		"non_field_errors": []any{"bad credentials"},
		"username":         []any{"This field is required."},
	})

	assert.Equal(t, KindValidation, e.Kind)
	assert.Equal(t, "bad credentials", e.Message)
	assert.Equal(t, []string{"This field is required."}, e.FieldMessages("username"))
}

func TestNormalize_UnexpectedShape(t *testing.T) {
	e := Normalize([]any{"not an object"})
	assert.Equal(t, KindConfig, e.Kind)

	e = Normalize(42)
	assert.Equal(t, KindConfig, e.Kind)
	assert.Contains(t, e.Message, "int")
}

func TestFromResponse(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind Kind
		wantMsg  string
	}{
		{
			name:     "unauthorized with non_field_errors",
			status:   http.StatusUnauthorized,
			body:     `{"non_field_errors": ["bad credentials"]}`,
			wantKind: KindAuth,
			wantMsg:  "bad credentials",
		},
		{
			name:     "bad request payload",
			status:   http.StatusBadRequest,
			body:     `{"non_field_errors": ["Unable to log in."]}`,
			wantKind: KindValidation,
			wantMsg:  "Unable to log in.",
		},
		{
			name:     "server error with html body",
			status:   http.StatusInternalServerError,
			body:     `<h1>Server Error</h1>`,
			wantKind: KindTransport,
			wantMsg:  "<h1>Server Error</h1>",
		},
		{
			name:     "empty body falls back to status text",
			status:   http.StatusForbidden,
			body:     ``,
			wantKind: KindAuth,
			wantMsg:  "Forbidden",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := FromResponse(tt.status, []byte(tt.body))
			assert.Equal(t, tt.wantKind, e.Kind)
			assert.Equal(t, tt.wantMsg, e.Message)
			assert.Equal(t, tt.status, e.Status)
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("list tags: %w", Transport(0, "request failed", cause))

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsKind(err, KindTransport))
	assert.False(t, IsKind(err, KindNotFound))

	e, ok := As(err)
	require.True(t, ok)
	assert.Contains(t, e.Error(), "connection refused")
}

func TestError_Message(t *testing.T) {
	e := &Error{Kind: KindValidation, Fields: map[string][]string{
		"slug": {"taken"},
		"name": {"required"},
	}}
	assert.Equal(t, "validation: name: required; slug: taken", e.Error())

	assert.Equal(t, "not_found: The requested tag was not found", NotFound("The requested tag was not found").Error())
}
