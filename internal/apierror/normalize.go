package apierror

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Keys the backend uses for errors that belong to no single field.
const (
	NonFieldErrorsKey = "non_field_errors"
	AllFieldsKey      = "__all__"
)

// FieldError is one entry of a mutation's sibling error list.
type FieldError struct {
	Field    string   `json:"field"`
	Messages []string `json:"messages"`
}

// Normalize converts an error source into an *Error.
//
// Accepted shapes:
//   - []FieldError, or a decoded JSON list of {field, messages} objects:
//     validation errors from a mutation payload.
//   - map[string]any: a top-level error payload. non_field_errors becomes the
//     generic message, every other key a field error.
//   - string or []string: a generic message.
//
// Anything else yields a KindConfig error describing the unexpected shape.
func Normalize(source any) *Error {
	switch v := source.(type) {
	case nil:
		return &Error{Kind: KindValidation}
	case *Error:
		return v
	case []FieldError:
		return fromFieldErrors(v)
	case []any:
		entries, err := decodeFieldErrors(v)
		if err != nil {
			return Configf("unexpected error list: %v", err)
		}
		return fromFieldErrors(entries)
	case map[string]any:
		return fromPayload(v)
	case string:
		return &Error{Kind: KindValidation, Message: v}
	case []string:
		return &Error{Kind: KindValidation, Message: strings.Join(v, " ")}
	default:
		return Configf("unexpected error source %T", source)
	}
}

func fromFieldErrors(entries []FieldError) *Error {
	e := &Error{Kind: KindValidation, Fields: make(map[string][]string)}
	for _, entry := range entries {
		field := entry.Field
		if field == "" || field == AllFieldsKey || field == NonFieldErrorsKey {
			e.Message = joinMessage(e.Message, entry.Messages)
			continue
		}
		e.Fields[field] = append(e.Fields[field], entry.Messages...)
	}
	if len(e.Fields) == 0 {
		e.Fields = nil
	}
	return e
}

func fromPayload(payload map[string]any) *Error {
	e := &Error{Kind: KindValidation, Fields: make(map[string][]string)}
	for key, raw := range payload {
		msgs := messages(raw)
		switch key {
		case NonFieldErrorsKey, AllFieldsKey, "detail":
			e.Message = joinMessage(e.Message, msgs)
		default:
			e.Fields[key] = append(e.Fields[key], msgs...)
		}
	}
	if len(e.Fields) == 0 {
		e.Fields = nil
	}
	return e
}

// FromResponse normalizes a non-2xx REST response body. The payload shape
// decides the fields and message; the status decides the kind.
func FromResponse(status int, body []byte) *Error {
	var payload any
	var e *Error
	if err := json.Unmarshal(body, &payload); err != nil {
		e = &Error{Message: strings.TrimSpace(string(body))}
	} else {
		e = Normalize(payload)
	}
	if e.Message == "" && len(e.Fields) == 0 {
		e.Message = http.StatusText(status)
	}
	e.Status = status
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e.Kind = KindAuth
	case status == http.StatusBadRequest:
		if e.Kind != KindConfig {
			e.Kind = KindValidation
		}
	default:
		e.Kind = KindTransport
	}
	return e
}

func decodeFieldErrors(list []any) ([]FieldError, error) {
	out := make([]FieldError, 0, len(list))
	for i, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("entry %d is %T, want object", i, item)
		}
		field, _ := obj["field"].(string)
		out = append(out, FieldError{Field: field, Messages: messages(obj["messages"])})
	}
	return out, nil
}

// messages flattens a decoded JSON value into a list of strings.
func messages(raw any) []string {
	switch v := raw.(type) {
	case nil:
		return nil
	case string:
		return []string{v}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, m := range v {
			out = append(out, messages(m)...)
		}
		return out
	default:
		return []string{fmt.Sprint(v)}
	}
}

func joinMessage(existing string, msgs []string) string {
	joined := strings.Join(msgs, " ")
	if existing == "" {
		return joined
	}
	if joined == "" {
		return existing
	}
	return existing + " " + joined
}
