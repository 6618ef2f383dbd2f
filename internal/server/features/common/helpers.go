// Package common provides helpers shared by the bridge's features: the
// cookie session holding the backend token, JSON responses, and the mapping
// of connector errors to HTTP statuses.
package common

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/blogadmin/internal/apierror"
	"github.com/leapstack-labs/blogadmin/internal/connector"
	"github.com/leapstack-labs/blogadmin/internal/graphql"
)

// SessionName is the cookie holding the signed-in user.
const SessionName = "blogadmin"

const (
	tokenKey = "token"
	userKey  = "user"
)

// Session builds the connector session of r. The cookie session wins; a
// request carrying its own "Authorization: Token ..." header is accepted too.
func Session(store sessions.Store, r *http.Request) connector.Session {
	var s connector.Session
	if sess, err := store.Get(r, SessionName); err == nil {
		s.Token, _ = sess.Values[tokenKey].(string)
		s.User, _ = sess.Values[userKey].(string)
	}
	if s.Token == "" {
		if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), graphql.TokenScheme+" "); ok {
			s.Token = strings.TrimSpace(token)
		}
	}
	return s
}

// SaveSession stores token and user in the cookie session.
func SaveSession(store sessions.Store, w http.ResponseWriter, r *http.Request, token, user string) error {
	sess, err := store.Get(r, SessionName)
	if err != nil && sess == nil {
		return err
	}
	sess.Values[tokenKey] = token
	sess.Values[userKey] = user
	return sess.Save(r, w)
}

// ClearSession expires the cookie session.
func ClearSession(store sessions.Store, w http.ResponseWriter, r *http.Request) error {
	sess, err := store.Get(r, SessionName)
	if err != nil && sess == nil {
		return err
	}
	delete(sess.Values, tokenKey)
	delete(sess.Values, userKey)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// WriteJSON writes v with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// ErrorBody is the JSON shape of a failed request. Field messages go under
// errors, the generic message under _error.
type ErrorBody struct {
	Errors map[string][]string `json:"errors,omitempty"`
	Error  string              `json:"_error,omitempty"`
	Kind   string              `json:"kind"`
}

// StatusFor maps an error to the HTTP status the bridge answers with.
func StatusFor(err error) int {
	e, ok := apierror.As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case apierror.KindNotFound:
		return http.StatusNotFound
	case apierror.KindValidation:
		return http.StatusBadRequest
	case apierror.KindAuth:
		return http.StatusUnauthorized
	case apierror.KindTransport, apierror.KindEnvelope:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WriteError answers with the structured error of err.
func WriteError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := StatusFor(err)
	body := ErrorBody{Kind: "internal", Error: err.Error()}

	var e *apierror.Error
	if errors.As(err, &e) {
		body = ErrorBody{Kind: e.Kind.String(), Errors: e.Fields, Error: e.Message}
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Debug("request rejected", "status", status, "error", err)
	}
	WriteJSON(w, status, body)
}

// BadRequest answers with a validation error on field.
func BadRequest(w http.ResponseWriter, logger *slog.Logger, field, msg string) {
	WriteError(w, logger, apierror.Invalid(field, msg))
}
