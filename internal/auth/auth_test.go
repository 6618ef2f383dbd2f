package auth

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/blogadmin/internal/apierror"
	"github.com/leapstack-labs/blogadmin/internal/testutil"
)

type loginHandler struct {
	method string
	path   string
	body   map[string]string

	statusCode   int
	responseBody string
}

func (h *loginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.method = r.Method
	h.path = r.URL.Path
	data, _ := io.ReadAll(r.Body)
	_ = json.Unmarshal(data, &h.body)

	w.Header().Set("Content-Type", "application/json")
	if h.statusCode != 0 {
		w.WriteHeader(h.statusCode)
	}
	_, _ = w.Write([]byte(h.responseBody))
}

func newTestAuthenticator(t *testing.T, h http.Handler) *Authenticator {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Config{Endpoint: srv.URL + DefaultLoginPath, Logger: testutil.NewTestLogger(t)})
}

func TestLogin(t *testing.T) {
	h := &loginHandler{responseBody: `{"token": "9944b09199c62bcf9418ad846dd0e4bbdfc6ee4b", "user": 1, "username": "admin", "is_staff": true}`}
	a := newTestAuthenticator(t, h)

	creds, err := a.Login(context.Background(), "admin", "s3cret")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, h.method)
	assert.Equal(t, DefaultLoginPath, h.path)
	assert.Equal(t, map[string]string{"username": "admin", "password": "s3cret"}, h.body)

	assert.Equal(t, "9944b09199c62bcf9418ad846dd0e4bbdfc6ee4b", creds.Token)
	assert.Equal(t, "1", creds.User)
	assert.Equal(t, "admin", creds.Username)
	assert.Equal(t, true, creds.Info["is_staff"])
	assert.Equal(t, "Token 9944b09199c62bcf9418ad846dd0e4bbdfc6ee4b", creds.RequestHeaders().Get("Authorization"))

	s := creds.Session()
	assert.Equal(t, "1", s.User)
	assert.Equal(t, "Token 9944b09199c62bcf9418ad846dd0e4bbdfc6ee4b", s.Header().Get("Authorization"))
}

func TestLogin_BadCredentials(t *testing.T) {
	h := &loginHandler{
		statusCode:   http.StatusBadRequest,
		responseBody: `{"non_field_errors": ["bad credentials"]}`,
	}
	a := newTestAuthenticator(t, h)

	creds, err := a.Login(context.Background(), "admin", "wrong")
	require.Error(t, err)
	assert.Nil(t, creds)

	e, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, apierror.KindAuth, e.Kind)
	assert.Equal(t, "bad credentials", e.Message)
	assert.Equal(t, http.StatusBadRequest, e.Status)
}

func TestReadResponse(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantKind    apierror.Kind
		wantMessage string
		wantFields  map[string][]string
	}{
		{
			name:       "field errors",
			status:     http.StatusBadRequest,
			body:       `{"username": ["This field is required."]}`,
			wantKind:   apierror.KindAuth,
			wantFields: map[string][]string{"username": {"This field is required."}},
		},
		{
			name:        "forbidden",
			status:      http.StatusForbidden,
			body:        `{"detail": "Account disabled."}`,
			wantKind:    apierror.KindAuth,
			wantMessage: "Account disabled.",
		},
		{
			name:        "server error",
			status:      http.StatusBadGateway,
			body:        `upstream down`,
			wantKind:    apierror.KindTransport,
			wantMessage: "upstream down",
		},
		{
			name:        "no token",
			status:      http.StatusOK,
			body:        `{"user": 1}`,
			wantKind:    apierror.KindAuth,
			wantMessage: "login response carries no token",
		},
		{
			name:     "undecodable success",
			status:   http.StatusOK,
			body:     `<html>`,
			wantKind: apierror.KindTransport,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadResponse(tt.status, []byte(tt.body))
			require.Error(t, err)
			e, ok := apierror.As(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantKind, e.Kind)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, e.Message)
			}
			if tt.wantFields != nil {
				assert.Equal(t, tt.wantFields, e.Fields)
			}
		})
	}
}

func TestCredentials_EmptyToken(t *testing.T) {
	assert.Nil(t, Credentials{}.RequestHeaders())
}

func TestLogin_LogsOutcome(t *testing.T) {
	srv := httptest.NewServer(&loginHandler{
		statusCode:   http.StatusBadRequest,
		responseBody: `{"non_field_errors": ["bad credentials"]}`,
	})
	t.Cleanup(srv.Close)

	logger, rec := testutil.NewRecordingLogger()
	a := New(Config{Endpoint: srv.URL + DefaultLoginPath, Logger: logger})

	_, err := a.Login(context.Background(), "admin", "wrong")
	require.Error(t, err)

	e, ok := rec.Find("login rejected")
	require.True(t, ok)
	assert.Equal(t, slog.LevelDebug, e.Level)
	assert.Equal(t, "admin", e.Attrs["username"])
	assert.Equal(t, int64(http.StatusBadRequest), e.Attrs["status"])
}
