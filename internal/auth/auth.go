// Package auth signs a user in against the backend's REST login endpoint and
// turns the answer into the token header every GraphQL call carries.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/google/uuid"

	"github.com/leapstack-labs/blogadmin/internal/apierror"
	"github.com/leapstack-labs/blogadmin/internal/connector"
	"github.com/leapstack-labs/blogadmin/internal/graphql"
)

// DefaultLoginPath is the fixed login endpoint of the backend.
const DefaultLoginPath = "/rest-api/login/"

// Credentials is a successful login.
type Credentials struct {
	Token    string `mapstructure:"token" json:"token"`
	User     string `mapstructure:"user" json:"user"`
	Username string `mapstructure:"username" json:"username,omitempty"`
	// Info holds the rest of the login payload.
	Info map[string]any `mapstructure:",remain" json:"info,omitempty"`
}

// RequestHeaders returns the headers authenticating later calls.
func (c Credentials) RequestHeaders() http.Header {
	return graphql.AuthHeader(c.Token)
}

// Session returns the connector session of the signed-in user.
func (c Credentials) Session() connector.Session {
	return connector.Session{User: c.User, Token: c.Token}
}

// Config holds configuration for an Authenticator.
type Config struct {
	// Endpoint is the absolute URL of the login endpoint.
	Endpoint string
	Timeout  time.Duration
	HTTP     graphql.Doer
	Logger   *slog.Logger
}

// Authenticator posts credentials to the login endpoint.
type Authenticator struct {
	endpoint string
	http     graphql.Doer
	logger   *slog.Logger
}

// New creates an Authenticator.
func New(cfg Config) *Authenticator {
	doer := cfg.HTTP
	if doer == nil {
		doer = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Authenticator{endpoint: cfg.Endpoint, http: doer, logger: logger}
}

// Login exchanges username and password for a token.
func (a *Authenticator) Login(ctx context.Context, username, password string) (*Credentials, error) {
	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return nil, fmt.Errorf("marshaling login body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(graphql.RequestIDHeader, uuid.NewString())

	resp, err := a.http.Do(req)
	if err != nil {
		return nil, apierror.Transport(0, "login request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierror.Transport(resp.StatusCode, "reading login response", err)
	}

	creds, err := ReadResponse(resp.StatusCode, respBody)
	if err != nil {
		a.logger.Debug("login rejected", "username", username, "status", resp.StatusCode)
		return nil, err
	}
	a.logger.Debug("login succeeded", "username", username, "user", creds.User)
	return creds, nil
}

// ReadResponse interprets a login response. A status of 400 or above is a
// failed login: the payload is normalized so non_field_errors becomes the
// generic message. Server errors stay transport errors.
func ReadResponse(status int, body []byte) (*Credentials, error) {
	if status >= http.StatusBadRequest {
		e := apierror.FromResponse(status, body)
		if status < http.StatusInternalServerError {
			e.Kind = apierror.KindAuth
		}
		return nil, e
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, apierror.Transport(status, "decoding login response", err)
	}

	var creds Credentials
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &creds,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(payload); err != nil {
		return nil, apierror.Transport(status, "decoding login response", err)
	}
	if creds.Token == "" {
		return nil, &apierror.Error{Kind: apierror.KindAuth, Status: status, Message: "login response carries no token"}
	}
	return &creds, nil
}
