// Package account provides sign-in and sign-out for the bridge.
package account

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/blogadmin/internal/auth"
	"github.com/leapstack-labs/blogadmin/internal/server/features/common"
)

// Authenticator signs a user in. *auth.Authenticator implements it.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*auth.Credentials, error)
}

// Handlers provides HTTP handlers for the account feature.
type Handlers struct {
	auth         Authenticator
	sessionStore sessions.Store
	logger       *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(a Authenticator, sessionStore sessions.Store, logger *slog.Logger) *Handlers {
	return &Handlers{auth: a, sessionStore: sessionStore, logger: logger}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse mirrors what the admin front end expects after sign-in.
type LoginResponse struct {
	RequestHeaders map[string]string `json:"requestHeaders"`
	User           string            `json:"user"`
	Username       string            `json:"username,omitempty"`
	Info           map[string]any    `json:"info,omitempty"`
}

// Login forwards the credentials to the backend and keeps the token in the
// cookie session.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.BadRequest(w, h.logger, "body", "must be a JSON object")
		return
	}

	creds, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	if err := common.SaveSession(h.sessionStore, w, r, creds.Token, creds.User); err != nil {
		common.WriteError(w, h.logger, err)
		return
	}

	hdr := creds.RequestHeaders()
	headers := make(map[string]string, len(hdr))
	for key := range hdr {
		headers[key] = hdr.Get(key)
	}
	h.logger.Info("user signed in", "user", creds.User)
	common.WriteJSON(w, http.StatusOK, LoginResponse{
		RequestHeaders: headers,
		User:           creds.User,
		Username:       creds.Username,
		Info:           creds.Info,
	})
}

// Logout drops the session.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := common.ClearSession(h.sessionStore, w, r); err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
