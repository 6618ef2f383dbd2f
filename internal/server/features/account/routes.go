package account

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
)

// SetupRoutes configures routes for the account feature.
func SetupRoutes(router chi.Router, a Authenticator, sessionStore sessions.Store, logger *slog.Logger) error {
	handlers := NewHandlers(a, sessionStore, logger)

	router.Post("/login", handlers.Login)
	router.Post("/logout", handlers.Logout)

	return nil
}
