package views

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/blogadmin/internal/view"
)

// SetupRoutes configures routes for the views feature.
func SetupRoutes(router chi.Router, views *view.Set, reader Reader, sessionStore sessions.Store, logger *slog.Logger) error {
	handlers := NewHandlers(views, reader, sessionStore, logger)

	router.Get("/views", handlers.Index)
	router.Get("/views/*", handlers.Show)

	return nil
}
