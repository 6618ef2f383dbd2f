package resources

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/blogadmin/internal/view"
)

// SetupRoutes configures routes for the resources feature.
func SetupRoutes(router chi.Router, backend Backend, views *view.Set, sessionStore sessions.Store, pageSize int, logger *slog.Logger) error {
	handlers := NewHandlers(backend, views, sessionStore, pageSize, logger)

	router.Route("/api", func(r chi.Router) {
		r.Get("/options/{name}", handlers.Options)
		r.Get("/{resource}", handlers.List)
		r.Post("/{resource}", handlers.Create)
		r.Get("/{resource}/{id}", handlers.Read)
		r.Put("/{resource}/{id}", handlers.Update)
		r.Delete("/{resource}/{id}", handlers.Delete)
	})

	return nil
}
