// Package router sets up HTTP routes for the bridge server.
package router

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/blogadmin/internal/connector"
	accountFeature "github.com/leapstack-labs/blogadmin/internal/server/features/account"
	resourcesFeature "github.com/leapstack-labs/blogadmin/internal/server/features/resources"
	viewsFeature "github.com/leapstack-labs/blogadmin/internal/server/features/views"
	"github.com/leapstack-labs/blogadmin/internal/view"
)

// Deps holds what the features need.
type Deps struct {
	Connector    *connector.Connector
	Auth         accountFeature.Authenticator
	Views        *view.Set
	SessionStore sessions.Store
	PageSize     int
	Logger       *slog.Logger
}

// SetupRoutes configures all routes of the bridge on router.
func SetupRoutes(router chi.Router, d Deps) error {
	if err := accountFeature.SetupRoutes(router, d.Auth, d.SessionStore, d.Logger); err != nil {
		return err
	}

	if err := viewsFeature.SetupRoutes(router, d.Views, d.Connector, d.SessionStore, d.Logger); err != nil {
		return err
	}

	if err := resourcesFeature.SetupRoutes(router, d.Connector, d.Views, d.SessionStore, d.PageSize, d.Logger); err != nil {
		return err
	}

	return nil
}
