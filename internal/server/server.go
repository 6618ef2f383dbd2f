// Package server provides the admin bridge: a JSON API mounted under the
// admin's base path that turns admin actions into connector calls.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/blogadmin/internal/connector"
	"github.com/leapstack-labs/blogadmin/internal/server/features/account"
	"github.com/leapstack-labs/blogadmin/internal/server/router"
	"github.com/leapstack-labs/blogadmin/internal/view"
)

// Server is the admin bridge.
type Server struct {
	connector    *connector.Connector
	auth         account.Authenticator
	views        *view.Set
	sessionStore *sessions.CookieStore
	port         int
	basePath     string
	pageSize     int
	logger       *slog.Logger
}

// Config holds configuration for the bridge.
type Config struct {
	Connector     *connector.Connector
	Auth          account.Authenticator
	Views         *view.Set
	Port          int
	BasePath      string
	PageSize      int
	SessionSecret string
	Logger        *slog.Logger
}

// NewServer creates a new bridge instance.
func NewServer(cfg Config) *Server {
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(86400 * 7) // 7 days
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Server{
		connector:    cfg.Connector,
		auth:         cfg.Auth,
		views:        cfg.Views,
		sessionStore: sessionStore,
		port:         cfg.Port,
		basePath:     cfg.BasePath,
		pageSize:     cfg.PageSize,
		logger:       logger,
	}
}

// Handler returns the bridge's routes mounted under the base path.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	mount := "/" + strings.Trim(s.basePath, "/")
	var setupErr error
	r.Route(mount, func(sub chi.Router) {
		setupErr = router.SetupRoutes(sub, router.Deps{
			Connector:    s.connector,
			Auth:         s.auth,
			Views:        s.views,
			SessionStore: s.sessionStore,
			PageSize:     s.pageSize,
			Logger:       s.logger,
		})
	})
	if setupErr != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", setupErr)
	}
	return r, nil
}

// Serve starts the bridge and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting admin bridge", "addr", fmt.Sprintf("http://localhost:%d%s", s.port, s.basePath))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down admin bridge...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
