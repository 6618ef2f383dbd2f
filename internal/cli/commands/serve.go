package commands

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/blogadmin/internal/blog"
	"github.com/leapstack-labs/blogadmin/internal/cli/config"
	"github.com/leapstack-labs/blogadmin/internal/server"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Port          int
	SessionSecret string
	Open          bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the admin bridge server",
		Long: `Start the admin bridge: a JSON API mounted under base_path that turns
admin actions into connector calls against the GraphQL backend.

Routes (relative to base_path):
- POST login, POST logout
- GET views, GET views/{path}
- GET|POST api/{resource}, GET|PUT|DELETE api/{resource}/{id}
- GET api/options/{name}`,
		Example: `  # Serve on the default port
  blogadmin serve

  # Custom port and backend
  blogadmin serve --port 3000 --api-url https://blog.example.com

  # Session secret from the environment
  BLOGADMIN_SERVER_SESSION_SECRET=... blogadmin serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	// Read through the config loader as server.port and server.session_secret.
	cmd.Flags().IntVar(&opts.Port, "port", 0, fmt.Sprintf("Port to serve on (default: %d)", config.DefaultPort))
	cmd.Flags().StringVar(&opts.SessionSecret, "session-secret", "", "Cookie signing key")
	cmd.Flags().BoolVar(&opts.Open, "open", false, "Open the bridge in a browser")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	cfg := cmdCtx.Cfg

	views, err := blog.NewViewSet()
	if err != nil {
		return fmt.Errorf("failed to build views: %w", err)
	}

	if cfg.Server.SessionSecret == config.DefaultSessionSecret {
		cmdCtx.Renderer.Warning("using the built-in session secret; set server.session_secret outside development")
	}

	srv := server.NewServer(server.Config{
		Connector:     cmdCtx.Connector,
		Auth:          NewAuthenticator(cfg, cmdCtx.Logger),
		Views:         views,
		Port:          cfg.Server.Port,
		BasePath:      cfg.BasePath,
		PageSize:      cfg.PageSize,
		SessionSecret: cfg.Server.SessionSecret,
		Logger:        cmdCtx.Logger,
	})

	url := fmt.Sprintf("http://localhost:%d%s", cfg.Server.Port, cfg.BasePath)
	if opts.Open {
		go openBrowser(url)
	}

	cmdCtx.Renderer.Success(fmt.Sprintf("Serving admin bridge on %s (backend: %s)", url, cfg.GraphQLEndpoint()))
	cmdCtx.Renderer.Note("Press Ctrl+C to stop")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Serve(ctx)
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(context.Background(), "open", url)
	case "linux":
		cmd = exec.CommandContext(context.Background(), "xdg-open", url)
	case "windows":
		cmd = exec.CommandContext(context.Background(), "rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return
	}

	_ = cmd.Start()
}
