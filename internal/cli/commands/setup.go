package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/blogadmin/internal/auth"
	"github.com/leapstack-labs/blogadmin/internal/blog"
	"github.com/leapstack-labs/blogadmin/internal/cli/config"
	"github.com/leapstack-labs/blogadmin/internal/cli/output"
	"github.com/leapstack-labs/blogadmin/internal/connector"
	"github.com/leapstack-labs/blogadmin/internal/graphql"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg       *config.Config
	Logger    *slog.Logger
	Renderer  *output.Renderer
	Client    *graphql.Client
	Connector *connector.Connector
	Session   connector.Session
}

// NewCommandContext creates a CommandContext with a connector over the
// configured GraphQL endpoint.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cmdCtx := NewCommandContextWithoutBackend(cmd)
	cfg := cmdCtx.Cfg

	reg, err := blog.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to build registry: %w", err)
	}

	cmdCtx.Client = graphql.NewClient(graphql.Config{
		Endpoint: cfg.GraphQLEndpoint(),
		Timeout:  cfg.Timeout,
		Logger:   cmdCtx.Logger,
	})
	cmdCtx.Connector = connector.New(reg, cmdCtx.Client, cmdCtx.Logger)
	cmdCtx.Session = connector.Session{User: cfg.User, Token: cfg.Token}

	if cfg.Token == "" {
		cmdCtx.Logger.Debug("no token configured, calling the backend anonymously")
	}
	return cmdCtx, nil
}

// NewCommandContextWithoutBackend creates a CommandContext without a
// connector. Useful for commands that don't call the backend. The config and
// renderer set up by the root command are reused when present.
func NewCommandContextWithoutBackend(cmd *cobra.Command) *CommandContext {
	ctx := cmd.Context()
	cfg := ConfigFromContext(ctx)
	logger := config.GetLogger(ctx)
	r, ok := RendererFromContext(ctx)
	if !ok {
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// NewAuthenticator creates the login client for cfg.
func NewAuthenticator(cfg *config.Config, logger *slog.Logger) *auth.Authenticator {
	return auth.New(auth.Config{
		Endpoint: cfg.LoginEndpoint(),
		Timeout:  cfg.Timeout,
		Logger:   logger,
	})
}

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to defaults.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	cfg, err := config.LoadConfig("", nil)
	if err != nil {
		return &config.Config{
			APIURL:       config.DefaultAPIURL,
			GraphQLPath:  config.DefaultGraphQLPath,
			LoginPath:    config.DefaultLoginPath,
			BasePath:     config.DefaultBasePath,
			PageSize:     config.DefaultPageSize,
			OutputFormat: config.DefaultOutput,
		}
	}
	return cfg
}

// DataOptions holds the payload flags shared by create and update.
type DataOptions struct {
	Data   string
	Fields []string
}

func addDataFlags(cmd *cobra.Command, opts *DataOptions) {
	cmd.Flags().StringVarP(&opts.Data, "data", "d", "", "JSON object payload, @file to read a file, or - for stdin")
	cmd.Flags().StringArrayVarP(&opts.Fields, "set", "s", nil, "Set a field (key=value, repeatable; values are parsed as JSON when possible)")
}

// record builds the payload from --data and --set; --set wins on conflicts.
func (o *DataOptions) record(stdin io.Reader) (connector.Record, error) {
	data := connector.Record{}

	if o.Data != "" {
		raw := []byte(o.Data)
		switch {
		case o.Data == "-":
			b, err := io.ReadAll(stdin)
			if err != nil {
				return nil, fmt.Errorf("failed to read stdin: %w", err)
			}
			raw = b
		case strings.HasPrefix(o.Data, "@"):
			b, err := os.ReadFile(o.Data[1:])
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", o.Data[1:], err)
			}
			raw = b
		}
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("--data must be a JSON object: %w", err)
		}
		if data == nil {
			return nil, fmt.Errorf("--data must be a JSON object")
		}
	}

	for _, kv := range o.Fields {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q: expected key=value", kv)
		}
		data[key] = parseValue(value)
	}
	return data, nil
}

// parseValue decodes JSON literals (numbers, booleans, null, arrays,
// objects) and keeps anything else as a string.
func parseValue(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v
	}
	return s
}

// resourceCompletion completes registered resource names.
func resourceCompletion(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	reg, err := blog.NewRegistry()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return reg.Names(), cobra.ShellCompDirectiveNoFileComp
}
