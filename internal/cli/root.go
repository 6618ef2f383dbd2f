// Package cli provides the command-line interface for blogadmin.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/blogadmin/internal/cli/commands"
	"github.com/leapstack-labs/blogadmin/internal/cli/config"
	"github.com/leapstack-labs/blogadmin/internal/cli/output"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "blogadmin",
		Short: "blogadmin - GraphQL connector layer for the blog admin",
		Long: `blogadmin turns admin actions on users, sections, categories, tags,
entries and links into GraphQL documents for the blog backend, and turns the
answers back into flat records, options and field errors.

Use it from the shell, or run 'blogadmin serve' to expose the same
connectors as a JSON API for the admin frontend.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.LoadConfig(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}

			logger := config.NewLogger(cmd.ErrOrStderr(), cfg.Verbose)
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = commands.WithConfig(ctx, cfg)
			ctx = context.WithValue(ctx, config.LoggerKey(), logger)
			ctx = commands.WithRenderer(ctx, output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat)))
			cmd.SetContext(ctx)

			if configFile := config.GetConfigFileUsed(); configFile != "" {
				logger.Debug("using config file", "path", configFile)
			}
			logger.Debug("backend", "graphql", cfg.GraphQLEndpoint(), "login", cfg.LoginEndpoint())

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
GraphQL connector layer for the blog admin
`)

	// Global persistent flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./blogadmin.yaml)")
	pf.String("api-url", "", "Backend base URL (default "+config.DefaultAPIURL+")")
	pf.String("graphql-path", "", "GraphQL endpoint path")
	pf.String("login-path", "", "Login endpoint path")
	pf.String("base-path", "", "Admin base path")
	pf.String("token", "", "API token sent as 'Authorization: Token <token>'")
	pf.String("user", "", "Id of the logged-in user")
	pf.Int("page-size", 0, "Records per list page")
	pf.Duration("timeout", 0, "Backend request timeout")
	pf.BoolP("verbose", "v", false, "Verbose output")
	pf.StringP("output", "o", "", "Output format (auto|text|markdown|json|yaml)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "text", "markdown", "json", "yaml"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddGroup(
		&cobra.Group{ID: "records", Title: "Records:"},
		&cobra.Group{ID: "admin", Title: "Admin:"},
	)
	for _, c := range []*cobra.Command{
		commands.NewListCommand(),
		commands.NewGetCommand(),
		commands.NewCreateCommand(),
		commands.NewUpdateCommand(),
		commands.NewDeleteCommand(),
		commands.NewOptionsCommand(),
	} {
		c.GroupID = "records"
		rootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{
		commands.NewLoginCommand(),
		commands.NewViewsCommand(),
		commands.NewQueryCommand(),
		commands.NewServeCommand(),
		commands.NewDoctorCommand(),
	} {
		c.GroupID = "admin"
		rootCmd.AddCommand(c)
	}
	rootCmd.AddCommand(commands.NewVersionCommand(commands.BuildInfo{Version: Version, GitCommit: GitCommit, BuildDate: BuildDate}))
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for blogadmin.

Resource arguments of list, get, create, update and delete complete to the
registered resources.

To load completions:

Bash:
  $ source <(blogadmin completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ blogadmin completion bash > /etc/bash_completion.d/blogadmin
  # macOS:
  $ blogadmin completion bash > $(brew --prefix)/etc/bash_completion.d/blogadmin

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ blogadmin completion zsh > "${fpath[1]}/_blogadmin"

Fish:
  $ blogadmin completion fish | source

  # To load completions for each session, execute once:
  $ blogadmin completion fish > ~/.config/fish/completions/blogadmin.fish

PowerShell:
  PS> blogadmin completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
