package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/leapstack-labs/blogadmin/internal/graphql"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	File string
	Vars []string
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [document]",
		Short: "Send a raw GraphQL document to the backend",
		Long: `Send a raw GraphQL query or mutation to the configured endpoint and print
the response data. Connection results ({edges{node{...}}}) are shown as a
table.

Without a document, the query is read from --file or stdin; when stdin is a
terminal an interactive REPL is started instead.`,
		Example: `  # One-off query
  blogadmin query '{allTags(first: 5){edges{node{id, name}}}}'

  # Mutation with variables
  blogadmin query 'mutation ($input: CreateTagInput!) {createTag(input: $input){errors tag{id}}}' \
    --var 'input={"name": "Go"}'

  # Interactive
  blogadmin query`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "F", "", "Read the document from a file")
	cmd.Flags().StringArrayVar(&opts.Vars, "var", nil, "Variable (name=value, JSON values allowed, repeatable)")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	vars, err := parseVars(opts.Vars)
	if err != nil {
		return err
	}

	var doc string
	switch {
	case len(args) == 1:
		doc = args[0]
	case opts.File != "":
		b, err := os.ReadFile(opts.File)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", opts.File, err)
		}
		doc = string(b)
	default:
		if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return runQueryREPL(cmd, cmdCtx)
		}
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		doc = string(b)
	}

	doc = strings.TrimSpace(doc)
	if doc == "" {
		return fmt.Errorf("empty GraphQL document")
	}
	return executeAndRender(cmd, cmdCtx, graphql.Request{Query: doc, Variables: vars})
}

func parseVars(raw []string) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	vars := make(map[string]any, len(raw))
	for _, kv := range raw {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --var %q: expected name=value", kv)
		}
		vars[name] = parseValue(value)
	}
	return vars, nil
}

// executeAndRender sends req and renders the envelope data. Envelope errors
// are returned after any partial data has been printed.
func executeAndRender(cmd *cobra.Command, cmdCtx *CommandContext, req graphql.Request) error {
	env, err := cmdCtx.Client.Do(cmd.Context(), req, cmdCtx.Session.Header())
	if err != nil {
		return err
	}
	if env.Data != nil {
		if err := renderData(cmdCtx.Renderer, env.Data); err != nil {
			return err
		}
	}
	return env.Err()
}
