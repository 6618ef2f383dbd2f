package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/blogadmin/internal/connector"
	"github.com/leapstack-labs/blogadmin/internal/graphql"
	"github.com/leapstack-labs/blogadmin/internal/pagination"
)

const (
	replPrompt    = "graphql> "
	replContinued = "    ...> "
)

func runQueryREPL(cmd *cobra.Command, cmdCtx *CommandContext) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile(),
		AutoComplete:    newResourceCompleter(cmdCtx.Connector.Registry()),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "blogadmin GraphQL REPL (endpoint: %s)\n", cmdCtx.Client.Endpoint())
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	var buf strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			buf.Reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if buf.Len() == 0 && strings.HasPrefix(line, ".") {
			if quit := handleDotCommand(cmd, cmdCtx, line); quit {
				break
			}
			continue
		}

		// Accumulate the document until its braces balance
		buf.WriteString(line)
		buf.WriteString("\n")
		if !documentComplete(buf.String()) {
			rl.SetPrompt(replContinued)
			continue
		}
		rl.SetPrompt(replPrompt)

		doc := strings.TrimSuffix(strings.TrimSpace(buf.String()), ";")
		buf.Reset()

		if err := executeAndRender(cmd, cmdCtx, graphql.Request{Query: doc}); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout())
	}

	return nil
}

// documentComplete reports whether doc has at least one selection set and
// balanced braces outside string literals.
func documentComplete(doc string) bool {
	depth, opened, inString := 0, false, false
	for i := 0; i < len(doc); i++ {
		c := doc[i]
		switch {
		case inString:
			if c == '\\' {
				i++
			} else if c == '"' {
				inString = false
			}
		case c == '"':
			inString = true
		case c == '{':
			depth++
			opened = true
		case c == '}':
			depth--
		}
	}
	return opened && depth <= 0
}

// handleDotCommand runs a REPL command and reports whether to quit.
func handleDotCommand(cmd *cobra.Command, cmdCtx *CommandContext, line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(out)

	case ".resources":
		for _, name := range cmdCtx.Connector.Registry().Names() {
			_, _ = fmt.Fprintln(out, name)
		}

	case ".show":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(errOut, "Usage: .show <resource>")
			return false
		}
		doc, err := listDocument(cmdCtx, parts[1])
		if err != nil {
			_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
			return false
		}
		_, _ = fmt.Fprintln(out, doc)

	case ".list":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(errOut, "Usage: .list <resource>")
			return false
		}
		doc, err := listDocument(cmdCtx, parts[1])
		if err != nil {
			_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
			return false
		}
		if err := executeAndRender(cmd, cmdCtx, graphql.Request{Query: doc}); err != nil {
			_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
		}

	case ".clear":
		_, _ = fmt.Fprint(out, "\033[H\033[2J")

	default:
		_, _ = fmt.Fprintf(errOut, "Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

// listDocument returns the first-page list query of resource.
func listDocument(cmdCtx *CommandContext, resource string) (string, error) {
	h, err := cmdCtx.Connector.Registry().Lookup(resource, connector.OpList)
	if err != nil {
		return "", err
	}
	return h.Query(connector.Request{
		Op:   connector.OpList,
		Page: pagination.Page{First: cmdCtx.Cfg.PageSize},
	})
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help              Show this help message
  .resources         List the registered resources
  .show <resource>   Print the list query of a resource
  .list <resource>   Run the list query of a resource
  .clear             Clear the screen
  .quit / .exit      Exit the REPL

Tips:
  - A document is sent once its braces balance
  - Use arrow keys to navigate history
  - Tab completion works for dot-commands and resource names
`
	_, _ = fmt.Fprintln(w, help)
}

// historyFile returns the REPL history path under the user cache dir, or
// "" (no history) when it cannot be created.
func historyFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	dir = filepath.Join(dir, "blogadmin")
	if err := os.MkdirAll(dir, 0750); err != nil {
		return ""
	}
	return filepath.Join(dir, "query_history")
}

// newResourceCompleter completes dot-commands and their resource argument.
func newResourceCompleter(reg *connector.Registry) *readline.PrefixCompleter {
	var resources []readline.PrefixCompleterInterface
	for _, name := range reg.Names() {
		resources = append(resources, readline.PcItem(name))
	}
	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".resources"),
		readline.PcItem(".show", resources...),
		readline.PcItem(".list", resources...),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}
