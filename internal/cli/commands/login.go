package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/leapstack-labs/blogadmin/internal/cli/output"
	"github.com/leapstack-labs/blogadmin/internal/connector"
)

// LoginOptions holds options for the login command.
type LoginOptions struct {
	Username      string
	Password      string
	PasswordStdin bool
}

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	opts := &LoginOptions{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Exchange username and password for a token",
		Long: `Log in against the backend's login endpoint and print the token.

The token and user id can be exported as BLOGADMIN_TOKEN and BLOGADMIN_USER
so later commands call the backend as that user.`,
		Example: `  blogadmin login --username admin
  echo "$PASSWORD" | blogadmin login --username admin --password-stdin
  eval "$(blogadmin login -u admin --output text | grep ^export)"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogin(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Username, "username", "u", "", "Username (required)")
	cmd.Flags().StringVarP(&opts.Password, "password", "p", "", "Password (prompted when omitted)")
	cmd.Flags().BoolVar(&opts.PasswordStdin, "password-stdin", false, "Read the password from stdin")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

func runLogin(cmd *cobra.Command, opts *LoginOptions) error {
	cmdCtx := NewCommandContextWithoutBackend(cmd)
	r := cmdCtx.Renderer

	password, err := readPassword(cmd, opts)
	if err != nil {
		return err
	}

	creds, err := NewAuthenticator(cmdCtx.Cfg, cmdCtx.Logger).Login(cmd.Context(), opts.Username, password)
	if err != nil {
		return err
	}

	r.Success(fmt.Sprintf("Logged in as %s", creds.Username))
	if err := r.Record(connector.Record{
		"token":    creds.Token,
		"user":     creds.User,
		"username": creds.Username,
	}); err != nil {
		return err
	}
	if mode := r.EffectiveMode(); mode != output.ModeJSON && mode != output.ModeYAML {
		r.Println("")
		r.Printf("export BLOGADMIN_TOKEN=%s\n", creds.Token)
		r.Printf("export BLOGADMIN_USER=%s\n", creds.User)
	}
	return nil
}

func readPassword(cmd *cobra.Command, opts *LoginOptions) (string, error) {
	if opts.Password != "" {
		return opts.Password, nil
	}

	if opts.PasswordStdin {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			if err != nil {
				return "", fmt.Errorf("failed to read password from stdin: %w", err)
			}
			return "", fmt.Errorf("empty password on stdin")
		}
		return line, nil
	}

	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}

	return "", fmt.Errorf("password is required\nHint: pass --password, --password-stdin, or run in a terminal")
}
