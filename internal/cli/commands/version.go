package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// BuildInfo is stamped into the binary at build time.
type BuildInfo struct {
	Version   string
	GitCommit string
	BuildDate string
}

// NewVersionCommand creates the version command.
func NewVersionCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display blogadmin version and build information.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "blogadmin v%s\n", info.Version)
			_, _ = fmt.Fprintln(w, "GraphQL connector layer for the blog admin")
			if info.GitCommit != "" && info.GitCommit != "unknown" {
				_, _ = fmt.Fprintf(w, "  commit: %s\n", info.GitCommit)
			}
			if info.BuildDate != "" && info.BuildDate != "unknown" {
				_, _ = fmt.Fprintf(w, "  built:  %s\n", info.BuildDate)
			}
			_, _ = fmt.Fprintf(w, "  go:     %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
