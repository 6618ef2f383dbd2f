package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/blogadmin/internal/blog"
)

// NewOptionsCommand creates the options command.
func NewOptionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "options <name>",
		Short: "Show the choices of an option connector",
		Example: `  blogadmin options sectionsOptions
  blogadmin options tagsOptions --output json`,
		Args: cobra.ExactArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return []string{blog.SectionsOptions, blog.CategoriesOptions, blog.TagsOptions}, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			name := args[0]
			if !strings.HasSuffix(name, "Options") {
				name += "Options"
			}
			opts, err := cmdCtx.Connector.Options(cmd.Context(), cmdCtx.Session, name)
			if err != nil {
				return err
			}
			return cmdCtx.Renderer.Options(opts)
		},
	}
}
