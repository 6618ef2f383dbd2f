package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/blogadmin/internal/blog"
	"github.com/leapstack-labs/blogadmin/internal/connector"
	"github.com/leapstack-labs/blogadmin/internal/view"
)

// resolvedView is the output of "views <path>".
type resolvedView struct {
	View   view.Resolved     `json:"view" yaml:"view"`
	Params map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
	Record connector.Record  `json:"record,omitempty" yaml:"record,omitempty"`
}

// NewViewsCommand creates the views command.
func NewViewsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "views [path]",
		Short: "List admin views or show one resolved for the current user",
		Long: `Without arguments, list every admin view.

With a path, resolve the matching view for the configured user: hidden and
read-only predicates are evaluated, change views are evaluated against the
stored record, add views against their initial values.`,
		Example: `  blogadmin views
  blogadmin views users/VXNlcjox
  blogadmin views tags/new --output json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := blog.NewViewSet()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				cmdCtx := NewCommandContextWithoutBackend(cmd)
				return listViews(cmdCtx, set)
			}
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			return showView(cmd, cmdCtx, set, args[0])
		},
	}
}

func listViews(cmdCtx *CommandContext, set *view.Set) error {
	all := set.All()
	records := make([]connector.Record, 0, len(all))
	for _, v := range all {
		records = append(records, connector.Record{
			"path":     v.Path,
			"title":    v.Title,
			"kind":     string(v.Kind),
			"resource": v.Resource,
		})
	}
	return cmdCtx.Renderer.Records([]string{"path", "title", "kind", "resource"}, records)
}

func showView(cmd *cobra.Command, cmdCtx *CommandContext, set *view.Set, path string) error {
	v, params, ok := set.Match(path)
	if !ok {
		return fmt.Errorf("no view matches %q", path)
	}

	s := cmdCtx.Session
	s.Params = params

	var record connector.Record
	switch v.Kind {
	case view.KindChange:
		if id := params["id"]; id != "" {
			rec, err := cmdCtx.Connector.Read(cmd.Context(), s, v.Resource, id)
			if err != nil {
				return err
			}
			record = rec
		}
	case view.KindAdd:
		record = v.ApplyDefaults(nil)
	}

	return cmdCtx.Renderer.Value(resolvedView{
		View:   v.Resolve(s, record),
		Params: params,
		Record: record,
	})
}
