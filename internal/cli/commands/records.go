package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/blogadmin/internal/apierror"
	"github.com/leapstack-labs/blogadmin/internal/blog"
	"github.com/leapstack-labs/blogadmin/internal/connector"
	"github.com/leapstack-labs/blogadmin/internal/pagination"
	"github.com/leapstack-labs/blogadmin/internal/query"
	"github.com/leapstack-labs/blogadmin/internal/view"
)

// ListOptions holds options for the list command.
type ListOptions struct {
	First   int
	After   string
	OrderBy string
	Filters []string
	Columns []string
	All     bool
	Limit   int
}

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	opts := &ListOptions{}

	cmd := &cobra.Command{
		Use:   "list <resource>",
		Short: "List records of a resource",
		Long: `List one page of records of a resource, in backend order.

Without --all only the first page is fetched; the cursor of the next page is
printed so it can be passed to --after. With --all pages are followed until
the backend returns no further cursor.`,
		Example: `  # First page of tags
  blogadmin list tags

  # Every entry of a section, newest first
  blogadmin list entries --all --filter section=U2VjdGlvbjox --order-by=-date

  # Continue after a cursor
  blogadmin list tags --after YXJyYXljb25uZWN0aW9uOjE5`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: resourceCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, args[0], opts)
		},
	}

	cmd.Flags().IntVar(&opts.First, "first", 0, "Page size (default: page_size from config)")
	cmd.Flags().StringVar(&opts.After, "after", "", "Cursor to continue from")
	cmd.Flags().StringVar(&opts.OrderBy, "order-by", "", "Override the resource's ordering field")
	cmd.Flags().StringArrayVarP(&opts.Filters, "filter", "f", nil, "Filter argument (key=value, repeatable)")
	cmd.Flags().StringSliceVarP(&opts.Columns, "columns", "c", nil, "Columns to show (default: all)")
	cmd.Flags().BoolVar(&opts.All, "all", false, "Follow cursors until the last page")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Stop after this many records with --all (0 = no limit)")

	return cmd
}

func (o *ListOptions) request(pageSize int) (connector.Request, error) {
	req := connector.Request{
		Op:      connector.OpList,
		Page:    pagination.Page{First: pageSize, After: o.After},
		OrderBy: o.OrderBy,
	}
	if o.First < 0 {
		return req, fmt.Errorf("--first must be positive")
	}
	if o.First > 0 {
		req.Page.First = o.First
	}
	filters := make([]query.Arg, 0, len(o.Filters))
	for _, f := range o.Filters {
		key, value, ok := strings.Cut(f, "=")
		if !ok || key == "" {
			return req, fmt.Errorf("invalid --filter %q: expected key=value", f)
		}
		if !query.ValidName(key) {
			return req, apierror.Invalid(connector.FilterField, (&query.ArgNameError{Name: key}).Error())
		}
		filters = append(filters, query.Arg{Name: key, Value: value})
	}
	sort.SliceStable(filters, func(i, j int) bool { return filters[i].Name < filters[j].Name })
	req.Filters = filters
	return req, nil
}

func runList(cmd *cobra.Command, resource string, opts *ListOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	r := cmdCtx.Renderer

	req, err := opts.request(cmdCtx.Cfg.PageSize)
	if err != nil {
		return err
	}

	var records []connector.Record
	var next string
	if opts.All {
		records, err = cmdCtx.Connector.ListAll(ctx, cmdCtx.Session, resource, req, opts.Limit)
	} else {
		var res *connector.Result
		res, err = cmdCtx.Connector.Do(ctx, cmdCtx.Session, resource, req)
		if res != nil {
			records, next = res.Records, res.Next
		}
	}
	if err != nil {
		return err
	}

	cmdCtx.Logger.Debug("listed records", "resource", resource, "count", len(records), "all", opts.All)

	if v, ok := lookupView(resource); ok && v.Kind == view.KindList {
		records = v.Load(records)
	}
	if err := r.Records(opts.Columns, records); err != nil {
		return err
	}
	if next != "" {
		r.Note(fmt.Sprintf("More records available: --after %s", next))
	}
	return nil
}

// NewGetCommand creates the get command.
func NewGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "get <resource> <id>",
		Short:             "Show one record",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: resourceCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			rec, err := cmdCtx.Connector.Read(cmd.Context(), cmdCtx.Session, args[0], args[1])
			if err != nil {
				return err
			}
			return cmdCtx.Renderer.Record(rec)
		},
	}
}

// NewCreateCommand creates the create command.
func NewCreateCommand() *cobra.Command {
	opts := &DataOptions{}

	cmd := &cobra.Command{
		Use:   "create <resource>",
		Short: "Create a record",
		Long: `Create a record. The payload is checked against the resource's add view
before it is sent; fields the backend does not accept are dropped.`,
		Example: `  blogadmin create tags --set name=Go
  blogadmin create entries --data @entry.json
  echo '{"name": "News"}' | blogadmin create sections --data -`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: resourceCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			resource := args[0]
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			data, err := payload(cmd, opts, resource+"/new")
			if err != nil {
				return err
			}
			rec, err := cmdCtx.Connector.Create(cmd.Context(), cmdCtx.Session, resource, data)
			if err != nil {
				return err
			}
			cmdCtx.Renderer.Success(fmt.Sprintf("Created %s %s", resource, rec.ID()))
			return cmdCtx.Renderer.Record(rec)
		},
	}
	addDataFlags(cmd, opts)
	return cmd
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand() *cobra.Command {
	opts := &DataOptions{}

	cmd := &cobra.Command{
		Use:   "update <resource> <id>",
		Short: "Update a record",
		Long: `Update a record. The payload is checked against the resource's change
view before it is sent; fields the backend does not accept are dropped.`,
		Example: `  blogadmin update tags VGFnOjE= --set name=Golang
  blogadmin update users VXNlcjox --set isActive=false`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: resourceCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			resource, id := args[0], args[1]
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			data, err := payload(cmd, opts, resource+"/:id")
			if err != nil {
				return err
			}
			rec, err := cmdCtx.Connector.Update(cmd.Context(), cmdCtx.Session, resource, id, data)
			if err != nil {
				return err
			}
			cmdCtx.Renderer.Success(fmt.Sprintf("Updated %s %s", resource, id))
			return cmdCtx.Renderer.Record(rec)
		},
	}
	addDataFlags(cmd, opts)
	return cmd
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "delete <resource> <id>",
		Short:             "Delete a record",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: resourceCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			resource, id := args[0], args[1]
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			data, err := cmdCtx.Connector.Delete(cmd.Context(), cmdCtx.Session, resource, id)
			if err != nil {
				return err
			}
			cmdCtx.Renderer.Success(fmt.Sprintf("Deleted %s %s", resource, id))
			if data == nil {
				return nil
			}
			return cmdCtx.Renderer.Value(data)
		},
	}
}

// payload reads the data flags and runs the view's rules.
func payload(cmd *cobra.Command, opts *DataOptions, viewPath string) (connector.Record, error) {
	data, err := opts.record(cmd.InOrStdin())
	if err != nil {
		return nil, err
	}
	v, ok := lookupView(viewPath)
	if !ok {
		return data, nil
	}
	if err := v.Validate(data); err != nil {
		return nil, err
	}
	return v.Save(data), nil
}

// lookupView returns the blog admin view registered at path.
func lookupView(path string) (view.View, bool) {
	set, err := blog.NewViewSet()
	if err != nil {
		return view.View{}, false
	}
	return set.Get(path)
}
