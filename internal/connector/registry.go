package connector

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/leapstack-labs/blogadmin/internal/apierror"
	"github.com/leapstack-labs/blogadmin/internal/pagination"
	"github.com/leapstack-labs/blogadmin/internal/query"
)

// Descriptor declares a resource once at startup. The registry derives its
// queries, mutations and default transforms from it.
type Descriptor struct {
	// Name is the collection name used in routes, e.g. "tags".
	Name string
	// Singular is the entity field of single reads, e.g. "tag".
	Singular string
	// TypeName is the GraphQL type stem of mutations: createTag, CreateTagInput.
	TypeName string
	// ResultKey is the payload key of mutation results. Defaults to Singular.
	ResultKey string
	// Label names the resource in messages. Defaults to Singular.
	Label string

	// ListRoot is the connection field of list reads, e.g. "allTags".
	ListRoot   string
	ListFields string
	// ListArgs are static list arguments such as a page size.
	ListArgs []query.Arg
	// OrderBy is the stable ordering field cursors rely on.
	OrderBy string

	DetailFields string
	// CreateFields and UpdateFields select the mutation result. Both default
	// to DetailFields.
	CreateFields string
	UpdateFields string

	// ReadOnly resources register only list and read.
	ReadOnly bool

	// CreateRequest and UpdateRequest run after relations are flattened.
	CreateRequest RequestTransform
	UpdateRequest RequestTransform
}

func (d Descriptor) withDefaults() Descriptor {
	if d.ResultKey == "" {
		d.ResultKey = d.Singular
	}
	if d.Label == "" {
		d.Label = d.Singular
	}
	if d.CreateFields == "" {
		d.CreateFields = d.DetailFields
	}
	if d.UpdateFields == "" {
		d.UpdateFields = d.DetailFields
	}
	return d
}

// NotFoundMessage is the message of a single read that matched nothing.
func (d Descriptor) NotFoundMessage() string {
	return fmt.Sprintf("The requested %s was not found", d.withDefaults().Label)
}

// Validate checks the descriptor is complete.
func (d Descriptor) Validate() error {
	var missing []string
	if d.Name == "" {
		missing = append(missing, "name")
	}
	if d.ListRoot != "" {
		if d.ListFields == "" {
			missing = append(missing, "list fields")
		}
		if d.OrderBy == "" {
			missing = append(missing, "ordering field")
		}
	}
	if d.Singular != "" && d.DetailFields == "" {
		missing = append(missing, "detail fields")
	}
	if !d.ReadOnly && d.Singular != "" && d.TypeName == "" {
		missing = append(missing, "type name")
	}
	if len(missing) > 0 {
		return fmt.Errorf("resource %q: missing %s", d.Name, strings.Join(missing, ", "))
	}
	return nil
}

type resource struct {
	desc     Descriptor
	handlers map[Operation]Handler
}

// Registry maps resource × operation to a Handler. It is built at startup
// and read-only afterwards.
type Registry struct {
	resources map[string]*resource
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{resources: make(map[string]*resource)}
}

// Add registers the default handlers derived from d.
func (r *Registry) Add(d Descriptor) error {
	if err := d.Validate(); err != nil {
		return err
	}
	d = d.withDefaults()
	if _, exists := r.resources[d.Name]; exists {
		return fmt.Errorf("resource %q already registered", d.Name)
	}
	res := &resource{desc: d, handlers: make(map[Operation]Handler)}
	r.resources[d.Name] = res

	if d.ListRoot != "" {
		res.handlers[OpList] = Handler{
			Query:    listQuery(d.ListRoot, d.ListFields, d.ListArgs, d.OrderBy),
			Response: ListResponse(d.ListRoot),
		}
	}
	if d.Singular == "" {
		return nil
	}
	res.handlers[OpRead] = Handler{
		Query:    templateQuery(query.Single(d.Singular, d.DetailFields)),
		Response: ReadResponse(d.Singular, d.NotFoundMessage()),
	}
	if d.ReadOnly {
		return nil
	}
	res.handlers[OpCreate] = Handler{
		Query:    templateQuery(query.Mutation("create"+d.TypeName, "Create"+d.TypeName+"Input", d.ResultKey, d.CreateFields)),
		Request:  Chain(FlattenRelations(), d.CreateRequest),
		Response: MutationResponse("create"+d.TypeName, d.ResultKey),
	}
	res.handlers[OpUpdate] = Handler{
		Query:    templateQuery(query.Mutation("change"+d.TypeName, "Change"+d.TypeName+"Input", d.ResultKey, d.UpdateFields)),
		Request:  Chain(FlattenRelations(), d.UpdateRequest),
		Response: MutationResponse("change"+d.TypeName, d.ResultKey),
	}
	res.handlers[OpDelete] = Handler{
		Query:    templateQuery(query.DeleteMutation("delete"+d.TypeName, "Delete"+d.TypeName+"Input")),
		Request:  IdentityRequest(),
		Response: PassthroughResponse(),
	}
	return nil
}

// AddOptions registers a read-only connector returning select options from
// the nodes of root, ordered by orderBy.
func (r *Registry) AddOptions(name, root, fields, orderBy string) error {
	if _, exists := r.resources[name]; exists {
		return fmt.Errorf("resource %q already registered", name)
	}
	if orderBy == "" {
		return fmt.Errorf("resource %q: missing ordering field", name)
	}
	d := Descriptor{Name: name, ListRoot: root, ListFields: fields, OrderBy: orderBy, ReadOnly: true}
	r.resources[name] = &resource{desc: d, handlers: map[Operation]Handler{
		OpList: {
			Query:    listQuery(root, fields, nil, orderBy),
			Response: OptionsResponse(root, "id", "name"),
		},
	}}
	return nil
}

// Lookup returns the handler for name and op.
func (r *Registry) Lookup(name string, op Operation) (Handler, error) {
	res, ok := r.resources[name]
	if !ok {
		return Handler{}, fmt.Errorf("unknown resource %q", name)
	}
	h, ok := res.handlers[op]
	if !ok {
		return Handler{}, fmt.Errorf("resource %q does not support %s", name, op)
	}
	return h, nil
}

// Descriptor returns the descriptor registered under name.
func (r *Registry) Descriptor(name string) (Descriptor, bool) {
	res, ok := r.resources[name]
	if !ok {
		return Descriptor{}, false
	}
	return res.desc, true
}

// Supports reports whether name has a handler for op.
func (r *Registry) Supports(name string, op Operation) bool {
	_, err := r.Lookup(name, op)
	return err == nil
}

// Names returns the registered resource names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.resources))
	for name := range r.resources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FilterField is the field a rejected list argument is reported under.
const FilterField = "filter"

func listQuery(root, fields string, static []query.Arg, orderBy string) QueryFunc {
	return func(req Request) (string, error) {
		args := make([]query.Arg, 0, len(static)+len(req.Filters)+3)
		args = append(args, static...)
		order := orderBy
		if req.OrderBy != "" {
			order = req.OrderBy
		}
		args = append(args, query.Arg{Name: "orderBy", Value: order})
		args = append(args, req.Filters...)
		args = append(args, pagination.Args(req.Page)...)
		doc, err := query.BuildList(root, fields, args...)
		var nameErr *query.ArgNameError
		if errors.As(err, &nameErr) {
			return "", apierror.Invalid(FilterField, nameErr.Error())
		}
		return doc, err
	}
}

func templateQuery(t query.Template) QueryFunc {
	return func(req Request) (string, error) {
		if !t.NeedsID() {
			return string(t), nil
		}
		if req.ID == "" {
			return "", fmt.Errorf("%s requires an id", req.Op)
		}
		return t.Bind(req.ID), nil
	}
}
