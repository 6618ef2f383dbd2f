package connector

import (
	"github.com/leapstack-labs/blogadmin/internal/apierror"
	"github.com/leapstack-labs/blogadmin/internal/graphql"
	"github.com/leapstack-labs/blogadmin/internal/pagination"
)

// ListResponse extracts data[root].edges[].node in order, plus the next
// cursor. A missing or malformed connection is a configuration defect and is
// never read as an empty list.
func ListResponse(root string) ResponseTransform {
	return func(_ Session, env *graphql.Envelope) (*Result, error) {
		nodes, err := connectionNodes(env, root)
		if err != nil {
			return nil, err
		}
		records := make([]Record, 0, len(nodes))
		for _, node := range nodes {
			records = append(records, Record(node))
		}
		next, err := pagination.NextCursor(env.Data, root)
		if err != nil {
			return nil, apierror.Configf("%v", err)
		}
		return &Result{Records: records, Next: next}, nil
	}
}

// ReadResponse returns data[field] unchanged. A null or absent entity is the
// one place absence is a user-facing condition: it yields KindNotFound with
// notFound as message.
func ReadResponse(field, notFound string) ResponseTransform {
	return func(_ Session, env *graphql.Envelope) (*Result, error) {
		v, _ := env.Field(field)
		if v == nil {
			return nil, apierror.NotFound(notFound)
		}
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, apierror.Configf("field %q is %T, want object", field, v)
		}
		return &Result{Record: Record(obj)}, nil
	}
}

// MutationResponse handles the backend's dual-channel mutation payload:
// data[field] carries a sibling errors list next to data[field][resultKey].
// A non-empty errors list wins over any result object.
func MutationResponse(field, resultKey string) ResponseTransform {
	return func(_ Session, env *graphql.Envelope) (*Result, error) {
		v, _ := env.Field(field)
		payload, ok := v.(map[string]any)
		if !ok {
			return nil, apierror.Configf("mutation payload %q is %T, want object", field, v)
		}
		if errs := payload["errors"]; hasErrors(errs) {
			e := apierror.Normalize(errs)
			if e.Kind != apierror.KindConfig {
				e.Kind = apierror.KindValidation
			}
			return nil, e
		}
		obj, ok := payload[resultKey].(map[string]any)
		if !ok {
			return nil, apierror.Configf("mutation %q returned no errors and no %q", field, resultKey)
		}
		return &Result{Record: Record(obj)}, nil
	}
}

// PassthroughResponse returns the envelope data as is. Deletes only need an
// acknowledgement.
func PassthroughResponse() ResponseTransform {
	return func(_ Session, env *graphql.Envelope) (*Result, error) {
		return &Result{Data: env.Data}, nil
	}
}

// OptionsResponse maps connection nodes to select options.
func OptionsResponse(root, valueField, labelField string) ResponseTransform {
	return func(_ Session, env *graphql.Envelope) (*Result, error) {
		nodes, err := connectionNodes(env, root)
		if err != nil {
			return nil, err
		}
		opts := make([]Option, 0, len(nodes))
		for _, node := range nodes {
			label, _ := node[labelField].(string)
			opts = append(opts, Option{Value: node[valueField], Label: label})
		}
		return &Result{Options: opts}, nil
	}
}

// IdentityRequest projects a record to its id.
func IdentityRequest() RequestTransform {
	return func(_ Session, data Record) Record {
		return Record{"id": data["id"]}
	}
}

// FlattenRelations replaces nested {id, ...} objects, and lists of them, by
// bare ids. Relations are read with labels but written back as ids.
func FlattenRelations() RequestTransform {
	return func(_ Session, data Record) Record {
		out := make(Record, len(data))
		for k, v := range data {
			out[k] = flatten(v)
		}
		return out
	}
}

// DefaultField sets field to the value returned by fn when the payload does
// not already carry one. fn returning nil leaves the payload unchanged.
func DefaultField(field string, fn func(s Session) any) RequestTransform {
	return func(s Session, data Record) Record {
		if v, ok := data[field]; ok && v != nil && v != "" {
			return data
		}
		value := fn(s)
		if value == nil {
			return data
		}
		out := data.Clone()
		if out == nil {
			out = Record{}
		}
		out[field] = value
		return out
	}
}

// Chain applies transforms left to right. Nil entries are skipped.
func Chain(transforms ...RequestTransform) RequestTransform {
	return func(s Session, data Record) Record {
		for _, t := range transforms {
			if t != nil {
				data = t(s, data)
			}
		}
		return data
	}
}

func flatten(v any) any {
	switch val := v.(type) {
	case map[string]any:
		if id, ok := val["id"]; ok {
			return id
		}
		return val
	case Record:
		if id, ok := val["id"]; ok {
			return id
		}
		return val
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = flatten(item)
		}
		return out
	default:
		return v
	}
}

func connectionNodes(env *graphql.Envelope, root string) ([]map[string]any, error) {
	v, _ := env.Field(root)
	conn, ok := v.(map[string]any)
	if !ok {
		return nil, apierror.Configf("connection %q is %T, want object", root, v)
	}
	edges, ok := conn["edges"].([]any)
	if !ok {
		return nil, apierror.Configf("connection %q has no edges list", root)
	}
	nodes := make([]map[string]any, 0, len(edges))
	for i, edge := range edges {
		node, _ := graphql.Lookup(edge, "node")
		obj, ok := node.(map[string]any)
		if !ok {
			return nil, apierror.Configf("edge %d of %q has no node", i, root)
		}
		nodes = append(nodes, obj)
	}
	return nodes, nil
}

func hasErrors(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	case string:
		return val != ""
	default:
		return true
	}
}
