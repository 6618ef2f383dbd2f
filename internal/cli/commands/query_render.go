package commands

import (
	"github.com/leapstack-labs/blogadmin/internal/cli/output"
	"github.com/leapstack-labs/blogadmin/internal/connector"
	"github.com/leapstack-labs/blogadmin/internal/graphql"
)

// renderData prints the data of an envelope. In text and markdown mode each
// connection root becomes a table; everything else is printed as a document.
func renderData(r *output.Renderer, data map[string]any) error {
	switch r.EffectiveMode() {
	case output.ModeJSON, output.ModeYAML:
		return r.Value(data)
	}

	roots := output.Columns([]connector.Record{connector.Record(data)})
	rest := map[string]any{}
	for _, root := range roots {
		records, ok := connectionRecords(data[root])
		if !ok {
			rest[root] = data[root]
			continue
		}
		r.Header(2, root)
		if err := r.Records(nil, records); err != nil {
			return err
		}
	}
	if len(rest) == 0 {
		return nil
	}
	return r.Value(rest)
}

// connectionRecords extracts the nodes of a {edges{node}} connection.
func connectionRecords(v any) ([]connector.Record, bool) {
	raw, ok := graphql.Lookup(v, "edges")
	if !ok {
		return nil, false
	}
	edges, ok := raw.([]any)
	if !ok {
		return nil, false
	}
	records := make([]connector.Record, 0, len(edges))
	for _, edge := range edges {
		node, ok := graphql.Lookup(edge, "node")
		if !ok {
			return nil, false
		}
		obj, ok := node.(map[string]any)
		if !ok {
			return nil, false
		}
		records = append(records, connector.Record(obj))
	}
	return records, true
}
