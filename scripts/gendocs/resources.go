package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/blogadmin/internal/blog"
	"github.com/leapstack-labs/blogadmin/internal/connector"
	"github.com/leapstack-labs/blogadmin/internal/pagination"
)

var allOps = []connector.Operation{
	connector.OpList, connector.OpRead, connector.OpCreate, connector.OpUpdate, connector.OpDelete,
}

// generateResourceDocs writes one page listing every registered resource
// and the documents its operations send.
func generateResourceDocs(outDir string) error {
	log.Printf("Generating resource docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	reg, err := blog.NewRegistry()
	if err != nil {
		return err
	}
	page, err := resourcePage(reg)
	if err != nil {
		return err
	}

	log.Printf("  Generated index.md")
	return os.WriteFile(filepath.Join(outDir, "index.md"), page, 0600)
}

func resourcePage(reg *connector.Registry) ([]byte, error) {
	w := NewMarkdownWriter()
	w.Frontmatter("Resources", "Connector resources and the GraphQL they send")
	w.GeneratedMarker()
	w.Header(1, "Resources")

	var rows [][]string
	for _, name := range reg.Names() {
		row := []string{InlineCode(name)}
		for _, op := range allOps {
			mark := ""
			if reg.Supports(name, op) {
				mark = "yes"
			}
			row = append(row, mark)
		}
		rows = append(rows, row)
	}
	w.Table([]string{"Resource", "list", "read", "create", "update", "delete"}, rows)

	for _, name := range reg.Names() {
		w.Header(2, name)
		if d, ok := reg.Descriptor(name); ok && d.OrderBy != "" {
			w.Paragraph(fmt.Sprintf("Lists are ordered by %s.", InlineCode(d.OrderBy)))
		}
		for _, op := range allOps {
			h, err := reg.Lookup(name, op)
			if err != nil {
				continue
			}
			doc, err := h.Query(connector.Request{
				Op:   op,
				ID:   "<id>",
				Page: pagination.Page{First: pagination.DefaultPageSize},
			})
			if err != nil {
				return nil, fmt.Errorf("%s %s: %w", name, op, err)
			}
			w.Header(3, op.String())
			w.CodeBlock("graphql", doc)
		}
	}
	return w.Bytes(), nil
}
