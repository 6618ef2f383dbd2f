package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/blogadmin/internal/blog"
)

func TestResourcePage(t *testing.T) {
	reg, err := blog.NewRegistry()
	require.NoError(t, err)

	page, err := resourcePage(reg)
	require.NoError(t, err)

	md := string(page)
	assert.Contains(t, md, "## tags")
	assert.Contains(t, md, `tag(id: "<id>")`)
	assert.Contains(t, md, "Lists are ordered by `slug`.")
}

func TestGenerateCLIDocs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, generateCLIDocs(dir))

	index, err := os.ReadFile(filepath.Join(dir, "index.md"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "[`list`](/cli/list)")
	assert.Contains(t, string(index), "## Records")

	_, err = os.Stat(filepath.Join(dir, "doctor.md"))
	assert.NoError(t, err)
}

func TestCleanExample(t *testing.T) {
	got := cleanExample("  # list tags\n  blogadmin list tags\n")
	assert.Equal(t, "# list tags\nblogadmin list tags", got)
}

func TestMarkdownWriter_Table(t *testing.T) {
	w := NewMarkdownWriter()
	w.Table([]string{"A", "B"}, [][]string{{"1", cleanDescription("x\n   y")}})
	assert.Contains(t, string(w.Bytes()), "| A | B |")
	assert.Contains(t, string(w.Bytes()), "| 1 | x y |")
}
