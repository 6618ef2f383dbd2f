package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/leapstack-labs/blogadmin/internal/cli/config"
)

// configKey documents one blogadmin.yaml key.
type configKey struct {
	Name        string
	Type        string
	Default     string
	Description string
}

func configSchema() []configKey {
	return []configKey{
		{Name: "api_url", Type: "string", Default: config.DefaultAPIURL, Description: "Backend base URL"},
		{Name: "graphql_path", Type: "string", Default: config.DefaultGraphQLPath, Description: "GraphQL endpoint path"},
		{Name: "login_path", Type: "string", Default: config.DefaultLoginPath, Description: "Login endpoint path"},
		{Name: "base_path", Type: "string", Default: config.DefaultBasePath, Description: "Admin base path, the bridge mounts its API here"},
		{Name: "token", Type: "string", Description: "API token; ${VAR} is expanded"},
		{Name: "user", Type: "string", Description: "Id of the logged-in user, used as entry owner"},
		{Name: "page_size", Type: "int", Default: strconv.Itoa(config.DefaultPageSize), Description: "Records per list page"},
		{Name: "timeout", Type: "duration", Default: config.DefaultTimeout, Description: "Backend request timeout"},
		{Name: "verbose", Type: "bool", Default: "false", Description: "Debug logging"},
		{Name: "output", Type: "string", Default: config.DefaultOutput, Description: "auto, text, markdown, json or yaml"},
		{Name: "server.port", Type: "int", Default: strconv.Itoa(config.DefaultPort), Description: "Bridge listen port"},
		{Name: "server.session_secret", Type: "string", Description: "Cookie signing secret; ${VAR} is expanded"},
	}
}

func generateConfigDocs(outDir string) error {
	log.Printf("Generating configuration docs to %s", outDir)
	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	w := NewMarkdownWriter()
	w.Frontmatter("Configuration", "blogadmin configuration reference")
	w.GeneratedMarker()
	w.Header(1, "Configuration")
	w.Paragraph("blogadmin reads blogadmin.yaml (or blogadmin.yml) from the working directory, then BLOGADMIN_ environment variables, then flags.")

	var rows [][]string
	for _, k := range configSchema() {
		def := ""
		if k.Default != "" {
			def = InlineCode(k.Default)
		}
		rows = append(rows, []string{InlineCode(k.Name), k.Type, def, k.Description})
	}
	w.Table([]string{"Key", "Type", "Default", "Description"}, rows)

	w.Header(2, "Example")
	w.CodeBlock("yaml", `api_url: https://blog.example.com
token: ${BLOG_TOKEN}
user: "1"
page_size: 50
server:
  port: 8765
  session_secret: ${BLOGADMIN_SECRET}`)

	log.Printf("  Generated configuration.md")
	return os.WriteFile(filepath.Join(outDir, "configuration.md"), w.Bytes(), 0600)
}
