package config

import (
	"fmt"
	"net/url"
	"strings"
)

// validOutputs lists the accepted values of the output key.
var validOutputs = []string{"auto", "text", "markdown", "json", "yaml"}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api_url must be an absolute URL, got %q", c.APIURL)
	}

	if !strings.HasPrefix(c.BasePath, "/") || !strings.HasSuffix(c.BasePath, "/") {
		return fmt.Errorf("base_path must start and end with \"/\", got %q\nHint: use e.g. --base-path /crudl-graphql/", c.BasePath)
	}

	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}

	valid := false
	for _, o := range validOutputs {
		if c.OutputFormat == o {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("unknown output format %q (available: %s)", c.OutputFormat, strings.Join(validOutputs, ", "))
	}

	return nil
}
