// Package config provides configuration management for the blogadmin CLI.
package config

import (
	"strings"
	"time"
)

// ServerConfig holds configuration for the admin bridge.
type ServerConfig struct {
	Port          int    `koanf:"port"`
	SessionSecret string `koanf:"session_secret"`
}

// Config holds all CLI configuration options.
type Config struct {
	APIURL       string        `koanf:"api_url"`
	GraphQLPath  string        `koanf:"graphql_path"`
	LoginPath    string        `koanf:"login_path"`
	BasePath     string        `koanf:"base_path"`
	Token        string        `koanf:"token"`
	User         string        `koanf:"user"`
	PageSize     int           `koanf:"page_size"`
	Timeout      time.Duration `koanf:"timeout"`
	Verbose      bool          `koanf:"verbose"`
	OutputFormat string        `koanf:"output"`
	Server       ServerConfig  `koanf:"server"`
}

// Default configuration values.
const (
	DefaultAPIURL        = "http://localhost:8000"
	DefaultGraphQLPath   = "/graphql-api/"
	DefaultLoginPath     = "/rest-api/login/"
	DefaultBasePath      = "/crudl-graphql/"
	DefaultPageSize      = 20
	DefaultTimeout       = "30s"
	DefaultOutput        = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultPort          = 8765
	DefaultSessionSecret = "blogadmin-dev-secret-change-me"
)

// GraphQLEndpoint returns the absolute URL of the GraphQL endpoint.
func (c *Config) GraphQLEndpoint() string {
	return joinURL(c.APIURL, c.GraphQLPath)
}

// LoginEndpoint returns the absolute URL of the login endpoint.
func (c *Config) LoginEndpoint() string {
	return joinURL(c.APIURL, c.LoginPath)
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
