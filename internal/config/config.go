package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port string

	// Logging configuration
	LogLevel string

	// MCP backend the gateway talks to
	BackendAPIURL string

	// Server catalog sources
	PresetServers    []ServerPreset // parsed from MCP_SERVERS
	ServersFile      string
	CatalogTableName string

	// AWS configuration
	AWSRegion    string
	AWSAccountID string

	// Workflow execution
	WorkflowWorkers   int
	WorkflowQueueSize int

	// Auth0 configuration (optional)
	Auth0Domain   string
	Auth0Audience string
}

// New creates a new Config instance by loading environment variables
// from .env file (if present) and OS environment.
// OS environment variables take precedence over .env file values.
// Panics if configuration values are invalid.
func New() *Config {
	_ = godotenv.Load(filepath.Join(".", ".env"))

	cfg := &Config{
		Port:     getEnvOrDefault("PORT", "8080"),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),

		BackendAPIURL: getEnvOrDefault("BACKEND_API_URL", "http://localhost:3001/api"),

		PresetServers:    ParseServerPresets(os.Getenv("MCP_SERVERS")),
		ServersFile:      os.Getenv("MCP_SERVERS_FILE"),
		CatalogTableName: os.Getenv("MCP_CATALOG_TABLE"),

		AWSRegion:    getEnvOrDefault("AWS_REGION", "us-east-1"),
		AWSAccountID: os.Getenv("AWS_ACCOUNT_ID"),

		WorkflowWorkers:   getEnvIntOrDefault("WORKFLOW_WORKERS", 4),
		WorkflowQueueSize: getEnvIntOrDefault("WORKFLOW_QUEUE_SIZE", 100),

		Auth0Domain:   os.Getenv("AUTH0_DOMAIN"),
		Auth0Audience: os.Getenv("AUTH0_AUDIENCE"),
	}

	cfg.validate()

	return cfg
}

// validate checks that configuration values are usable
func (c *Config) validate() {
	u, err := url.Parse(c.BackendAPIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		panic(fmt.Sprintf("BACKEND_API_URL must be an absolute http(s) URL (got '%s')", c.BackendAPIURL))
	}

	if c.WorkflowWorkers < 1 {
		panic(fmt.Sprintf("WORKFLOW_WORKERS must be at least 1 (got %d)", c.WorkflowWorkers))
	}
	if c.WorkflowQueueSize < 1 {
		panic(fmt.Sprintf("WORKFLOW_QUEUE_SIZE must be at least 1 (got %d)", c.WorkflowQueueSize))
	}

	if c.Auth0Domain != "" && c.Auth0Audience == "" {
		panic("AUTH0_AUDIENCE is required when AUTH0_DOMAIN is set")
	}

	if c.AWSAccountID != "" && (len(c.AWSAccountID) != 12 || !isNumeric(c.AWSAccountID)) {
		panic(fmt.Sprintf("AWS_ACCOUNT_ID must be exactly 12 digits (got '%s')", c.AWSAccountID))
	}
}

// AuthEnabled reports whether bearer authentication is configured
func (c *Config) AuthEnabled() bool {
	return c.Auth0Domain != ""
}

// ECREnabled reports whether container images can be checked against ECR
func (c *Config) ECREnabled() bool {
	return c.AWSAccountID != ""
}

// isNumeric checks if a string contains only numeric characters
func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// getEnvOrDefault returns the value of an environment variable or a default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvIntOrDefault parses an integer environment variable.
// Unparseable values yield -1 so validate rejects them.
func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return -1
	}
	return n
}
