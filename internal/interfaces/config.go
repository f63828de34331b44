package interfaces

import (
	"strings"
	"time"
)

// Config represents the application configuration
type Config struct {
	APIKey             string        `toml:"api_key"`
	BaseURL            string        `toml:"base_url"`
	Model              string        `toml:"model"`
	Temperature        float64       `toml:"temperature"`
	MaxTokens          int           `toml:"max_tokens"`
	Timeout            time.Duration `toml:"timeout"`
	ExportDir          string        `toml:"export_dir"`
	ExportFormats      []string      `toml:"export_formats"`
	Target             string        `toml:"target"`
	Editor             string        `toml:"editor"`
	InteractiveDefault bool          `toml:"interactive_default"`
	LogLevel           string        `toml:"log_level"`
	LogFormat          string        `toml:"log_format"`
}

// HasCredential reports whether an API key is configured
func (c *Config) HasCredential() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// Redacted returns a copy safe to print or log
func (c Config) Redacted() Config {
	if c.APIKey != "" {
		c.APIKey = "****"
	}
	return c
}

// ConfigManager handles configuration loading and resolution
type ConfigManager interface {
	// Load loads configuration from the specified path
	Load(path string) (*Config, error)

	// SetFlag records a command line value that outranks every other source
	SetFlag(key string, value interface{})

	// MergeConfig layers the set fields of another config over the loaded sources
	MergeConfig(other *Config)

	// Resolve applies precedence rules (flags > env > config > defaults)
	Resolve() (*Config, error)

	// Validate validates the configuration values
	Validate(config *Config) error
}
