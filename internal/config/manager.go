package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"bx-toolkit/internal/export"
	"bx-toolkit/internal/interfaces"
	"bx-toolkit/internal/logging"
	"bx-toolkit/pkg/models"
)

const (
	DefaultTimeout = 3 * time.Minute
	// MinTimeout rejects values like 30ns that would fail every request
	MinTimeout = time.Second
)

// Manager implements the ConfigManager interface
type Manager struct {
	v     *viper.Viper
	flags map[string]interface{} // Store flag values for precedence
}

// NewManager creates a new configuration manager
func NewManager() *Manager {
	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix("BXKIT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// The key may live in either variable; BXKIT_API_KEY wins
	_ = v.BindEnv("api_key", "BXKIT_API_KEY", "OPENAI_API_KEY")

	// Set defaults
	setDefaults(v)

	return &Manager{
		v:     v,
		flags: make(map[string]interface{}),
	}
}

// DefaultConfigPath returns ~/.config/bxkit/config.toml
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "bxkit", "config.toml"), nil
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("api_key", "")
	v.SetDefault("base_url", "https://api.openai.com/v1")
	v.SetDefault("model", models.DefaultModel)
	v.SetDefault("temperature", models.DefaultTemperature)
	v.SetDefault("max_tokens", models.DefaultMaxTokens)
	v.SetDefault("timeout", DefaultTimeout.String())
	v.SetDefault("export_dir", ".")
	v.SetDefault("export_formats", []string{export.FormatText, export.FormatJSON})
	v.SetDefault("target", "stdout")
	v.SetDefault("editor", "nvim")
	v.SetDefault("interactive_default", true)
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "text")
}

// Load loads configuration from the specified path
func (m *Manager) Load(path string) (*interfaces.Config, error) {
	if path == "" {
		// Use default config path
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	path = expandPath(path)

	// Check if config file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// Config file doesn't exist, use defaults
		return m.getConfigFromViper(), nil
	}

	m.v.SetConfigFile(path)

	if err := m.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return m.getConfigFromViper(), nil
}

// SetFlag sets a flag value for precedence resolution
func (m *Manager) SetFlag(key string, value interface{}) {
	m.flags[key] = value
}

// Resolve applies precedence rules (flags > env > config > defaults)
func (m *Manager) Resolve() (*interfaces.Config, error) {
	config := m.getConfigFromViper()

	// Apply flag overrides (highest precedence)
	m.applyFlagOverrides(config)

	return config, nil
}

// applyFlagOverrides applies flag values over the configuration
func (m *Manager) applyFlagOverrides(config *interfaces.Config) {
	stringFlags := map[string]*string{
		"model":      &config.Model,
		"target":     &config.Target,
		"editor":     &config.Editor,
		"log_level":  &config.LogLevel,
		"log_format": &config.LogFormat,
		"base_url":   &config.BaseURL,
	}
	for key, dst := range stringFlags {
		if val, exists := m.flags[key]; exists && val != nil {
			if str, ok := val.(string); ok && str != "" {
				*dst = str
			}
		}
	}

	if val, exists := m.flags["export_dir"]; exists {
		if str, ok := val.(string); ok && str != "" {
			config.ExportDir = expandPath(str)
		}
	}

	if val, exists := m.flags["temperature"]; exists && val != nil {
		if f, ok := val.(float64); ok {
			config.Temperature = f
		}
	}

	if val, exists := m.flags["max_tokens"]; exists && val != nil {
		if n, ok := val.(int); ok && n != 0 {
			config.MaxTokens = n
		}
	}

	if val, exists := m.flags["export_formats"]; exists && val != nil {
		if list, ok := val.([]string); ok && len(list) > 0 {
			config.ExportFormats = splitList(list)
		}
	}
}

// Validate validates the configuration values
func (m *Manager) Validate(config *interfaces.Config) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if !models.IsSupportedModel(config.Model) {
		return fmt.Errorf("invalid model: %s (must be one of %s)", config.Model, strings.Join(models.SupportedModels, ", "))
	}

	if config.Temperature < models.MinTemperature || config.Temperature > models.MaxTemperature {
		return fmt.Errorf("invalid temperature: %v (must be between %.1f and %.1f)", config.Temperature, models.MinTemperature, models.MaxTemperature)
	}

	if config.MaxTokens < models.MinMaxTokens || config.MaxTokens > models.MaxMaxTokens {
		return fmt.Errorf("invalid max_tokens: %d (must be between %d and %d)", config.MaxTokens, models.MinMaxTokens, models.MaxMaxTokens)
	}

	if config.Timeout < MinTimeout {
		return fmt.Errorf("invalid timeout: %s (must be at least %s, e.g. \"90s\" or \"3m\")", config.Timeout, MinTimeout)
	}

	// Validate target
	validTargets := map[string]bool{
		"clipboard": true,
		"stdout":    true,
	}
	// Also allow file: prefix
	if !validTargets[config.Target] && !strings.HasPrefix(config.Target, "file:") {
		return fmt.Errorf("invalid target: %s (must be 'clipboard', 'stdout', or 'file:/path')", config.Target)
	}

	if _, err := export.ParseFormats(strings.Join(config.ExportFormats, ",")); err != nil {
		return fmt.Errorf("invalid export_formats: %w", err)
	}

	if _, err := logging.ParseLevel(config.LogLevel); err != nil {
		return err
	}

	switch strings.ToLower(config.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid log_format: %s (must be 'text' or 'json')", config.LogFormat)
	}

	return nil
}

// getConfigFromViper converts viper configuration to Config struct
// This handles env > config > defaults precedence (flags are applied separately)
func (m *Manager) getConfigFromViper() *interfaces.Config {
	timeout := m.timeout()

	return &interfaces.Config{
		APIKey:             strings.TrimSpace(m.v.GetString("api_key")),
		BaseURL:            m.v.GetString("base_url"),
		Model:              m.v.GetString("model"),
		Temperature:        m.v.GetFloat64("temperature"),
		MaxTokens:          m.v.GetInt("max_tokens"),
		Timeout:            timeout,
		ExportDir:          expandPath(m.v.GetString("export_dir")),
		ExportFormats:      splitList(m.v.GetStringSlice("export_formats")),
		Target:             m.v.GetString("target"),
		Editor:             m.v.GetString("editor"),
		InteractiveDefault: m.v.GetBool("interactive_default"),
		LogLevel:           m.v.GetString("log_level"),
		LogFormat:          m.v.GetString("log_format"),
	}
}

// timeout reads bare numbers such as `timeout = 90` as seconds; strings go
// through the usual duration parsing
func (m *Manager) timeout() time.Duration {
	switch n := m.v.Get("timeout").(type) {
	case int:
		return time.Duration(n) * time.Second
	case int64:
		return time.Duration(n) * time.Second
	case float64:
		return time.Duration(n * float64(time.Second))
	case string:
		if secs, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return time.Duration(secs) * time.Second
		}
	}

	timeout := m.v.GetDuration("timeout")
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return timeout
}

// MergeConfig merges another configuration into this manager
func (m *Manager) MergeConfig(other *interfaces.Config) {
	if other == nil {
		return
	}

	if other.APIKey != "" {
		m.v.Set("api_key", other.APIKey)
	}
	if other.BaseURL != "" {
		m.v.Set("base_url", other.BaseURL)
	}
	if other.Model != "" {
		m.v.Set("model", other.Model)
	}
	if other.Temperature != 0 {
		m.v.Set("temperature", other.Temperature)
	}
	if other.MaxTokens != 0 {
		m.v.Set("max_tokens", other.MaxTokens)
	}
	if other.ExportDir != "" {
		m.v.Set("export_dir", other.ExportDir)
	}
	if len(other.ExportFormats) > 0 {
		m.v.Set("export_formats", other.ExportFormats)
	}
	if other.Target != "" {
		m.v.Set("target", other.Target)
	}
	if other.Editor != "" {
		m.v.Set("editor", other.Editor)
	}
}

// splitList flattens entries that hold comma separated values, as env vars do
func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// expandPath expands ~ to user home directory
func expandPath(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path // Return original path if we can't get home dir
	}

	return filepath.Join(homeDir, path[2:])
}
