package interfaces

import (
	"context"
	"testing"
	"time"

	"bx-toolkit/pkg/models"
)

func TestConfig_Redacted(t *testing.T) {
	cfg := Config{
		APIKey:  "sk-secret",
		Model:   "gpt-4o-mini",
		Timeout: time.Minute,
	}

	redacted := cfg.Redacted()
	if redacted.APIKey != "****" {
		t.Errorf("expected API key to be masked, got %q", redacted.APIKey)
	}
	if cfg.APIKey != "sk-secret" {
		t.Errorf("Redacted must not modify the original config")
	}
	if redacted.Model != cfg.Model || redacted.Timeout != cfg.Timeout {
		t.Errorf("Redacted must keep non-secret fields")
	}

	empty := Config{}
	if empty.Redacted().APIKey != "" {
		t.Errorf("empty key should stay empty")
	}
}

func TestConfig_HasCredential(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"", false},
		{"   ", false},
		{"sk-test", true},
	}

	for _, tt := range tests {
		cfg := &Config{APIKey: tt.key}
		if got := cfg.HasCredential(); got != tt.want {
			t.Errorf("HasCredential(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

// Mock implementations to verify interfaces are properly defined
type mockConfigManager struct{}

func (m *mockConfigManager) Load(path string) (*Config, error) {
	return &Config{}, nil
}

func (m *mockConfigManager) SetFlag(key string, value interface{}) {}

func (m *mockConfigManager) MergeConfig(other *Config) {}

func (m *mockConfigManager) Resolve() (*Config, error) {
	return &Config{}, nil
}

func (m *mockConfigManager) Validate(config *Config) error {
	return nil
}

type mockPromptBuilder struct{}

func (m *mockPromptBuilder) BuildSystemPrompt() string {
	return "system"
}

func (m *mockPromptBuilder) BuildUserPrompt(brief *models.BriefRequest) (string, error) {
	return "user", nil
}

type mockCompletionClient struct{}

func (m *mockCompletionClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	return "content", nil
}

type mockExporter struct{}

func (m *mockExporter) PlainText(result *models.GenerationResult) []byte {
	return []byte(result.Content)
}

func (m *mockExporter) Record(result *models.GenerationResult) ([]byte, error) {
	return []byte("{}"), nil
}

func (m *mockExporter) Write(result *models.GenerationResult, formats []string) ([]string, error) {
	return nil, nil
}

type mockOutputHandler struct{}

func (m *mockOutputHandler) WriteToClipboard(content string) error {
	return nil
}

func (m *mockOutputHandler) WriteToStdout(content string) error {
	return nil
}

func (m *mockOutputHandler) WriteToFile(content string, path string) error {
	return nil
}

func (m *mockOutputHandler) OpenInEditor(content string, editor string) error {
	return nil
}

// Test that mock implementations satisfy interfaces
func TestInterfaceImplementations(t *testing.T) {
	var _ ConfigManager = &mockConfigManager{}
	var _ PromptBuilder = &mockPromptBuilder{}
	var _ CompletionClient = &mockCompletionClient{}
	var _ Exporter = &mockExporter{}
	var _ OutputHandler = &mockOutputHandler{}
}
