package models

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Generation setting bounds and defaults
const (
	DefaultModel       = "gpt-4o-mini"
	DefaultTemperature = 0.8
	DefaultMaxTokens   = 1600

	MinTemperature = 0.0
	MaxTemperature = 2.0
	MinMaxTokens   = 256
	MaxMaxTokens   = 4096
)

// SupportedModels is the allow-list of chat models a brief may target
var SupportedModels = []string{"gpt-4o-mini", "gpt-4o", "gpt-4.1-mini", "gpt-4.1"}

// IsSupportedModel reports whether name is on the allow-list
func IsSupportedModel(name string) bool {
	for _, m := range SupportedModels {
		if m == name {
			return true
		}
	}
	return false
}

// BriefRequest collects everything needed for one generation
type BriefRequest struct {
	Company     string      `json:"company" yaml:"company"`
	Industry    string      `json:"industry" yaml:"industry"`
	Region      string      `json:"region" yaml:"region"`
	Competitors string      `json:"competitors" yaml:"competitors"`
	Target      string      `json:"target" yaml:"target"`
	Mode        ProjectMode `json:"mode" yaml:"mode"`
	Request     string      `json:"request" yaml:"request"`
	Constraints string      `json:"constraints" yaml:"constraints"`
	Tone        Tone        `json:"tone" yaml:"tone"`
	Depth       Depth       `json:"depth" yaml:"depth"`

	// Generation settings; not part of the exported record
	Model       string  `json:"-" yaml:"model,omitempty"`
	Temperature float64 `json:"-" yaml:"temperature,omitempty"`
	MaxTokens   int     `json:"-" yaml:"max_tokens,omitempty"`
}

// NewBriefRequest returns a brief populated with the default variants and settings
func NewBriefRequest() *BriefRequest {
	return &BriefRequest{
		Mode:        DefaultMode,
		Tone:        DefaultTone,
		Depth:       DefaultDepth,
		Model:       DefaultModel,
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
	}
}

// Normalize trims surrounding whitespace from every text field
func (b *BriefRequest) Normalize() {
	b.Company = strings.TrimSpace(b.Company)
	b.Industry = strings.TrimSpace(b.Industry)
	b.Region = strings.TrimSpace(b.Region)
	b.Competitors = strings.TrimSpace(b.Competitors)
	b.Target = strings.TrimSpace(b.Target)
	b.Request = strings.TrimSpace(b.Request)
	b.Constraints = strings.TrimSpace(b.Constraints)
	b.Model = strings.TrimSpace(b.Model)
}

// MissingFields lists the required text fields that are empty
func (b *BriefRequest) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(b.Company) == "" {
		missing = append(missing, "company")
	}
	if strings.TrimSpace(b.Request) == "" {
		missing = append(missing, "request")
	}
	return missing
}

// CheckVariants verifies mode, tone and depth hold recognized values
func (b *BriefRequest) CheckVariants() error {
	if !b.Mode.Valid() {
		return fmt.Errorf("mode %d: %w", int(b.Mode), ErrUnknownVariant)
	}
	if !b.Tone.Valid() {
		return fmt.Errorf("tone %d: %w", int(b.Tone), ErrUnknownVariant)
	}
	if !b.Depth.Valid() {
		return fmt.Errorf("depth %d: %w", int(b.Depth), ErrUnknownVariant)
	}
	return nil
}

// CheckSettings verifies the generation settings against the allow-list and bounds
func (b *BriefRequest) CheckSettings() error {
	if !IsSupportedModel(b.Model) {
		return fmt.Errorf("model %q is not supported (must be one of %s)", b.Model, strings.Join(SupportedModels, ", "))
	}
	if b.Temperature < MinTemperature || b.Temperature > MaxTemperature {
		return fmt.Errorf("temperature %v out of range [%.1f, %.1f]", b.Temperature, MinTemperature, MaxTemperature)
	}
	if b.MaxTokens < MinMaxTokens || b.MaxTokens > MaxMaxTokens {
		return fmt.Errorf("max tokens %d out of range [%d, %d]", b.MaxTokens, MinMaxTokens, MaxMaxTokens)
	}
	return nil
}

// LoadBriefFile reads a brief from a YAML or JSON file. Fields missing from
// the file keep their defaults.
func LoadBriefFile(path string) (*BriefRequest, error) {
	brief := NewBriefRequest()
	if err := brief.LoadFile(path); err != nil {
		return nil, err
	}
	return brief, nil
}

// LoadFile overlays the fields present in a YAML or JSON file onto b
func (b *BriefRequest) LoadFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read brief file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(content, b); err != nil {
		return fmt.Errorf("failed to parse brief file %s: %w", path, err)
	}

	b.Normalize()
	return nil
}

// GenerationResult is the generated text plus the brief it was produced from
type GenerationResult struct {
	Brief       BriefRequest
	Content     string
	Model       string
	GeneratedAt time.Time
}
