package prompt

import (
	"embed"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"bx-toolkit/pkg/models"
)

//go:embed templates/system.txt templates/user.md.tmpl
var templatesFS embed.FS

// ErrInvalidBrief is returned when a brief cannot be rendered
var ErrInvalidBrief = errors.New("invalid brief")

// Builder implements the PromptBuilder interface
type Builder struct {
	system string
	user   *template.Template
}

// userPromptData is the flattened view of a brief handed to the template.
// Every value is already resolved so rendering stays deterministic.
type userPromptData struct {
	Company     string
	Industry    string
	Region      string
	Competitors string
	Target      string
	Mode        string
	Request     string
	Constraints string
	Tone        string
	Depth       string
	Richness    string
}

// NewBuilder parses the embedded templates
func NewBuilder() (*Builder, error) {
	system, err := templatesFS.ReadFile("templates/system.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to read system prompt: %w", err)
	}

	content, err := templatesFS.ReadFile("templates/user.md.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to read user prompt template: %w", err)
	}

	tmpl := template.New("user.md.tmpl").Option("missingkey=error")

	// Register helper functions before parsing
	registerHelpers(tmpl)

	tmpl, err = tmpl.Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse user prompt template: %w", err)
	}

	return &Builder{
		system: strings.TrimSpace(string(system)),
		user:   tmpl,
	}, nil
}

// MustNewBuilder is like NewBuilder but panics if the embedded templates are broken
func MustNewBuilder() *Builder {
	b, err := NewBuilder()
	if err != nil {
		panic(err)
	}
	return b
}

// BuildSystemPrompt returns the fixed system instruction
func (b *Builder) BuildSystemPrompt() string {
	return b.system
}

// BuildUserPrompt renders the brief into the user instruction
func (b *Builder) BuildUserPrompt(brief *models.BriefRequest) (string, error) {
	if brief == nil {
		return "", fmt.Errorf("%w: brief is nil", ErrInvalidBrief)
	}

	// Unknown variants never reach the template
	if err := brief.CheckVariants(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidBrief, err)
	}

	data := userPromptData{
		Company:     brief.Company,
		Industry:    strings.TrimSpace(brief.Industry),
		Region:      strings.TrimSpace(brief.Region),
		Competitors: strings.TrimSpace(brief.Competitors),
		Target:      strings.TrimSpace(brief.Target),
		Mode:        brief.Mode.String(),
		Request:     brief.Request,
		Constraints: strings.TrimSpace(brief.Constraints),
		Tone:        brief.Tone.String(),
		Depth:       brief.Depth.String(),
		Richness:    brief.Depth.Richness(),
	}

	var buf strings.Builder
	if err := b.user.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute user prompt template: %w", err)
	}

	return buf.String(), nil
}

// registerHelpers registers sprig helper functions to a template
func registerHelpers(tmpl *template.Template) {
	tmpl.Funcs(sprig.TxtFuncMap())
}
