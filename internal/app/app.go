package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"bx-toolkit/internal/config"
	"bx-toolkit/internal/export"
	"bx-toolkit/internal/interactive"
	"bx-toolkit/internal/interfaces"
	"bx-toolkit/internal/logging"
	"bx-toolkit/internal/orchestrator"
	"bx-toolkit/pkg/models"
)

// Reference is a curated link shown by the refs command
type Reference struct {
	Group string
	Title string
	Note  string
	URL   string
}

// References are fixed and independent of any generation
var References = []Reference{
	{"Case studies", "Behance | Branding Case Studies", "다양한 브랜드 케이스 스터디 모음", "https://www.behance.net/search/projects/branding%20case%20study"},
	{"Case studies", "Awwwards", "트렌디한 웹/브랜딩 사이트", "https://www.awwwards.com/websites/"},
	{"Reviews", "Brand New (UnderConsideration)", "리브랜딩 사례 리뷰", "https://www.underconsideration.com/brandnew/archives/complete"},
	{"Reviews", "BP&O", "브랜딩/패키징 리뷰 & 인사이트", "https://bpando.org/"},
	{"Design systems", "Atlassian Design System", "로고/토큰/콘텐츠 가이드", "https://atlassian.design/"},
	{"Design systems", "IBM Design Language", "대규모 브랜드·이벤트 가이드", "https://www.ibm.com/design/language/"},
	{"Design systems", "Material Design 3", "구글 디자인 시스템", "https://m3.material.io/"},
	{"Design systems", "Apple HIG - Branding", "", "https://developer.apple.com/design/human-interface-guidelines/branding"},
}

// Run executes the main application logic
func Run(ctx context.Context, request *models.RunRequest) error {
	orch := orchestrator.NewWithDeps(orchestrator.Deps{ConfigManager: config.NewManager()})

	cfg, err := orch.LoadConfiguration(request.ConfigPath, flagOverrides(request))
	if err != nil {
		return orchestrator.RecoverFromError(err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		return orchestrator.NewConfigurationError("invalid logging configuration", err)
	}
	orch.SetLogger(logger)

	resolveInteractiveMode(request, cfg)

	brief, err := buildBrief(request, cfg)
	if err != nil {
		return err
	}

	prompter := interactive.NewPrompter(request.NumberSelect)
	if err := prompter.CollectMissingInputs(brief, request.Interactive); err != nil {
		return fmt.Errorf("failed to collect inputs: %w", err)
	}

	if request.DryRun {
		return printPrompts(orch, brief, os.Stdout)
	}

	key, err := prompter.CollectCredential(cfg, request.Interactive)
	if err != nil {
		return fmt.Errorf("failed to collect API key: %w", err)
	}
	if key != "" {
		if cfg, err = orch.MergeConfiguration(&interfaces.Config{APIKey: key}); err != nil {
			return orchestrator.RecoverFromError(err)
		}
	}

	fmt.Fprintf(os.Stderr, "Generating BX document for %s with %s...\n", brief.Company, brief.Model)

	result, err := orch.Generate(ctx, brief, cfg)
	if err != nil {
		return orchestrator.RecoverFromError(err)
	}

	if err := orch.OutputResult(result.Content, request, cfg); err != nil {
		return err
	}

	if request.NoExport {
		return nil
	}

	paths, err := orch.Export(result, cfg, nil)
	if err != nil {
		return err
	}
	for _, path := range paths {
		fmt.Fprintf(os.Stderr, "Exported %s\n", contractPath(path))
	}

	return nil
}

// PrintPrompts renders the prompts for the brief without calling the model
func PrintPrompts(request *models.RunRequest, w io.Writer) error {
	orch := orchestrator.NewWithDeps(orchestrator.Deps{ConfigManager: config.NewManager()})

	cfg, err := orch.LoadConfiguration(request.ConfigPath, flagOverrides(request))
	if err != nil {
		return err
	}

	brief, err := buildBrief(request, cfg)
	if err != nil {
		return err
	}

	return printPrompts(orch, brief, w)
}

func printPrompts(orch *orchestrator.Orchestrator, brief *models.BriefRequest, w io.Writer) error {
	system, user, err := orch.BuildPrompts(brief)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "# system\n\n%s\n\n# user\n\n%s\n", system, user)
	return nil
}

// ListModels prints the model allow-list, marking the configured default
func ListModels(request *models.RunRequest, w io.Writer) error {
	cfg, err := config.NewManager().Load(request.ConfigPath)
	if err != nil {
		return orchestrator.NewConfigurationError("failed to load configuration", err)
	}

	for _, name := range models.SupportedModels {
		if name == cfg.Model {
			fmt.Fprintf(w, "  - %s (default)\n", name)
		} else {
			fmt.Fprintf(w, "  - %s\n", name)
		}
	}
	return nil
}

// PrintSchema writes the JSON schema of the export record
func PrintSchema(w io.Writer) error {
	data, err := export.Schema()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// ListReferences prints the curated case study and guideline links
func ListReferences(w io.Writer) {
	group := ""
	for _, ref := range References {
		if ref.Group != group {
			if group != "" {
				fmt.Fprintln(w)
			}
			group = ref.Group
			fmt.Fprintf(w, "%s:\n", group)
		}
		if ref.Note != "" {
			fmt.Fprintf(w, "  - %s: %s\n", ref.Title, ref.Note)
		} else {
			fmt.Fprintf(w, "  - %s\n", ref.Title)
		}
		fmt.Fprintf(w, "    %s\n", ref.URL)
	}
}

// flagOverrides collects the command line values that outrank the config
func flagOverrides(request *models.RunRequest) map[string]interface{} {
	flags := make(map[string]interface{})
	if request.Model != "" {
		flags["model"] = request.Model
	}
	if request.Temperature != nil {
		flags["temperature"] = *request.Temperature
	}
	if request.MaxTokens != 0 {
		flags["max_tokens"] = request.MaxTokens
	}
	if request.Target != "" {
		flags["target"] = request.Target
	}
	if request.Editor != "" {
		flags["editor"] = request.Editor
	}
	if request.ExportDir != "" {
		flags["export_dir"] = request.ExportDir
	}
	if len(request.ExportFormats) > 0 {
		flags["export_formats"] = request.ExportFormats
	}
	if request.LogLevel != "" {
		flags["log_level"] = request.LogLevel
	}
	return flags
}

// buildBrief layers the brief sources: defaults, config settings, the brief
// file, then command line values
func buildBrief(request *models.RunRequest, cfg *interfaces.Config) (*models.BriefRequest, error) {
	brief := models.NewBriefRequest()
	orchestrator.ApplySettings(brief, cfg)

	if request.BriefFile != "" {
		if err := brief.LoadFile(request.BriefFile); err != nil {
			return nil, orchestrator.NewValidationError("brief_file", request.BriefFile, err.Error())
		}
	}

	if request.Brief != nil {
		mergeBrief(brief, request.Brief)
	}

	// Explicit setting flags beat the brief file
	if request.Model != "" {
		brief.Model = request.Model
	}
	if request.Temperature != nil {
		brief.Temperature = *request.Temperature
	}
	if request.MaxTokens != 0 {
		brief.MaxTokens = request.MaxTokens
	}

	brief.Normalize()
	return brief, nil
}

// mergeBrief copies the set fields of src over dst
func mergeBrief(dst, src *models.BriefRequest) {
	text := []struct {
		from string
		to   *string
	}{
		{src.Company, &dst.Company},
		{src.Industry, &dst.Industry},
		{src.Region, &dst.Region},
		{src.Competitors, &dst.Competitors},
		{src.Target, &dst.Target},
		{src.Request, &dst.Request},
		{src.Constraints, &dst.Constraints},
	}
	for _, field := range text {
		if strings.TrimSpace(field.from) != "" {
			*field.to = field.from
		}
	}

	if src.Mode.Valid() {
		dst.Mode = src.Mode
	}
	if src.Tone.Valid() {
		dst.Tone = src.Tone
	}
	if src.Depth.Valid() {
		dst.Depth = src.Depth
	}
}

// resolveInteractiveMode determines the final interactive mode based on flags and config
func resolveInteractiveMode(request *models.RunRequest, cfg *interfaces.Config) {
	// Priority: explicit flags > config default
	if request.ForceInteractive {
		request.Interactive = true
	} else if request.ForceNonInteractive {
		request.Interactive = false
	} else {
		request.Interactive = cfg.InteractiveDefault
	}
}

// contractPath converts a full path back to use ~ for the home directory
func contractPath(path string) string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	homeDirWithSlash := homeDir + string(filepath.Separator)
	pathWithSlash := path + string(filepath.Separator)

	if strings.HasPrefix(pathWithSlash, homeDirWithSlash) {
		relativePath := path[len(homeDir):]
		if relativePath == "" {
			return "~"
		}
		return "~" + relativePath
	}

	return path
}
