package orchestrator

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"bx-toolkit/internal/completion"
	"bx-toolkit/internal/config"
	"bx-toolkit/internal/export"
	"bx-toolkit/internal/interfaces"
	"bx-toolkit/internal/logging"
	"bx-toolkit/internal/prompt"
	"bx-toolkit/pkg/models"
)

// Orchestrator coordinates all components to generate a BX document
type Orchestrator struct {
	configManager interfaces.ConfigManager
	promptBuilder interfaces.PromptBuilder
	client        interfaces.CompletionClient // nil means one is built from the config
	exporter      interfaces.Exporter         // nil means one is built from the config
	outputHandler interfaces.OutputHandler
	logger        logrus.FieldLogger
	status        io.Writer
	now           func() time.Time

	// held for the whole of Generate; a second caller is turned away
	inFlight sync.Mutex
}

// Deps lets callers and tests replace individual components
type Deps struct {
	ConfigManager interfaces.ConfigManager
	PromptBuilder interfaces.PromptBuilder
	Client        interfaces.CompletionClient
	Exporter      interfaces.Exporter
	OutputHandler interfaces.OutputHandler
	Logger        logrus.FieldLogger
	Status        io.Writer
	Now           func() time.Time
}

// New creates a new orchestrator with all required components
func New(logger logrus.FieldLogger) *Orchestrator {
	return NewWithDeps(Deps{Logger: logger})
}

// NewWithDeps creates an orchestrator, filling unset dependencies with defaults
func NewWithDeps(deps Deps) *Orchestrator {
	o := &Orchestrator{
		configManager: deps.ConfigManager,
		promptBuilder: deps.PromptBuilder,
		client:        deps.Client,
		exporter:      deps.Exporter,
		outputHandler: deps.OutputHandler,
		logger:        deps.Logger,
		status:        deps.Status,
		now:           deps.Now,
	}
	if o.configManager == nil {
		o.configManager = config.NewManager()
	}
	if o.promptBuilder == nil {
		o.promptBuilder = prompt.MustNewBuilder()
	}
	if o.outputHandler == nil {
		o.outputHandler = NewOutputHandler()
	}
	if o.logger == nil {
		o.logger = logging.Discard()
	}
	if o.status == nil {
		o.status = os.Stderr
	}
	if o.now == nil {
		o.now = time.Now
	}
	return o
}

// SetLogger replaces the logger once the configured level and format are known
func (o *Orchestrator) SetLogger(logger logrus.FieldLogger) {
	if logger != nil {
		o.logger = logger
	}
}

// LoadConfiguration loads and resolves configuration with precedence
// (flags > env > config file > defaults) and validates the result
func (o *Orchestrator) LoadConfiguration(configPath string, flags map[string]interface{}) (*interfaces.Config, error) {
	if _, err := o.configManager.Load(configPath); err != nil {
		return nil, NewConfigurationError("failed to load configuration", err)
	}

	for key, value := range flags {
		o.configManager.SetFlag(key, value)
	}

	cfg, err := o.configManager.Resolve()
	if err != nil {
		return nil, NewConfigurationError("failed to resolve configuration", err)
	}

	if err := o.configManager.Validate(cfg); err != nil {
		return nil, NewConfigurationError(fmt.Sprintf("invalid configuration: %v", err), err)
	}

	o.logger.WithField("config", fmt.Sprintf("%+v", cfg.Redacted())).Debug("configuration resolved")

	return cfg, nil
}

// MergeConfiguration folds values gathered after loading, such as a key typed
// at the prompt, into the configuration and resolves it again
func (o *Orchestrator) MergeConfiguration(other *interfaces.Config) (*interfaces.Config, error) {
	o.configManager.MergeConfig(other)

	cfg, err := o.configManager.Resolve()
	if err != nil {
		return nil, NewConfigurationError("failed to resolve configuration", err)
	}

	if err := o.configManager.Validate(cfg); err != nil {
		return nil, NewConfigurationError(fmt.Sprintf("invalid configuration: %v", err), err)
	}

	return cfg, nil
}

// ApplySettings copies the configured generation settings onto a brief
func ApplySettings(brief *models.BriefRequest, cfg *interfaces.Config) {
	if cfg.Model != "" {
		brief.Model = cfg.Model
	}
	brief.Temperature = cfg.Temperature
	if cfg.MaxTokens != 0 {
		brief.MaxTokens = cfg.MaxTokens
	}
}

// ValidateBrief checks required fields and variants without touching the
// network. The brief is not modified.
func ValidateBrief(brief *models.BriefRequest) error {
	if brief == nil {
		return NewValidationError("brief", nil, "brief cannot be nil")
	}

	if missing := brief.MissingFields(); len(missing) > 0 {
		return NewValidationError(missing[0], "", "required")
	}

	if err := brief.CheckVariants(); err != nil {
		v := NewValidationError("brief", err, "unrecognized option")
		v.Cause = err
		return v
	}

	return nil
}

// BuildPrompts renders the system and user prompts for a brief
func (o *Orchestrator) BuildPrompts(brief *models.BriefRequest) (string, string, error) {
	if err := ValidateBrief(brief); err != nil {
		return "", "", err
	}
	brief = snapshot(brief)

	user, err := o.promptBuilder.BuildUserPrompt(brief)
	if err != nil {
		v := NewValidationError("brief", brief.Company, "could not render prompt")
		v.Cause = err
		return "", "", v
	}

	return o.promptBuilder.BuildSystemPrompt(), user, nil
}

// Generate validates the brief, issues exactly one completion call and
// returns the result. Nothing is written anywhere.
func (o *Orchestrator) Generate(ctx context.Context, brief *models.BriefRequest, cfg *interfaces.Config) (*models.GenerationResult, error) {
	if !o.inFlight.TryLock() {
		return nil, ErrSubmissionInFlight
	}
	defer o.inFlight.Unlock()

	if cfg == nil {
		return nil, NewConfigurationError("configuration not loaded", nil)
	}

	if err := ValidateBrief(brief); err != nil {
		return nil, err
	}
	brief = snapshot(brief)

	if !cfg.HasCredential() {
		return nil, NewCredentialError()
	}

	if err := brief.CheckSettings(); err != nil {
		return nil, NewConfigurationError(fmt.Sprintf("invalid generation settings: %v", err), err)
	}

	system, user, err := o.BuildPrompts(brief)
	if err != nil {
		return nil, err
	}

	callCtx := ctx
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	log := o.logger.WithFields(logrus.Fields{
		"model":       brief.Model,
		"temperature": brief.Temperature,
		"max_tokens":  brief.MaxTokens,
		"mode":        brief.Mode.Key(),
		"depth":       brief.Depth.Key(),
	})
	log.Info("requesting BX document")

	start := o.now()
	content, err := o.clientFor(cfg).Complete(callCtx, interfaces.CompletionRequest{
		SystemPrompt: system,
		UserPrompt:   user,
		Model:        brief.Model,
		Temperature:  brief.Temperature,
		MaxTokens:    brief.MaxTokens,
	})
	elapsed := o.now().Sub(start)
	if err != nil {
		log.WithField("elapsed", elapsed).WithError(err).Warn("generation failed")
		return nil, NewGenerationError(err)
	}
	if strings.TrimSpace(content) == "" {
		log.WithField("elapsed", elapsed).Warn("generation returned no content")
		return nil, NewGenerationError(completion.ErrEmptyCompletion)
	}

	log.WithFields(logrus.Fields{
		"elapsed":        elapsed,
		"content_length": len(content),
	}).Info("BX document generated")

	return &models.GenerationResult{
		Brief:       *brief,
		Content:     content,
		Model:       brief.Model,
		GeneratedAt: o.now(),
	}, nil
}

// snapshot returns a trimmed copy so the caller's brief stays as submitted
func snapshot(brief *models.BriefRequest) *models.BriefRequest {
	c := *brief
	c.Normalize()
	return &c
}

// Export writes the result in the requested formats and returns the paths
func (o *Orchestrator) Export(result *models.GenerationResult, cfg *interfaces.Config, formats []string) ([]string, error) {
	if result == nil {
		return nil, NewValidationError("result", nil, "nothing to export")
	}
	if len(formats) == 0 {
		formats = cfg.ExportFormats
	}

	exporter := o.exporterFor(cfg)
	paths, err := exporter.Write(result, formats)
	if err != nil {
		return paths, NewExportError(cfg.ExportDir, err)
	}

	o.logger.WithField("paths", paths).Info("exported BX document")
	return paths, nil
}

// OutputResult handles the final output of the generated document
func (o *Orchestrator) OutputResult(content string, request *models.RunRequest, cfg *interfaces.Config) error {
	target := request.Target
	if target == "" {
		target = cfg.Target
	}
	if target == "" {
		target = "stdout"
	}

	switch {
	case target == "clipboard":
		if err := o.outputHandler.WriteToClipboard(content); err != nil {
			outputErr := NewOutputError(target, err)
			if IsRecoverableError(outputErr) {
				fmt.Fprintf(o.status, "Warning: %s\nFalling back to stdout:\n\n", outputErr.Error())
				return o.outputHandler.WriteToStdout(content)
			}
			return RecoverFromError(outputErr)
		}
		fmt.Fprintln(o.status, "BX document copied to clipboard")

	case target == "stdout":
		if err := o.outputHandler.WriteToStdout(content); err != nil {
			return RecoverFromError(NewOutputError(target, err))
		}

	case strings.HasPrefix(target, "file:"):
		filePath := strings.TrimPrefix(target, "file:")
		if err := o.outputHandler.WriteToFile(content, filePath); err != nil {
			return RecoverFromError(NewOutputError(target, err))
		}
		fmt.Fprintf(o.status, "BX document written to %s\n", filePath)

	default:
		return RecoverFromError(NewValidationError("target", target, "unsupported output target"))
	}

	if request.EditorRequested {
		editor := ResolveEditor(request.Editor, cfg.Editor)
		if err := o.outputHandler.OpenInEditor(content, editor); err != nil {
			return RecoverFromError(NewOutputError("editor", err))
		}
	}

	return nil
}

func (o *Orchestrator) clientFor(cfg *interfaces.Config) interfaces.CompletionClient {
	if o.client != nil {
		return o.client
	}
	return completion.NewClient(completion.Options{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Logger:  o.logger,
	})
}

func (o *Orchestrator) exporterFor(cfg *interfaces.Config) interfaces.Exporter {
	if o.exporter != nil {
		return o.exporter
	}
	return export.NewExporter(cfg.ExportDir)
}

// ResolveEditor resolves the editor using precedence rules
func ResolveEditor(requestEditor, configEditor string) string {
	// Precedence: --editor flag > $VISUAL > $EDITOR > config editor > nvim > vi
	if requestEditor != "" {
		return requestEditor
	}
	if visual := os.Getenv("VISUAL"); visual != "" {
		return visual
	}
	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor
	}
	if configEditor != "" {
		return configEditor
	}
	for _, editor := range []string{"nvim", "vim", "vi", "nano"} {
		if _, err := os.Stat("/usr/bin/" + editor); err == nil {
			return editor
		}
	}
	return "vi"
}
