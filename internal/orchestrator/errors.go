package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bx-toolkit/internal/completion"
	"bx-toolkit/internal/export"
)

// Error types for different categories of failures
var (
	ErrValidationFailed     = errors.New("validation error")
	ErrConfigurationInvalid = errors.New("configuration error")
	ErrGenerationFailed     = errors.New("generation failed")
	ErrExportFailed         = errors.New("export error")
	ErrOutputFailed         = errors.New("output error")
	ErrSubmissionInFlight   = errors.New("a generation is already in progress")
)

// BXError represents a structured error with actionable guidance
type BXError struct {
	Type     error
	Message  string
	Guidance string
	Cause    error
}

func (e *BXError) Error() string {
	if e.Guidance != "" {
		return fmt.Sprintf("%s: %s\n\nSuggestion: %s", e.Type, e.Message, e.Guidance)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *BXError) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is match on the error category as well as the cause
func (e *BXError) Is(target error) bool {
	return e.Type != nil && e.Type == target
}

// Error constructors with actionable guidance

func NewValidationError(field string, value interface{}, reason string) *BXError {
	message := fmt.Sprintf("validation failed for %s: %v (%s)", field, value, reason)
	guidance := "Check the input value and ensure it meets the required format."

	switch field {
	case "company":
		guidance = "Company name is required. Provide it with --company or fill it in the interactive form."
	case "request":
		guidance = "A request is required. Pass it as the argument, with --request, or in a --brief file."
	case "brief":
		guidance = "Mode, tone and depth must be one of the listed options. Run 'bxkit --help' to see them."
	case "target":
		guidance = "Target must be 'clipboard', 'stdout', or 'file:/path/to/file'. " +
			"Example: --target file:/tmp/bx.md"
	case "config_path":
		guidance = "Configuration file path must be valid and accessible. " +
			"Ensure the file exists and you have read permissions."
	}

	return &BXError{
		Type:     ErrValidationFailed,
		Message:  message,
		Guidance: guidance,
		Cause:    nil,
	}
}

func NewConfigurationError(message string, cause error) *BXError {
	guidance := "Check your configuration file syntax and values. " +
		"Use 'bxkit --config /path/to/config.toml' to specify a different config file."

	if strings.Contains(message, "permission") {
		guidance = "Check file permissions for your configuration directory. " +
			"Ensure you have read access to ~/.config/bxkit/"
	} else if strings.Contains(message, "not found") || strings.Contains(message, "does not exist") {
		guidance = "The configuration file doesn't exist. Create ~/.config/bxkit/config.toml " +
			"or specify a different path with --config flag."
	}

	return &BXError{
		Type:     ErrConfigurationInvalid,
		Message:  message,
		Guidance: guidance,
		Cause:    cause,
	}
}

// NewCredentialError reports a missing API key. It never echoes key material.
func NewCredentialError() *BXError {
	return &BXError{
		Type:    ErrConfigurationInvalid,
		Message: "no API credential configured",
		Guidance: "Set BXKIT_API_KEY or OPENAI_API_KEY, or add api_key to ~/.config/bxkit/config.toml. " +
			"Interactive runs will ask for it.",
	}
}

func NewGenerationError(cause error) *BXError {
	message := "the model service did not return a document"
	guidance := "Check your network connection and API key, then try again."

	switch {
	case errors.Is(cause, context.DeadlineExceeded):
		message = "the model service did not respond in time"
		guidance = "Raise 'timeout' in your configuration or try a lower depth or max_tokens."
	case errors.Is(cause, context.Canceled):
		message = "generation was cancelled"
		guidance = "Run the command again when ready."
	case errors.Is(cause, completion.ErrEmptyCompletion):
		message = "the model service returned an empty document"
		guidance = "Try again, or add detail to the request so the model has more to work with."
	}

	return &BXError{
		Type:     ErrGenerationFailed,
		Message:  message,
		Guidance: guidance,
		Cause:    cause,
	}
}

func NewExportError(dir string, cause error) *BXError {
	message := fmt.Sprintf("failed to export into '%s'", dir)
	guidance := "Check that the export directory is writable, or pass --export-dir."

	if errors.Is(cause, export.ErrUnknownFormat) {
		guidance = "Export formats must be 'txt' and/or 'json'. Example: --export txt,json"
	}

	return &BXError{
		Type:     ErrExportFailed,
		Message:  message,
		Guidance: guidance,
		Cause:    cause,
	}
}

func NewOutputError(target string, cause error) *BXError {
	message := fmt.Sprintf("failed to output to target '%s'", target)
	guidance := "Check that the output target is valid and accessible."

	if target == "clipboard" {
		guidance = "Clipboard access failed. Ensure you're running in a graphical environment " +
			"or try using --target stdout instead."
	} else if strings.HasPrefix(target, "file:") {
		filePath := strings.TrimPrefix(target, "file:")
		guidance = fmt.Sprintf("Failed to write to file '%s'. Check that the directory exists "+
			"and you have write permissions.", filePath)
	} else if target == "editor" {
		guidance = "Editor launch failed. Check that the specified editor is installed and in PATH. " +
			"Try setting EDITOR environment variable or using --editor flag."
	}

	return &BXError{
		Type:     ErrOutputFailed,
		Message:  message,
		Guidance: guidance,
		Cause:    cause,
	}
}

// Recovery strategies

// RecoverFromError attempts to recover from common errors with fallback strategies
func RecoverFromError(err error) error {
	if err == nil {
		return nil
	}

	var bxErr *BXError
	if !errors.As(err, &bxErr) {
		// Wrap unknown errors
		return &BXError{
			Type:     errors.New("unknown error"),
			Message:  err.Error(),
			Guidance: "An unexpected error occurred. Please check your inputs and try again.",
			Cause:    err,
		}
	}

	switch bxErr.Type {
	case ErrConfigurationInvalid:
		return recoverFromConfigError(bxErr)
	case ErrOutputFailed:
		return recoverFromOutputError(bxErr)
	default:
		return bxErr
	}
}

func recoverFromConfigError(err *BXError) error {
	homeDir, homeErr := os.UserHomeDir()
	if homeErr != nil {
		return err
	}

	configDir := filepath.Join(homeDir, ".config", "bxkit")
	if _, statErr := os.Stat(configDir); os.IsNotExist(statErr) {
		err.Guidance += fmt.Sprintf("\n\nNo config directory found. Create '%s/config.toml' to persist settings.",
			configDir)
	}

	return err
}

func recoverFromOutputError(err *BXError) error {
	if strings.Contains(err.Message, "clipboard") {
		err.Guidance += "\n\nTry using --target stdout as a fallback."
	}
	return err
}

// IsRecoverableError checks if an error can be recovered from
func IsRecoverableError(err error) bool {
	var bxErr *BXError
	if !errors.As(err, &bxErr) {
		return false
	}

	switch bxErr.Type {
	case ErrOutputFailed:
		return strings.Contains(bxErr.Message, "clipboard") // Can fallback to stdout
	default:
		return false
	}
}
