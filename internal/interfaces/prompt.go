package interfaces

import "bx-toolkit/pkg/models"

// PromptBuilder turns a brief into the system and user prompts
type PromptBuilder interface {
	// BuildSystemPrompt returns the fixed system instruction
	BuildSystemPrompt() string

	// BuildUserPrompt renders the brief into the user instruction
	BuildUserPrompt(brief *models.BriefRequest) (string, error)
}
