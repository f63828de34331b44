package interfaces

import "bx-toolkit/pkg/models"

// Exporter turns a generation result into downloadable artifacts
type Exporter interface {
	// PlainText returns the raw generated content
	PlainText(result *models.GenerationResult) []byte

	// Record returns the structured JSON record
	Record(result *models.GenerationResult) ([]byte, error)

	// Write stores the requested formats and returns the written paths
	Write(result *models.GenerationResult, formats []string) ([]string, error)
}
