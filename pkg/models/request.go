package models

// RunRequest represents the CLI state for a single generation run
type RunRequest struct {
	// Brief holds only what was given on the command line; zero variants mean unset
	Brief *BriefRequest

	ConfigPath string
	BriefFile  string

	// Flag overrides for generation settings; zero means "use config"
	Model       string
	Temperature *float64
	MaxTokens   int

	Target          string
	Editor          string
	EditorRequested bool

	ExportFormats []string
	ExportDir     string
	NoExport      bool
	DryRun        bool

	Interactive         bool
	ForceInteractive    bool
	ForceNonInteractive bool
	NumberSelect        bool

	LogLevel string
}

// NewRunRequest creates a run request with an empty brief
func NewRunRequest() *RunRequest {
	return &RunRequest{
		Brief: &BriefRequest{},
	}
}
