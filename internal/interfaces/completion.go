package interfaces

import "context"

// CompletionRequest is one system+user exchange with a chat model
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	Model        string
	Temperature  float64
	MaxTokens    int
}

// CompletionClient sends a single completion call and returns the generated text
type CompletionClient interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
