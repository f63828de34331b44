// Package completion adapts a single chat completion call onto an
// OpenAI-compatible API through the eino chat model.
package completion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/sirupsen/logrus"

	"bx-toolkit/internal/interfaces"
)

var (
	// ErrMissingCredential is returned when no API key is configured
	ErrMissingCredential = errors.New("api key is not configured")

	// ErrEmptyCompletion is returned when the model answers with no content
	ErrEmptyCompletion = errors.New("model returned empty content")
)

// DefaultBaseURL is the OpenAI API root
const DefaultBaseURL = "https://api.openai.com/v1"

// ChatModel is the subset of the eino chat model used here
type ChatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// ModelFactory builds a chat model for one call
type ModelFactory func(ctx context.Context, cfg *openai.ChatModelConfig) (ChatModel, error)

// Options configures the client
type Options struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     logrus.FieldLogger
	Factory    ModelFactory
}

// Client implements the CompletionClient interface
type Client struct {
	apiKey     string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	logger     logrus.FieldLogger
	factory    ModelFactory
}

// NewClient creates a completion client. The API key is checked per call so a
// client can be built before the credential is known.
func NewClient(opts Options) *Client {
	c := &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		timeout:    opts.Timeout,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		factory:    opts.Factory,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.logger == nil {
		c.logger = logrus.StandardLogger()
	}
	if c.factory == nil {
		c.factory = newOpenAIChatModel
	}
	return c
}

// Complete sends the system and user prompts as one call and returns the
// first choice's content
func (c *Client) Complete(ctx context.Context, req interfaces.CompletionRequest) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingCredential
	}

	chatModel, err := c.factory(ctx, c.modelConfig(req))
	if err != nil {
		return "", fmt.Errorf("failed to create chat model: %w", err)
	}

	messages := []*schema.Message{
		schema.SystemMessage(req.SystemPrompt),
		schema.UserMessage(req.UserPrompt),
	}

	log := c.logger.WithFields(logrus.Fields{
		"model":       req.Model,
		"temperature": req.Temperature,
		"max_tokens":  req.MaxTokens,
	})
	log.WithFields(logrus.Fields{
		"system_chars": len(req.SystemPrompt),
		"user_chars":   len(req.UserPrompt),
	}).Debug("sending completion request")

	start := time.Now()
	resp, err := chatModel.Generate(ctx, messages)
	elapsed := time.Since(start)
	if err != nil {
		log.WithField("elapsed", elapsed).WithError(err).Debug("completion request failed")
		return "", fmt.Errorf("completion request failed: %w", err)
	}

	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return "", ErrEmptyCompletion
	}

	log.WithFields(logrus.Fields{
		"elapsed":       elapsed,
		"content_chars": len(resp.Content),
	}).Debug("completion received")

	return resp.Content, nil
}

// modelConfig maps a request onto the eino OpenAI model configuration
func (c *Client) modelConfig(req interfaces.CompletionRequest) *openai.ChatModelConfig {
	maxTokens := req.MaxTokens
	temperature := float32(req.Temperature)

	return &openai.ChatModelConfig{
		APIKey:      c.apiKey,
		BaseURL:     c.baseURL,
		Model:       req.Model,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
		Timeout:     c.timeout,
		HTTPClient:  c.httpClient,
	}
}

func newOpenAIChatModel(ctx context.Context, cfg *openai.ChatModelConfig) (ChatModel, error) {
	m, err := openai.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return m, nil
}
