package api

import (
	"context"

	"github.com/lamim/storyforge/internal/config"
	"github.com/lamim/storyforge/internal/util"
)

// Caller sends one prompt to a text model and returns the raw reply.
// Implementations must be safe for concurrent use; the judge panel calls
// the same Caller from several goroutines at once.
type Caller interface {
	Call(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error)
}

// CallerFunc adapts a function to the Caller interface
type CallerFunc func(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error)

// Call implements Caller
func (f CallerFunc) Call(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	return f(ctx, prompt, maxTokens, temperature)
}

// ModelCaller is a Caller backed by a chat completion endpoint
type ModelCaller struct {
	client *Client
	model  config.ModelConfig
	apiKey string
}

// NewModelCaller binds a client to one model endpoint
func NewModelCaller(client *Client, model config.ModelConfig, apiKey string) *ModelCaller {
	return &ModelCaller{
		client: client,
		model:  model,
		apiKey: apiKey,
	}
}

// Call sends prompt as a single user message. maxTokens and temperature
// override the model defaults for this call only.
func (m *ModelCaller) Call(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	cfg := m.model
	cfg.MaxOutputTokens = maxTokens
	cfg.Temperature = temperature

	resp, err := m.client.ChatCompletion(ctx, cfg, m.apiKey, []Message{
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return "", err
	}

	return util.StripThinkTags(resp.Choices[0].Message.Content), nil
}
