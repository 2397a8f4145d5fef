package providers

import (
	"context"

	"github.com/cooklang/cooklang-import/internal/config"
	"github.com/cooklang/cooklang-import/internal/errors"
)

const (
	anthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion = "2023-06-01"

	DefaultAnthropicModel = "claude-3-5-haiku-latest"
)

// AnthropicProvider talks to the Anthropic Messages API.
type AnthropicProvider struct {
	chat   chatClient
	cfg    config.ProviderConfig
	apiKey string
}

func NewAnthropicProvider(cfg config.ProviderConfig) (*AnthropicProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.NewConfigError("Anthropic API key is required", "MISSING_API_KEY", nil)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultAnthropicModel
	}
	base := cfg.BaseURL
	if base == "" {
		base = anthropicBaseURL
	}
	return &AnthropicProvider{
		chat:   newChatClient(Anthropic, "Anthropic", base, "$.content[0].text"),
		cfg:    cfg,
		apiKey: cfg.APIKey,
	}, nil
}

func (p *AnthropicProvider) Name() string { return Anthropic }

type anthropicRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	System      string        `json:"system"`
	Messages    []chatMessage `json:"messages"`
}

func (p *AnthropicProvider) Complete(ctx context.Context, system, user string) (string, error) {
	headers := map[string]string{
		"x-api-key":         p.apiKey,
		"anthropic-version": anthropicVersion,
	}
	body := anthropicRequest{
		Model:       p.cfg.Model,
		MaxTokens:   p.cfg.MaxTokens,
		Temperature: p.cfg.Temperature,
		System:      system,
		Messages:    []chatMessage{{Role: "user", Content: user}},
	}
	return p.chat.post(ctx, "/v1/messages", headers, nil, body)
}

func (p *AnthropicProvider) Convert(ctx context.Context, content string) (string, error) {
	return convert(ctx, p, content)
}
