package providers

import (
	"context"

	"github.com/cooklang/cooklang-import/internal/config"
	"github.com/cooklang/cooklang-import/internal/errors"
)

const (
	openAIBaseURL = "https://api.openai.com"
	ollamaBaseURL = "http://localhost:11434"

	DefaultOpenAIModel = "gpt-4.1-mini"
	DefaultOllamaModel = "llama3.2"
)

// OpenAIProvider talks to the OpenAI chat completions API.
type OpenAIProvider struct {
	chat   chatClient
	cfg    config.ProviderConfig
	apiKey string
}

func NewOpenAIProvider(cfg config.ProviderConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.NewConfigError("OpenAI API key is required", "MISSING_API_KEY", nil)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}
	base := cfg.BaseURL
	if base == "" {
		base = openAIBaseURL
	}
	return &OpenAIProvider{
		chat:   newChatClient(OpenAI, "OpenAI", base, openAITextPath),
		cfg:    cfg,
		apiKey: cfg.APIKey,
	}, nil
}

func (p *OpenAIProvider) Name() string { return OpenAI }

func (p *OpenAIProvider) Complete(ctx context.Context, system, user string) (string, error) {
	headers := map[string]string{"Authorization": "Bearer " + p.apiKey}
	if p.cfg.ProjectID != "" {
		headers["OpenAI-Project"] = p.cfg.ProjectID
	}
	body := newOpenAIChatRequest(p.cfg.Model, p.cfg.Temperature, p.cfg.MaxTokens, system, user)
	return p.chat.post(ctx, "/v1/chat/completions", headers, nil, body)
}

func (p *OpenAIProvider) Convert(ctx context.Context, content string) (string, error) {
	return convert(ctx, p, content)
}

// OllamaProvider talks to a local Ollama server through its OpenAI-compatible API.
type OllamaProvider struct {
	chat chatClient
	cfg  config.ProviderConfig
}

func NewOllamaProvider(cfg config.ProviderConfig) (*OllamaProvider, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultOllamaModel
	}
	base := cfg.BaseURL
	if base == "" {
		base = ollamaBaseURL
	}
	return &OllamaProvider{
		chat: newChatClient(Ollama, "Ollama", base, openAITextPath),
		cfg:  cfg,
	}, nil
}

func (p *OllamaProvider) Name() string { return Ollama }

func (p *OllamaProvider) Complete(ctx context.Context, system, user string) (string, error) {
	body := newOpenAIChatRequest(p.cfg.Model, p.cfg.Temperature, p.cfg.MaxTokens, system, user)
	return p.chat.post(ctx, "/v1/chat/completions", nil, nil, body)
}

func (p *OllamaProvider) Convert(ctx context.Context, content string) (string, error) {
	return convert(ctx, p, content)
}
