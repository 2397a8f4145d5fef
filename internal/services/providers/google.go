package providers

import (
	"context"
	"net/url"

	"github.com/cooklang/cooklang-import/internal/config"
	"github.com/cooklang/cooklang-import/internal/errors"
)

const (
	googleBaseURL = "https://generativelanguage.googleapis.com"

	DefaultGoogleModel = "gemini-2.0-flash"
)

// GoogleProvider talks to the Gemini generateContent API.
type GoogleProvider struct {
	chat   chatClient
	cfg    config.ProviderConfig
	apiKey string
}

func NewGoogleProvider(cfg config.ProviderConfig) (*GoogleProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.NewConfigError("Google API key is required", "MISSING_API_KEY", nil)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGoogleModel
	}
	base := cfg.BaseURL
	if base == "" {
		base = googleBaseURL
	}
	return &GoogleProvider{
		chat:   newChatClient(Google, "Google", base, "$.candidates[0].content.parts[0].text"),
		cfg:    cfg,
		apiKey: cfg.APIKey,
	}, nil
}

func (p *GoogleProvider) Name() string { return Google }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction geminiContent   `json:"system_instruction"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  struct {
		Temperature     float64 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

func (p *GoogleProvider) Complete(ctx context.Context, system, user string) (string, error) {
	body := geminiRequest{
		SystemInstruction: geminiContent{Parts: []geminiPart{{Text: system}}},
		Contents:          []geminiContent{{Role: "user", Parts: []geminiPart{{Text: user}}}},
	}
	body.GenerationConfig.Temperature = p.cfg.Temperature
	body.GenerationConfig.MaxOutputTokens = p.cfg.MaxTokens

	path := "/v1beta/models/" + url.PathEscape(p.cfg.Model) + ":generateContent"
	return p.chat.post(ctx, path, nil, map[string]string{"key": p.apiKey}, body)
}

func (p *GoogleProvider) Convert(ctx context.Context, content string) (string, error) {
	return convert(ctx, p, content)
}
