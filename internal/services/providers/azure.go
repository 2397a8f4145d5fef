package providers

import (
	"context"
	"net/url"

	"github.com/cooklang/cooklang-import/internal/config"
	"github.com/cooklang/cooklang-import/internal/errors"
)

const defaultAzureAPIVersion = "2024-02-15-preview"

// AzureOpenAIProvider talks to an Azure OpenAI deployment.
type AzureOpenAIProvider struct {
	chat       chatClient
	cfg        config.ProviderConfig
	apiKey     string
	apiVersion string
}

func NewAzureOpenAIProvider(cfg config.ProviderConfig) (*AzureOpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.NewConfigError("Azure OpenAI API key is required", "MISSING_API_KEY", nil)
	}
	if cfg.Endpoint == "" {
		return nil, errors.NewConfigError("Azure OpenAI endpoint is required", "MISSING_ENDPOINT", nil)
	}
	if cfg.DeploymentName == "" {
		return nil, errors.NewConfigError("Azure OpenAI deployment name is required", "MISSING_DEPLOYMENT", nil)
	}
	version := cfg.APIVersion
	if version == "" {
		version = defaultAzureAPIVersion
	}
	return &AzureOpenAIProvider{
		chat:       newChatClient(AzureOpenAI, "Azure OpenAI", cfg.Endpoint, openAITextPath),
		cfg:        cfg,
		apiKey:     cfg.APIKey,
		apiVersion: version,
	}, nil
}

func (p *AzureOpenAIProvider) Name() string { return AzureOpenAI }

func (p *AzureOpenAIProvider) Complete(ctx context.Context, system, user string) (string, error) {
	path := "/openai/deployments/" + url.PathEscape(p.cfg.DeploymentName) + "/chat/completions"
	headers := map[string]string{"api-key": p.apiKey}
	query := map[string]string{"api-version": p.apiVersion}
	// The deployment selects the model.
	body := newOpenAIChatRequest("", p.cfg.Temperature, p.cfg.MaxTokens, system, user)
	return p.chat.post(ctx, path, headers, query, body)
}

func (p *AzureOpenAIProvider) Convert(ctx context.Context, content string) (string, error) {
	return convert(ctx, p, content)
}
