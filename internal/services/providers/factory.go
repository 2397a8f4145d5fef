package providers

import (
	"context"
	"fmt"

	"github.com/cooklang/cooklang-import/internal/config"
	"github.com/cooklang/cooklang-import/internal/errors"
)

// New creates the named provider from its configuration.
func New(name string, cfg config.ProviderConfig) (Provider, error) {
	if !cfg.Enabled {
		return nil, errors.NewConfigError(
			fmt.Sprintf("provider %q is not enabled in configuration", name), "PROVIDER_DISABLED", nil)
	}

	switch name {
	case OpenAI:
		return NewOpenAIProvider(cfg)
	case Anthropic:
		return NewAnthropicProvider(cfg)
	case AzureOpenAI:
		return NewAzureOpenAIProvider(cfg)
	case Google:
		return NewGoogleProvider(cfg)
	case Ollama:
		return NewOllamaProvider(cfg)
	default:
		return nil, errors.NewConfigError(fmt.Sprintf("unknown provider: %s", name), "UNKNOWN_PROVIDER", nil)
	}
}

// Default creates the configured default provider.
func Default(cfg config.AIConfig) (Provider, error) {
	return Named(cfg, cfg.DefaultProvider)
}

// Named creates a provider by name from the AI configuration.
func Named(cfg config.AIConfig, name string) (Provider, error) {
	pc, ok := cfg.Providers[name]
	if !ok {
		return nil, errors.NewConfigError(
			fmt.Sprintf("provider %q not found in configuration", name), "PROVIDER_NOT_CONFIGURED", nil)
	}
	return New(name, pc)
}

// Completer is the prompt-level contract shared by providers and the
// fallback engine.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// ForExtraction returns the provider configured under ai.extraction, or the
// conversion engine when none is set.
func ForExtraction(cfg config.AIConfig) (Completer, error) {
	if cfg.Extraction.Provider == "" {
		return FromConfig(cfg)
	}
	return Named(cfg.WithProvider(cfg.Extraction.Provider, cfg.Extraction.Model, ""), cfg.Extraction.Provider)
}

// FromConfig builds the conversion engine described by cfg. With fallback
// disabled it wraps the default provider with a single attempt.
func FromConfig(cfg config.AIConfig) (*Fallback, error) {
	return NewFallback(cfg)
}
