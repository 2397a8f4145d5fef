// Package providers turns recipe text into Cooklang through hosted language
// models, with ordered fallback and retries across vendors.
package providers

import (
	"context"

	"github.com/cooklang/cooklang-import/internal/services/ai"
)

const (
	OpenAI      = "openai"
	Anthropic   = "anthropic"
	AzureOpenAI = "azure_openai"
	Google      = "google"
	Ollama      = "ollama"

	// FallbackName is the name reported by the fallback engine.
	FallbackName = "fallback"
)

// Provider is a configured AI vendor. Implementations hold only their static
// configuration and are safe for concurrent use.
type Provider interface {
	Name() string
	// Complete sends a system prompt and user content and returns the model's text.
	Complete(ctx context.Context, system, user string) (string, error)
	// Convert rewrites recipe text as Cooklang.
	Convert(ctx context.Context, content string) (string, error)
}

// Available lists every provider name the factory understands.
func Available() []string {
	return []string{OpenAI, Anthropic, AzureOpenAI, Google, Ollama}
}

func convert(ctx context.Context, p Provider, content string) (string, error) {
	return p.Complete(ctx, ai.CooklangPrompt, content)
}
