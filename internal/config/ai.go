package config

import (
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultProvider      = "openai"
	DefaultTemperature   = 0.7
	DefaultMaxTokens     = 2000
	DefaultRetryAttempts = 3
	DefaultRetryDelayMs  = 1000
	DefaultTimeout       = 30
)

// Default models used when a provider is configured from credentials alone.
var defaultModels = map[string]string{
	"openai":       "gpt-4.1-mini",
	"anthropic":    "claude-3-5-haiku-latest",
	"google":       "gemini-2.0-flash",
	"azure_openai": "gpt-4o-mini",
	"ollama":       "llama3.2",
}

// DefaultExtractors is the structured extractor order.
func DefaultExtractors() []string {
	return []string{"json_ld", "microdata", "html_class"}
}

type AIConfig struct {
	DefaultProvider string                    `yaml:"default_provider"`
	Providers       map[string]ProviderConfig `yaml:"providers"`
	Fallback        FallbackConfig            `yaml:"fallback"`
	Extractors      ExtractorsConfig          `yaml:"extractors"`
	// Timeout is the page fetch timeout in seconds.
	Timeout    int              `yaml:"timeout"`
	Extraction ExtractionConfig `yaml:"extraction"`
}

// ProviderConfig holds the static settings of one vendor.
type ProviderConfig struct {
	Enabled        bool    `yaml:"enabled"`
	Model          string  `yaml:"model"`
	Temperature    float64 `yaml:"temperature"`
	MaxTokens      int     `yaml:"max_tokens"`
	APIKey         string  `yaml:"api_key"`
	BaseURL        string  `yaml:"base_url"`
	Endpoint       string  `yaml:"endpoint"`
	DeploymentName string  `yaml:"deployment_name"`
	APIVersion     string  `yaml:"api_version"`
	ProjectID      string  `yaml:"project_id"`
}

type FallbackConfig struct {
	Enabled       bool     `yaml:"enabled"`
	Order         []string `yaml:"order"`
	RetryAttempts int      `yaml:"retry_attempts"`
	RetryDelayMs  int      `yaml:"retry_delay_ms"`
}

type ExtractorsConfig struct {
	Enabled []string `yaml:"enabled"`
	Order   []string `yaml:"order"`
}

// ExtractionConfig selects the provider used to pull recipe fields out of
// unstructured text. Empty values fall back to the default provider.
type ExtractionConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	// ValidateContent asks the extraction provider whether API text that
	// passes the keyword check only weakly is a recipe at all.
	ValidateContent bool `yaml:"validate_content"`
}

func DefaultAIConfig() AIConfig {
	return AIConfig{
		DefaultProvider: DefaultProvider,
		Providers:       map[string]ProviderConfig{},
		Fallback:        defaultFallback(),
		Extractors:      ExtractorsConfig{Enabled: DefaultExtractors(), Order: DefaultExtractors()},
		Timeout:         DefaultTimeout,
	}
}

func defaultFallback() FallbackConfig {
	return FallbackConfig{RetryAttempts: DefaultRetryAttempts, RetryDelayMs: DefaultRetryDelayMs}
}

// The UnmarshalYAML methods seed defaults so that only keys present in the
// file override them.

func (a *AIConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain AIConfig
	raw := plain(DefaultAIConfig())
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.Providers == nil {
		raw.Providers = map[string]ProviderConfig{}
	}
	*a = AIConfig(raw)
	return nil
}

func (p *ProviderConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain ProviderConfig
	raw := plain{Temperature: DefaultTemperature, MaxTokens: DefaultMaxTokens}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*p = ProviderConfig(raw)
	return nil
}

func (f *FallbackConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain FallbackConfig
	raw := plain(defaultFallback())
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*f = FallbackConfig(raw)
	return nil
}

func (e *ExtractorsConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain ExtractorsConfig
	raw := plain{Enabled: DefaultExtractors(), Order: DefaultExtractors()}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*e = ExtractorsConfig(raw)
	return nil
}

// ExtractorOrder is the configured order restricted to enabled extractors.
func (a AIConfig) ExtractorOrder() []string {
	var order []string
	for _, name := range a.Extractors.Order {
		if slices.Contains(a.Extractors.Enabled, name) {
			order = append(order, name)
		}
	}
	return order
}

// RetryDelay is the base delay of the linear retry backoff.
func (a AIConfig) RetryDelay() time.Duration {
	return time.Duration(a.Fallback.RetryDelayMs) * time.Millisecond
}

// WithProvider returns a copy of a that routes every conversion to one
// provider, optionally overriding its model and key. Fallback is disabled.
func (a AIConfig) WithProvider(name, model, apiKey string) AIConfig {
	out := a
	out.Providers = make(map[string]ProviderConfig, len(a.Providers)+1)
	for k, v := range a.Providers {
		out.Providers[k] = v
	}

	p, ok := out.Providers[name]
	if !ok {
		p = ProviderConfig{Temperature: DefaultTemperature, MaxTokens: DefaultMaxTokens, Model: defaultModels[name]}
	}
	p.Enabled = true
	if model != "" {
		p.Model = model
	}
	if apiKey != "" {
		p.APIKey = apiKey
	}
	out.Providers[name] = p
	out.DefaultProvider = name
	out.Fallback.Enabled = false
	return out
}

// ApplyCredentials adds a provider entry for every vendor whose credentials
// are present in the environment and fills missing keys of existing entries.
func (c *Config) ApplyCredentials() {
	if c.AI.Providers == nil {
		c.AI.Providers = map[string]ProviderConfig{}
	}
	creds := c.Credentials
	fill := func(name, key string, usable bool, apply func(*ProviderConfig)) {
		p, ok := c.AI.Providers[name]
		if !ok {
			if !usable {
				return
			}
			p = ProviderConfig{
				Enabled:     true,
				Model:       defaultModels[name],
				Temperature: DefaultTemperature,
				MaxTokens:   DefaultMaxTokens,
			}
		}
		if p.APIKey == "" {
			p.APIKey = key
		}
		if apply != nil {
			apply(&p)
		}
		c.AI.Providers[name] = p
	}

	fill("openai", creds.OpenAIKey, creds.OpenAIKey != "", nil)
	fill("anthropic", creds.AnthropicKey, creds.AnthropicKey != "", nil)
	fill("google", creds.GoogleKey, creds.GoogleKey != "", nil)
	fill("azure_openai", creds.AzureKey, creds.AzureKey != "" && creds.AzureEndpoint != "", func(p *ProviderConfig) {
		if p.Endpoint == "" {
			p.Endpoint = creds.AzureEndpoint
		}
		if p.DeploymentName == "" {
			p.DeploymentName = creds.AzureDeployment
		}
	})
	fill("ollama", "", creds.OllamaBaseURL != "", func(p *ProviderConfig) {
		if p.BaseURL == "" {
			p.BaseURL = creds.OllamaBaseURL
		}
	})
}
