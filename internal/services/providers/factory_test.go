package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cooklang/cooklang-import/internal/config"
	apperrors "github.com/cooklang/cooklang-import/internal/errors"
)

func enabledConfig() config.ProviderConfig {
	return config.ProviderConfig{
		Enabled:        true,
		Model:          "test-model",
		Temperature:    0.7,
		MaxTokens:      2000,
		APIKey:         "test-key",
		Endpoint:       "https://example.openai.azure.com",
		DeploymentName: "gpt4",
	}
}

func TestNew_AllProviders(t *testing.T) {
	for _, name := range Available() {
		t.Run(name, func(t *testing.T) {
			p, err := New(name, enabledConfig())
			require.NoError(t, err)
			assert.Equal(t, name, p.Name())
		})
	}
}

func TestNew_Types(t *testing.T) {
	tests := []struct {
		name     string
		expected any
	}{
		{"openai", &OpenAIProvider{}},
		{"anthropic", &AnthropicProvider{}},
		{"azure_openai", &AzureOpenAIProvider{}},
		{"google", &GoogleProvider{}},
		{"ollama", &OllamaProvider{}},
	}

	for _, tt := range tests {
		p, err := New(tt.name, enabledConfig())
		require.NoError(t, err)
		assert.IsType(t, tt.expected, p)
	}
}

func TestNew_Disabled(t *testing.T) {
	cfg := enabledConfig()
	cfg.Enabled = false

	_, err := New("openai", cfg)
	require.Error(t, err)
	assert.Equal(t, `provider "openai" is not enabled in configuration`, err.Error())
}

func TestNew_Unknown(t *testing.T) {
	_, err := New("cohere", enabledConfig())
	require.Error(t, err)
	assert.Equal(t, "unknown provider: cohere", err.Error())
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeConfig))
}

func TestNew_MissingCredentials(t *testing.T) {
	cfg := enabledConfig()
	cfg.APIKey = ""

	for _, name := range []string{"openai", "anthropic", "azure_openai", "google"} {
		_, err := New(name, cfg)
		assert.Error(t, err, name)
	}

	// Ollama runs locally without a key.
	_, err := New("ollama", cfg)
	assert.NoError(t, err)
}

func TestNew_AzureRequiresDeployment(t *testing.T) {
	cfg := enabledConfig()
	cfg.DeploymentName = ""

	_, err := New("azure_openai", cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deployment")
}

func TestDefault(t *testing.T) {
	cfg := config.DefaultAIConfig()
	_, err := Default(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"openai" not found`)

	cfg.Providers["openai"] = enabledConfig()
	p, err := Default(cfg)
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())
}

func TestAvailable(t *testing.T) {
	assert.Equal(t, []string{"openai", "anthropic", "azure_openai", "google", "ollama"}, Available())
}

func TestFromConfig(t *testing.T) {
	cfg := config.DefaultAIConfig()
	cfg.Providers["openai"] = enabledConfig()

	engine, err := FromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "fallback", engine.Name())
	assert.Equal(t, []string{"openai"}, engine.Providers())
}

func TestForExtraction(t *testing.T) {
	cfg := config.DefaultAIConfig()
	cfg.Providers["openai"] = enabledConfig()

	c, err := ForExtraction(cfg)
	require.NoError(t, err)
	assert.IsType(t, &Fallback{}, c)

	cfg.Providers["anthropic"] = enabledConfig()
	cfg.Extraction.Provider = "anthropic"
	c, err = ForExtraction(cfg)
	require.NoError(t, err)
	assert.IsType(t, &AnthropicProvider{}, c)

	cfg.Extraction.Provider = "google"
	_, err = ForExtraction(cfg)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeConfig))
}
