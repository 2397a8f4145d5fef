package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultResultCacheTTL applies when RESULT_CACHE_TTL is unset.
const DefaultResultCacheTTL = time.Hour

type Config struct {
	Env            string
	ServiceName    string
	ServiceVersion string

	Port               string
	CORSAllowedOrigins []string

	RedisURL string
	// ResultCacheTTL keeps URL import results in Redis. Zero disables it.
	ResultCacheTTL time.Duration

	JWTSecret string
	JWTIssuer string

	// PageScriberURL points at a headless-browser service used when a
	// page has no structured recipe markup.
	PageScriberURL string
	// GoogleVisionKey authenticates OCR calls.
	GoogleVisionKey string

	OtelExporterOTLPEndpoint string
	OtelExporterOTLPHeaders  string
	SentryDSN                string

	Credentials Credentials
	AI          AIConfig
}

// Credentials are the vendor keys found in the environment. They fill in
// provider entries that do not carry their own.
type Credentials struct {
	OpenAIKey       string
	AnthropicKey    string
	GoogleKey       string
	AzureKey        string
	AzureEndpoint   string
	AzureDeployment string
	OllamaBaseURL   string
}

// ConfigPath returns the YAML file Load reads.
func ConfigPath() string {
	if p := os.Getenv("COOKLANG_CONFIG"); p != "" {
		return p
	}
	return "config.yaml"
}

// Load reads the environment, then the YAML file, applies defaults and
// validates the AI settings. Service-only settings are checked by
// RequireService.
func Load() (*Config, error) {
	return LoadFile(ConfigPath())
}

// LoadFile is Load with an explicit YAML path.
func LoadFile(path string) (*Config, error) {
	cfg := &Config{
		Env:                      os.Getenv("ENV"),
		ServiceName:              os.Getenv("SERVICE_NAME"),
		ServiceVersion:           os.Getenv("SERVICE_VERSION"),
		Port:                     os.Getenv("PORT"),
		CORSAllowedOrigins:       splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		RedisURL:                 os.Getenv("REDIS_URL"),
		JWTSecret:                os.Getenv("JWT_SECRET"),
		JWTIssuer:                os.Getenv("JWT_ISSUER"),
		PageScriberURL:           os.Getenv("PAGE_SCRIBER_URL"),
		GoogleVisionKey:          firstNonEmpty(os.Getenv("GOOGLE_VISION_API_KEY"), os.Getenv("GOOGLE_API_KEY")),
		OtelExporterOTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OtelExporterOTLPHeaders:  os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"),
		SentryDSN:                os.Getenv("SENTRY_DSN"),
		Credentials: Credentials{
			OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
			AnthropicKey:    os.Getenv("ANTHROPIC_API_KEY"),
			GoogleKey:       os.Getenv("GOOGLE_API_KEY"),
			AzureKey:        os.Getenv("AZURE_OPENAI_API_KEY"),
			AzureEndpoint:   os.Getenv("AZURE_OPENAI_ENDPOINT"),
			AzureDeployment: os.Getenv("AZURE_OPENAI_DEPLOYMENT"),
			OllamaBaseURL:   os.Getenv("OLLAMA_BASE_URL"),
		},
		AI: DefaultAIConfig(),
	}

	if err := cfg.LoadFromYAML(path); err != nil {
		return nil, fmt.Errorf("failed to load YAML config: %w", err)
	}

	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "cooklang-import"
	}
	if cfg.ServiceVersion == "" {
		cfg.ServiceVersion = "1.0.0"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	ttl, err := parseDuration(os.Getenv("RESULT_CACHE_TTL"), DefaultResultCacheTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid RESULT_CACHE_TTL: %w", err)
	}
	cfg.ResultCacheTTL = ttl

	cfg.ApplyCredentials()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// LoadFromYAML overlays settings from path. A missing file is not an error.
func (c *Config) LoadFromYAML(path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var yamlConfig struct {
		AI              *AIConfig `yaml:"ai"`
		PageScriberURL  string    `yaml:"page_scriber_url"`
		GoogleVisionKey string    `yaml:"google_vision_api_key"`
	}

	if err := yaml.Unmarshal(data, &yamlConfig); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if yamlConfig.AI != nil {
		c.AI = *yamlConfig.AI
	}
	if yamlConfig.PageScriberURL != "" {
		c.PageScriberURL = yamlConfig.PageScriberURL
	}
	if yamlConfig.GoogleVisionKey != "" {
		c.GoogleVisionKey = yamlConfig.GoogleVisionKey
	}

	return nil
}

// FetchTimeout is the page fetch timeout.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.AI.Timeout) * time.Second
}

// RequireService checks the settings only the server and worker need.
func (c *Config) RequireService() error {
	if c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	return nil
}

func (c *Config) validate() error {
	if c.AI.DefaultProvider == "" {
		return fmt.Errorf("ai.default_provider must not be empty")
	}
	if c.AI.Fallback.RetryAttempts < 1 {
		return fmt.Errorf("ai.fallback.retry_attempts must be at least 1, got %d", c.AI.Fallback.RetryAttempts)
	}
	if c.AI.Fallback.RetryDelayMs < 0 {
		return fmt.Errorf("ai.fallback.retry_delay_ms must not be negative")
	}
	if c.AI.Timeout <= 0 {
		return fmt.Errorf("ai.timeout must be positive")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseDuration reads a Go duration, returning def for an empty string.
func parseDuration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must not be negative")
	}
	return d, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
