package providers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cooklang/cooklang-import/internal/config"
	"github.com/cooklang/cooklang-import/internal/errors"
	"github.com/cooklang/cooklang-import/internal/metrics"
	"github.com/cooklang/cooklang-import/internal/services/ai"
	"github.com/cooklang/cooklang-import/internal/utils"
)

// Fallback tries providers in order, retrying each with a linear backoff of
// retryDelay * attempt before moving on.
type Fallback struct {
	providers     []Provider
	retryAttempts int
	retryDelay    time.Duration
}

// NewFallback builds the engine from cfg. Providers missing from the
// configuration, disabled or failing to initialize are skipped with a warning.
func NewFallback(cfg config.AIConfig) (*Fallback, error) {
	if !cfg.Fallback.Enabled {
		p, err := Default(cfg)
		if err != nil {
			return nil, err
		}
		return &Fallback{providers: []Provider{p}, retryAttempts: 1}, nil
	}

	var chain []Provider
	for _, name := range cfg.Fallback.Order {
		pc, ok := cfg.Providers[name]
		if !ok {
			slog.Warn("Provider in fallback order not found in configuration", "provider", name)
			continue
		}
		if !pc.Enabled {
			slog.Warn("Provider in fallback order is disabled", "provider", name)
			continue
		}
		p, err := New(name, pc)
		if err != nil {
			slog.Warn("Failed to initialize provider", "provider", name, "error", err)
			continue
		}
		slog.Debug("Added provider to fallback chain", "provider", name)
		chain = append(chain, p)
	}

	return NewFallbackOf(chain, cfg.Fallback.RetryAttempts, cfg.RetryDelay())
}

// NewFallbackOf builds an engine over explicit providers.
func NewFallbackOf(chain []Provider, retryAttempts int, retryDelay time.Duration) (*Fallback, error) {
	if len(chain) == 0 {
		return nil, errors.NewConfigError("no providers available in fallback configuration", "NO_PROVIDERS", nil)
	}
	return &Fallback{
		providers:     chain,
		retryAttempts: max(retryAttempts, 1),
		retryDelay:    retryDelay,
	}, nil
}

func (f *Fallback) Name() string { return FallbackName }

// Providers returns the names of the chained providers in order.
func (f *Fallback) Providers() []string {
	names := make([]string, len(f.providers))
	for i, p := range f.providers {
		names[i] = p.Name()
	}
	return names
}

func (f *Fallback) Convert(ctx context.Context, content string) (string, error) {
	return f.Complete(ctx, ai.CooklangPrompt, content)
}

// Complete returns the first successful reply. When every provider fails the
// error lists each provider's last failure in order, one per line.
func (f *Fallback) Complete(ctx context.Context, system, user string) (string, error) {
	var failures []string
	rateLimited, transient := true, true

	for i, p := range f.providers {
		result, err := f.tryProvider(ctx, p, system, user)
		if err == nil {
			return result, nil
		}
		if ctx.Err() != nil {
			return "", errors.NewConversionError("conversion cancelled", "CONVERSION_CANCELLED", ctx.Err())
		}

		failures = append(failures, fmt.Sprintf("%s: %v", p.Name(), err))

		reason := ClassifyError(err, p.Name()).Type
		rateLimited = rateLimited && reason == "rate_limit"
		transient = transient && (reason == "rate_limit" || reason == "timeout")

		if i+1 < len(f.providers) {
			next := f.providers[i+1].Name()
			slog.Warn("Provider exhausted, falling back", "provider", p.Name(), "next_provider", next, "error_type", reason)
			metrics.RecordProviderFallback(ctx, p.Name(), next, reason)
		}
	}

	msg := "All providers failed:\n" + strings.Join(failures, "\n")
	slog.Error("All providers failed", "providers", f.Providers())
	return "", errors.NewConversionError(msg, exhaustedCode(rateLimited, transient), nil)
}

func (f *Fallback) tryProvider(ctx context.Context, p Provider, system, user string) (string, error) {
	attempt := 0
	return utils.WithRetry(ctx, func(ctx context.Context) (string, error) {
		attempt++
		slog.Debug("Attempting conversion", "provider", p.Name(), "attempt", attempt, "max_attempts", f.retryAttempts)

		start := time.Now()
		result, err := p.Complete(ctx, system, user)
		if err != nil {
			metrics.RecordProviderAttempt(ctx, p.Name(), attempt, "failure")
			slog.Warn("Provider attempt failed",
				"provider", p.Name(),
				"attempt", attempt,
				"max_attempts", f.retryAttempts,
				"error", err.Error())
			return "", err
		}

		metrics.RecordProviderAttempt(ctx, p.Name(), attempt, "success")
		metrics.RecordConversion(ctx, p.Name(), start)
		slog.Info("Provider succeeded", "provider", p.Name(), "attempt", attempt)
		return result, nil
	}, utils.RetryConfig{
		MaxAttempts: f.retryAttempts,
		Backoff:     utils.LinearBackoff(f.retryDelay),
	})
}

// exhaustedCode marks a failed chain as transient only when every provider
// was rate limited or timed out.
func exhaustedCode(rateLimited, transient bool) string {
	switch {
	case rateLimited:
		return errors.CodeProvidersRateLimited
	case transient:
		return errors.CodeProvidersUnavailable
	default:
		return "ALL_PROVIDERS_FAILED"
	}
}
