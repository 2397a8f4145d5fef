package providers

import (
	"strings"

	"github.com/cooklang/cooklang-import/internal/errors"
)

// ProviderError represents a classified error from an AI provider
type ProviderError struct {
	Type     string // "rate_limit", "credit_exhausted", "timeout", "server_error", "client_error", "unknown"
	Message  string
	Provider string
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	return e.Message
}

var (
	rateLimitPatterns = []string{"status 429", "http 429", "rate limit", "too many requests"}
	timeoutPatterns   = []string{"timeout", "timed out", "deadline exceeded"}
	creditPatterns    = []string{"status 402", "http 402", "insufficient credit", "insufficient_quota", "credit exhausted", "billing"}
	serverPatterns    = []string{"status 5", "http 5", "server error", "internal error", "overloaded"}
	clientPatterns    = []string{"status 4", "http 4", "bad request", "unauthorized", "forbidden", "invalid api key"}
)

// ClassifyError analyzes an error and returns a ProviderError with classification
func ClassifyError(err error, provider string) *ProviderError {
	if err == nil {
		return nil
	}

	msg := err.Error()
	classified := func(kind string) *ProviderError {
		return &ProviderError{Type: kind, Message: msg, Provider: provider}
	}

	switch {
	case containsAny(msg, rateLimitPatterns):
		return classified("rate_limit")
	case containsAny(msg, creditPatterns):
		return classified("credit_exhausted")
	case containsAny(msg, timeoutPatterns):
		return classified("timeout")
	}

	if appErr, ok := errors.As(err); ok {
		if appErr.Type == errors.ErrorTypeConfig {
			return classified("client_error")
		}
		if appErr.StatusCode >= 500 {
			return classified("server_error")
		}
		if appErr.StatusCode >= 400 {
			return classified("client_error")
		}
	}

	switch {
	case containsAny(msg, serverPatterns):
		return classified("server_error")
	case containsAny(msg, clientPatterns):
		return classified("client_error")
	}

	return classified("unknown")
}

// IsRetryableError returns true if the error is retryable (rate limit, credit exhausted, timeout or server error)
func IsRetryableError(err error) bool {
	providerErr := ClassifyError(err, "")
	if providerErr == nil {
		return false
	}

	switch providerErr.Type {
	case "rate_limit", "credit_exhausted", "timeout", "server_error":
		return true
	default:
		return false
	}
}

// containsAny reports whether s contains any of the lowercase patterns, ignoring case.
func containsAny(s string, patterns []string) bool {
	lower := strings.ToLower(s)
	for _, p := range patterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
