package sentry

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	apperrors "github.com/cooklang/cooklang-import/internal/errors"
)

// Init initializes Sentry with the provided configuration.
// If DSN is empty, Sentry initialization is skipped and nil is returned.
func Init(dsn, env, serviceName, serviceVersion string) error {
	if dsn == "" {
		return nil
	}

	options := sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      env,
		ServerName:       serviceName,
		Release:          serviceVersion,
		AttachStacktrace: true,
		TracesSampleRate: 0.0, // OpenTelemetry owns tracing
	}

	if err := sentry.Init(options); err != nil {
		return fmt.Errorf("failed to initialize Sentry: %w", err)
	}

	return nil
}

// Flush waits for all pending Sentry events to be sent.
// Call this during graceful shutdown.
func Flush(timeout time.Duration) {
	sentry.Flush(timeout)
}

// Recover captures a panic and forwards it to Sentry.
// Should be used with defer in goroutines.
func Recover() {
	if err := recover(); err != nil {
		sentry.CurrentHub().Recover(err)
		sentry.Flush(2 * time.Second)
		panic(err)
	}
}

// Reportable reports whether err is worth an alert. Errors caused by the
// caller's input or by the page being imported are not.
func Reportable(err error) bool {
	if err == nil {
		return false
	}
	appErr, ok := apperrors.As(err)
	if !ok {
		return true
	}
	switch appErr.Type {
	case apperrors.ErrorTypeValidation,
		apperrors.ErrorTypeNotFound,
		apperrors.ErrorTypeNoExtractorMatched,
		apperrors.ErrorTypeBuilder:
		return false
	}
	return true
}

// CaptureError sends err to Sentry with its error type and code as tags.
// It uses the hub stored on ctx when there is one.
func CaptureError(ctx context.Context, err error, tags map[string]string) {
	if !Reportable(err) {
		return
	}
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		if appErr, ok := apperrors.As(err); ok {
			scope.SetTag("error_type", string(appErr.Type))
			if code := appErr.Code(); code != "" {
				scope.SetTag("error_code", code)
			}
		}
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		hub.CaptureException(err)
	})
}
