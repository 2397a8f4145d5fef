package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	meter = otel.Meter("cooklang-import/business")

	// Import metrics
	ImportsTotal   metric.Int64Counter
	ImportDuration metric.Float64Histogram

	// Extraction metrics
	ExtractorAttemptsTotal metric.Int64Counter

	// External API metrics
	ExternalAPICallsTotal metric.Int64Counter
	ExternalAPIDuration   metric.Float64Histogram

	// Conversion metrics
	ConversionDuration    metric.Float64Histogram
	ProviderAttemptsTotal metric.Int64Counter
	ProviderFallbackTotal metric.Int64Counter
)

func Init() error {
	var err error

	ImportsTotal, err = meter.Int64Counter(
		"recipe.imports.total",
		metric.WithDescription("Total number of recipe imports"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	ImportDuration, err = meter.Float64Histogram(
		"recipe.import.duration",
		metric.WithDescription("Duration of a full recipe import"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2, 5, 10, 30, 60),
	)
	if err != nil {
		return err
	}

	ExtractorAttemptsTotal, err = meter.Int64Counter(
		"recipe.extractor.attempts.total",
		metric.WithDescription("Structured extractor attempts by outcome"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	ExternalAPICallsTotal, err = meter.Int64Counter(
		"external.api.calls.total",
		metric.WithDescription("Total number of external API calls"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	ExternalAPIDuration, err = meter.Float64Histogram(
		"external.api.duration",
		metric.WithDescription("Duration of external API calls"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2, 5, 10, 30),
	)
	if err != nil {
		return err
	}

	ConversionDuration, err = meter.Float64Histogram(
		"recipe.conversion.duration",
		metric.WithDescription("Duration of Cooklang conversion including retries"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2, 5, 10, 30, 60),
	)
	if err != nil {
		return err
	}

	ProviderAttemptsTotal, err = meter.Int64Counter(
		"provider.attempts.total",
		metric.WithDescription("Provider attempts by outcome"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	ProviderFallbackTotal, err = meter.Int64Counter(
		"provider.fallback.total",
		metric.WithDescription("Total number of provider fallback events"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	return nil
}

// The Record helpers are no-ops until Init has run, so library code and
// tests can call them unconditionally.

func RecordImport(ctx context.Context, source, status string, start time.Time) {
	attrs := metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("status", status),
	)
	if ImportsTotal != nil {
		ImportsTotal.Add(ctx, 1, attrs)
	}
	if ImportDuration != nil {
		ImportDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	}
}

func RecordExtractorAttempt(ctx context.Context, extractor, outcome string) {
	if ExtractorAttemptsTotal == nil {
		return
	}
	ExtractorAttemptsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("extractor", extractor),
		attribute.String("outcome", outcome),
	))
}

func RecordExternalCall(ctx context.Context, service string, start time.Time) {
	attrs := metric.WithAttributes(attribute.String("provider", service))
	if ExternalAPIDuration != nil {
		ExternalAPIDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	}
	if ExternalAPICallsTotal != nil {
		ExternalAPICallsTotal.Add(ctx, 1, attrs)
	}
}

func RecordConversion(ctx context.Context, provider string, start time.Time) {
	if ConversionDuration == nil {
		return
	}
	ConversionDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("provider", provider)))
}

func RecordProviderAttempt(ctx context.Context, provider string, attempt int, outcome string) {
	if ProviderAttemptsTotal == nil {
		return
	}
	ProviderAttemptsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.Int("attempt", attempt),
		attribute.String("outcome", outcome),
	))
}

func RecordProviderFallback(ctx context.Context, from, to, reason string) {
	if ProviderFallbackTotal == nil {
		return
	}
	ProviderFallbackTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("from_provider", from),
		attribute.String("to_provider", to),
		attribute.String("reason", reason),
	))
}
