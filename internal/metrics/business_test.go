package metrics

import (
	"context"
	"testing"
	"time"
)

func TestInitAndRecord(t *testing.T) {
	ctx := context.Background()
	start := time.Now()

	// Helpers must tolerate uninitialised instruments.
	RecordExtractorAttempt(ctx, "json_ld", "success")

	if err := Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	RecordImport(ctx, "url", "success", start)
	RecordExtractorAttempt(ctx, "json_ld", "rejected")
	RecordExternalCall(ctx, "openai", start)
	RecordConversion(ctx, "fallback", start)
	RecordProviderAttempt(ctx, "openai", 1, "error")
	RecordProviderFallback(ctx, "openai", "anthropic", "rate_limit")
}
