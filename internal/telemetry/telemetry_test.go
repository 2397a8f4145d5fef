package telemetry

import (
	"context"
	"testing"
)

func TestInitTelemetry(t *testing.T) {
	// Test with empty endpoint (should not fail, just no telemetry)
	shutdown, err := InitTelemetry(context.Background(), "test-service", "v1.0.0", "test", "", nil)
	if err != nil {
		t.Fatalf("InitTelemetry failed: %v", err)
	}
	if shutdown != nil {
		defer shutdown(context.Background())
	}
}

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		raw       string
		host      string
		insecure  bool
		tracePath string
		logPath   string
	}{
		{"https://otlp.example.com", "otlp.example.com", false, "/v1/traces", "/v1/logs"},
		{"http://localhost:4318", "localhost:4318", true, "/v1/traces", "/v1/logs"},
		{"https://gateway.example.com/otlp", "gateway.example.com", false, "/otlp/v1/traces", "/otlp/v1/logs"},
		{"https://collector.example.com/base/v1/traces", "collector.example.com", false, "/base/v1/traces", "/base/v1/logs"},
	}

	for _, tt := range tests {
		ep := parseEndpoint(tt.raw)
		if ep.host != tt.host || ep.insecure != tt.insecure || ep.tracePath != tt.tracePath || ep.logPath != tt.logPath {
			t.Errorf("parseEndpoint(%q) = %+v", tt.raw, ep)
		}
	}
}

func TestParseHeaders(t *testing.T) {
	got := ParseHeaders("Authorization=Bearer abc, x-scope = tenant ,broken,=empty")
	if len(got) != 2 {
		t.Fatalf("expected 2 headers, got %v", got)
	}
	if got["Authorization"] != "Bearer abc" {
		t.Errorf("unexpected Authorization header %q", got["Authorization"])
	}
	if got["x-scope"] != "tenant" {
		t.Errorf("unexpected x-scope header %q", got["x-scope"])
	}
	if len(ParseHeaders("")) != 0 {
		t.Error("expected no headers for empty input")
	}
}

func TestTracer(t *testing.T) {
	tracer := Tracer("test-tracer")
	if tracer == nil {
		t.Fatal("Tracer returned nil")
	}
}

func TestMiddleware(t *testing.T) {
	mw := Middleware()
	if mw == nil {
		t.Fatal("Middleware returned nil")
	}
}
