package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func TestNew(t *testing.T) {
	t.Run("production", func(t *testing.T) {
		l := New("production")
		if l == nil {
			t.Fatal("expected logger to be non-nil")
		}
	})

	t.Run("development", func(t *testing.T) {
		l := New("development")
		if l == nil {
			t.Fatal("expected logger to be non-nil")
		}
	})
}

type mockSpan struct {
	trace.Span
	sc trace.SpanContext
}

func (s mockSpan) SpanContext() trace.SpanContext {
	return s.sc
}

func TestWithTraceContext(t *testing.T) {
	t.Run("valid span", func(t *testing.T) {
		traceID, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
		spanID, _ := trace.SpanIDFromHex("0102030405060708")
		sc := trace.NewSpanContext(trace.SpanContextConfig{
			TraceID: traceID,
			SpanID:  spanID,
		})
		ctx := trace.ContextWithSpan(context.Background(), mockSpan{sc: sc})

		attr := WithTraceContext(ctx)
		if attr.Key != "trace" {
			t.Errorf("expected key 'trace', got %s", attr.Key)
		}

		group := attr.Value.Group()
		if len(group) != 2 {
			t.Errorf("expected 2 attributes in group, got %d", len(group))
		}

		foundTraceID := false
		foundSpanID := false
		for _, a := range group {
			if a.Key == "trace_id" && a.Value.String() == "0102030405060708090a0b0c0d0e0f10" {
				foundTraceID = true
			}
			if a.Key == "span_id" && a.Value.String() == "0102030405060708" {
				foundSpanID = true
			}
		}

		if !foundTraceID {
			t.Error("trace_id not found or incorrect")
		}
		if !foundSpanID {
			t.Error("span_id not found or incorrect")
		}
	})

	t.Run("invalid span", func(t *testing.T) {
		ctx := context.Background()
		attr := WithTraceContext(ctx)
		if !attr.Equal(slog.Attr{}) {
			t.Errorf("expected empty attribute for invalid span, got %+v", attr)
		}
	})
}

func TestNewCLI(t *testing.T) {
	var buf bytes.Buffer
	l := NewCLI(&buf, false)
	l.Info("hidden")
	l.Warn("shown", "provider", "openai")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("expected info to be filtered, got %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "provider=openai") {
		t.Errorf("expected warning with attrs, got %q", out)
	}

	buf.Reset()
	NewCLI(&buf, true).Debug("verbose")
	if !strings.Contains(buf.String(), "verbose") {
		t.Errorf("expected debug output in verbose mode, got %q", buf.String())
	}
}

func TestOtelHandler_KeepsAttrs(t *testing.T) {
	var buf bytes.Buffer
	base := slog.NewTextHandler(&buf, nil)
	h := (&otelHandler{handler: base}).WithAttrs([]slog.Attr{slog.String("service", "worker")})

	oh, ok := h.(*otelHandler)
	if !ok {
		t.Fatalf("expected *otelHandler, got %T", h)
	}
	if len(oh.attrs) != 1 || oh.attrs[0].Key != "service" {
		t.Errorf("expected service attr to be kept, got %v", oh.attrs)
	}

	slog.New(h).Info("hello")
	if !strings.Contains(buf.String(), "service=worker") {
		t.Errorf("expected attrs on output, got %q", buf.String())
	}
}

func TestSeverity(t *testing.T) {
	tests := map[slog.Level]string{
		slog.LevelDebug: "DEBUG",
		slog.LevelInfo:  "INFO",
		slog.LevelWarn:  "WARN",
		slog.LevelError: "ERROR",
	}
	for level, want := range tests {
		if got := severity(level).String(); got != want {
			t.Errorf("severity(%v) = %s; want %s", level, got, want)
		}
	}
}
