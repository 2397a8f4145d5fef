package sentry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/cooklang/cooklang-import/internal/errors"
)

func TestInit_EmptyDSN(t *testing.T) {
	assert.NoError(t, Init("", "test", "cooklang-import", "1.0.0"))
}

func TestReportable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), true},
		{"validation", apperrors.NewValidationError("bad", "INVALID_URL", ""), false},
		{"builder", apperrors.NewBuilderError("no source", "NO_SOURCE"), false},
		{"no extractor", apperrors.NewNoExtractorMatchedError(nil), false},
		{"conversion", apperrors.NewConversionError("all failed", "ALL_PROVIDERS_FAILED", nil), true},
		{"config", apperrors.NewConfigError("missing key", "MISSING_API_KEY", nil), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reportable(tt.err))
		})
	}
}

func TestCaptureError_NoClient(t *testing.T) {
	// Without Init there is no client; capture must be a no-op.
	CaptureError(context.Background(), errors.New("boom"), map[string]string{"source": "url"})
}

func TestHTTPMiddleware_Panic(t *testing.T) {
	h := HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestHTTPMiddleware_PassThrough(t *testing.T) {
	h := HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusTeapot, rr.Code)
}
