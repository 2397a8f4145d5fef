package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/cooklang/cooklang-import/internal/errors"
	"github.com/cooklang/cooklang-import/internal/httpclient"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		url   string
		valid bool
	}{
		{"https://example.com/recipe", true},
		{"http://example.com", true},
		{"ftp://example.com", false},
		{"example.com/recipe", false},
		{"", false},
	}

	for _, tt := range tests {
		err := ValidateURL(tt.url)
		if (err == nil) != tt.valid {
			t.Errorf("ValidateURL(%q) error = %v; want valid=%v", tt.url, err, tt.valid)
		}
	}
}

func TestRequestFetcher_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, httpclient.UserAgent, r.Header.Get("User-Agent"))
		w.Write([]byte("<html><body>Soup</body></html>"))
	}))
	defer server.Close()

	body, err := NewRequestFetcher(time.Second).Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "<html><body>Soup</body></html>", body)
}

func TestRequestFetcher_Status(t *testing.T) {
	tests := []struct {
		status    int
		sentinel  error
		retryable bool
	}{
		{http.StatusNotFound, ErrPageNotFound, false},
		{http.StatusTooManyRequests, ErrRateLimited, true},
		{http.StatusInternalServerError, nil, false},
	}

	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))

		_, err := NewRequestFetcher(time.Second).Fetch(context.Background(), server.URL)
		server.Close()

		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ErrorTypeFetch))
		if tt.sentinel != nil {
			assert.True(t, errors.Is(err, tt.sentinel), "status %d", tt.status)
		}
		appErr, _ := apperrors.As(err)
		assert.Equal(t, tt.retryable, appErr.IsRetryable(), "status %d", tt.status)
	}
}

func TestRequestFetcher_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	_, err := NewRequestFetcher(20*time.Millisecond).Fetch(context.Background(), server.URL)
	require.Error(t, err)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "FETCH_TIMEOUT", appErr.Code())
}

func TestRequestFetcher_InvalidURL(t *testing.T) {
	_, err := NewRequestFetcher(time.Second).Fetch(context.Background(), "not a url")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidURL))
}
