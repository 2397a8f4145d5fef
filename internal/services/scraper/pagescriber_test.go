package scraper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/cooklang/cooklang-import/internal/errors"
)

func scriberServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/fetch-content", r.URL.Path)
		var req struct {
			URL string `json:"url"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://example.com/soup", req.URL)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"content": content})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestPageScriber_PlainText(t *testing.T) {
	server := scriberServer(t, http.StatusOK, "Tomato soup\n2 tomatoes")

	got, err := NewPageScriber(server.URL, time.Second).Fetch(context.Background(), "https://example.com/soup")
	require.NoError(t, err)
	assert.Equal(t, "Tomato soup\n2 tomatoes", got)
}

func TestPageScriber_HTMLToMarkdown(t *testing.T) {
	server := scriberServer(t, http.StatusOK, "<html><body><h1>Tomato soup</h1><ul><li>2 tomatoes</li></ul></body></html>")

	got, err := NewPageScriber(server.URL+"/", time.Second).Fetch(context.Background(), "https://example.com/soup")
	require.NoError(t, err)
	assert.Contains(t, got, "# Tomato soup")
	assert.Contains(t, got, "- 2 tomatoes")
	assert.NotContains(t, got, "<li>")
}

func TestPageScriber_ErrorStatus(t *testing.T) {
	server := scriberServer(t, http.StatusBadGateway, "")

	_, err := NewPageScriber(server.URL, time.Second).Fetch(context.Background(), "https://example.com/soup")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeFetch))
	assert.Contains(t, err.Error(), "status: 502")
}

func TestPageScriber_Empty(t *testing.T) {
	server := scriberServer(t, http.StatusOK, "   ")

	_, err := NewPageScriber(server.URL, time.Second).Fetch(context.Background(), "https://example.com/soup")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyPage)
}
