package ocr

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/cooklang/cooklang-import/internal/errors"
	"github.com/cooklang/cooklang-import/internal/recipe"
)

func visionServer(t *testing.T, status int, response string, content *string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/images:annotate", r.URL.Path)
		assert.Equal(t, "vision-key", r.URL.Query().Get("key"))

		var req annotateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Requests, 1)
		assert.Equal(t, "TEXT_DETECTION", req.Requests[0].Features[0].Type)
		if content != nil {
			*content = req.Requests[0].Image.Content
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNewVision_RequiresKey(t *testing.T) {
	_, err := NewVision("", "")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeConfig))
}

func TestVision_ReadPath(t *testing.T) {
	var sent string
	server := visionServer(t, http.StatusOK, `{"responses":[{"fullTextAnnotation":{"text":"2 eggs\nWhisk."}}]}`, &sent)

	path := filepath.Join(t.TempDir(), "card.jpg")
	require.NoError(t, os.WriteFile(path, []byte("jpeg-bytes"), 0644))

	v, err := NewVision("vision-key", server.URL)
	require.NoError(t, err)

	text, err := v.Read(context.Background(), recipe.PathImage(path))
	require.NoError(t, err)
	assert.Equal(t, "2 eggs\nWhisk.", text)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("jpeg-bytes")), sent)
}

func TestVision_ReadBase64DataURI(t *testing.T) {
	var sent string
	server := visionServer(t, http.StatusOK, `{"responses":[{"fullTextAnnotation":{"text":"Soup"}}]}`, &sent)

	v, err := NewVision("vision-key", server.URL)
	require.NoError(t, err)

	payload := base64.StdEncoding.EncodeToString([]byte("png"))
	_, err = v.Read(context.Background(), recipe.Base64Image("data:image/png;base64,"+payload))
	require.NoError(t, err)
	assert.Equal(t, payload, sent)
}

func TestVision_NoText(t *testing.T) {
	server := visionServer(t, http.StatusOK, `{"responses":[{}]}`, nil)

	v, err := NewVision("vision-key", server.URL)
	require.NoError(t, err)

	_, err = v.Read(context.Background(), recipe.Base64Image(base64.StdEncoding.EncodeToString([]byte("x"))))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeOCR))
	assert.Equal(t, "no text detected in image", err.Error())
}

func TestVision_APIError(t *testing.T) {
	server := visionServer(t, http.StatusForbidden, `{"error":{"message":"API key not valid"}}`, nil)

	v, err := NewVision("vision-key", server.URL)
	require.NoError(t, err)

	_, err = v.Read(context.Background(), recipe.Base64Image(base64.StdEncoding.EncodeToString([]byte("x"))))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Google Vision API error (403)")

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.False(t, appErr.IsRetryable())
}

func TestVision_RateLimited(t *testing.T) {
	server := visionServer(t, http.StatusTooManyRequests, `{"error":{"message":"Quota exceeded"}}`, nil)

	v, err := NewVision("vision-key", server.URL)
	require.NoError(t, err)

	_, err = v.Read(context.Background(), recipe.Base64Image(base64.StdEncoding.EncodeToString([]byte("x"))))
	require.Error(t, err)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeOCRRateLimited, appErr.Code())
	assert.True(t, appErr.IsRetryable())
	assert.True(t, appErr.IsRateLimited())
}

func TestVision_ResponseError(t *testing.T) {
	server := visionServer(t, http.StatusOK, `{"responses":[{"error":{"message":"Bad image data."}}]}`, nil)

	v, err := NewVision("vision-key", server.URL)
	require.NoError(t, err)

	_, err = v.Read(context.Background(), recipe.Base64Image(base64.StdEncoding.EncodeToString([]byte("x"))))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Bad image data.")
}

func TestEncodeImage_Errors(t *testing.T) {
	_, err := encodeImage(recipe.PathImage(filepath.Join(t.TempDir(), "missing.jpg")))
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeOCR))

	_, err = encodeImage(recipe.Base64Image("!!not base64!!"))
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeOCR))
}
