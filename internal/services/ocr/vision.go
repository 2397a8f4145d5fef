// Package ocr reads recipe text from images with Google Cloud Vision.
package ocr

import (
	"context"
	"encoding/base64"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/go-resty/resty/v2"

	"github.com/cooklang/cooklang-import/internal/errors"
	"github.com/cooklang/cooklang-import/internal/httpclient"
	"github.com/cooklang/cooklang-import/internal/metrics"
	"github.com/cooklang/cooklang-import/internal/recipe"
)

const (
	visionBaseURL = "https://vision.googleapis.com"
	visionTimeout = 60 * time.Second
)

// Reader turns one image into text.
type Reader interface {
	Read(ctx context.Context, image recipe.ImageSource) (string, error)
}

// Vision calls the TEXT_DETECTION feature of the Vision API.
type Vision struct {
	client *resty.Client
	apiKey string
}

// NewVision returns a Vision client. baseURL may be empty.
func NewVision(apiKey, baseURL string) (*Vision, error) {
	if apiKey == "" {
		return nil, errors.NewConfigError("Google Vision API key is required for image import", "MISSING_API_KEY", nil)
	}
	if baseURL == "" {
		baseURL = visionBaseURL
	}
	return &Vision{
		client: httpclient.NewRestyClient(strings.TrimRight(baseURL, "/"), visionTimeout),
		apiKey: apiKey,
	}, nil
}

type annotateRequest struct {
	Requests []annotateImage `json:"requests"`
}

type annotateImage struct {
	Image struct {
		Content string `json:"content"`
	} `json:"image"`
	Features []feature `json:"features"`
}

type feature struct {
	Type string `json:"type"`
}

func (v *Vision) Read(ctx context.Context, image recipe.ImageSource) (string, error) {
	content, err := encodeImage(image)
	if err != nil {
		return "", err
	}

	req := annotateImage{Features: []feature{{Type: "TEXT_DETECTION"}}}
	req.Image.Content = content

	start := time.Now()
	defer metrics.RecordExternalCall(ctx, "google_vision", start)

	resp, err := v.client.R().
		SetContext(httpclient.WithProvider(ctx, "Google Vision")).
		SetQueryParam("key", v.apiKey).
		SetBody(annotateRequest{Requests: []annotateImage{req}}).
		Post("/v1/images:annotate")
	if err != nil {
		code := "OCR_REQUEST_FAILED"
		if isTimeout(err) {
			code = errors.CodeOCRTimeout
		}
		return "", errors.NewOCRError("Google Vision request failed", code, err)
	}
	if resp.IsError() {
		code := "OCR_API_ERROR"
		if resp.StatusCode() == http.StatusTooManyRequests {
			code = errors.CodeOCRRateLimited
		}
		return "", errors.NewOCRError(
			fmt.Sprintf("Google Vision API error (%d): %s", resp.StatusCode(), strings.TrimSpace(resp.String())), code, nil)
	}

	var doc any
	if err := json.Unmarshal(resp.Body(), &doc); err != nil {
		return "", errors.NewOCRError("invalid Google Vision response", "OCR_INVALID_RESPONSE", err)
	}

	if msg, err := jsonpath.Get("$.responses[0].error.message", doc); err == nil {
		return "", errors.NewOCRError(fmt.Sprintf("Google Vision API error: %v", msg), "OCR_API_ERROR", nil)
	}

	text, err := jsonpath.Get("$.responses[0].fullTextAnnotation.text", doc)
	s, ok := text.(string)
	if err != nil || !ok || strings.TrimSpace(s) == "" {
		return "", errors.NewOCRError("no text detected in image", "OCR_NO_TEXT", nil)
	}

	slog.Debug("Extracted text from image", "source", image.Label(), "chars", len(s))
	return s, nil
}

// encodeImage returns the base64 payload for image. Base64 input may carry
// a data URI prefix.
func encodeImage(image recipe.ImageSource) (string, error) {
	switch image.Kind {
	case recipe.ImagePath:
		data, err := os.ReadFile(image.Value)
		if err != nil {
			return "", errors.NewOCRError(fmt.Sprintf("failed to read image %s", image.Value), "IMAGE_READ_FAILED", err)
		}
		return base64.StdEncoding.EncodeToString(data), nil
	case recipe.ImageBase64:
		data := image.Value
		if strings.HasPrefix(data, "data:") {
			if _, payload, ok := strings.Cut(data, ","); ok {
				data = payload
			}
		}
		data = strings.TrimSpace(data)
		if _, err := base64.StdEncoding.DecodeString(data); err != nil {
			return "", errors.NewOCRError("image is not valid base64", "IMAGE_INVALID_BASE64", err)
		}
		return data, nil
	default:
		return "", errors.NewOCRError("unknown image source", "IMAGE_UNKNOWN_SOURCE", nil)
	}
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return stderrors.Is(err, context.DeadlineExceeded) || (stderrors.As(err, &t) && t.Timeout())
}
