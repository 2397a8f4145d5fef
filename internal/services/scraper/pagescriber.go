package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/go-resty/resty/v2"

	"github.com/cooklang/cooklang-import/internal/errors"
	"github.com/cooklang/cooklang-import/internal/httpclient"
	"github.com/cooklang/cooklang-import/internal/metrics"
)

// PageScriber asks a headless-browser service for the rendered content of a
// page. HTML replies are converted to Markdown so the text keeps its lists
// and headings.
type PageScriber struct {
	client *resty.Client
}

func NewPageScriber(baseURL string, timeout time.Duration) *PageScriber {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &PageScriber{client: httpclient.NewRestyClient(strings.TrimRight(baseURL, "/"), timeout)}
}

type fetchContentRequest struct {
	URL string `json:"url"`
}

type fetchContentResponse struct {
	Content string `json:"content"`
}

func (p *PageScriber) Fetch(ctx context.Context, pageURL string) (string, error) {
	start := time.Now()
	defer metrics.RecordExternalCall(ctx, "page_scriber", start)

	var out fetchContentResponse
	resp, err := p.client.R().
		SetContext(httpclient.WithProvider(ctx, "PageScriber")).
		SetBody(fetchContentRequest{URL: pageURL}).
		SetResult(&out).
		Post("/api/fetch-content")
	if err != nil {
		return "", errors.NewFetchError("page renderer request failed", "RENDER_FAILED", err)
	}
	if resp.IsError() {
		return "", errors.NewFetchError(
			fmt.Sprintf("page renderer failed with status: %d", resp.StatusCode()), "RENDER_FAILED", statusError(resp.StatusCode()))
	}

	content := strings.TrimSpace(out.Content)
	if content == "" {
		return "", errors.NewFetchError("page renderer returned no content", "RENDER_EMPTY", ErrEmptyPage)
	}
	if !looksLikeHTML(content) {
		return content, nil
	}

	markdown, err := htmltomarkdown.ConvertString(content)
	if err != nil {
		return "", errors.NewFetchError("failed to convert rendered page", "RENDER_FAILED", err)
	}
	return strings.TrimSpace(markdown), nil
}

func looksLikeHTML(s string) bool {
	head := strings.ToLower(s[:min(len(s), 512)])
	return strings.HasPrefix(head, "<!doctype html") ||
		strings.Contains(head, "<html") ||
		strings.Contains(head, "<body") ||
		strings.Contains(head, "<div")
}
