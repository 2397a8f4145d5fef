// Package scraper fetches recipe pages, either as raw HTML or through a
// headless-browser rendering service.
package scraper

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cooklang/cooklang-import/internal/errors"
	"github.com/cooklang/cooklang-import/internal/httpclient"
	"github.com/cooklang/cooklang-import/internal/metrics"
)

// DefaultTimeout bounds a page fetch when none is configured.
const DefaultTimeout = 30 * time.Second

// maxPageSize caps how much of a response body is read.
const maxPageSize = 10 << 20

// Fetcher returns the raw body of a page.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// RequestFetcher performs a plain GET.
type RequestFetcher struct {
	httpClient *http.Client
}

func NewRequestFetcher(timeout time.Duration) *RequestFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &RequestFetcher{httpClient: httpclient.NewInstrumentedClient(timeout)}
}

// ValidateURL accepts absolute http(s) URLs only.
func ValidateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrInvalidURL
	}
	return nil
}

// Fetch returns the page body. Every failure is a FetchError and ends the
// pipeline run; only timeouts and 429s are marked transient for the job queue.
func (f *RequestFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	if err := ValidateURL(pageURL); err != nil {
		return "", errors.NewFetchError(fmt.Sprintf("cannot fetch %q", pageURL), "INVALID_URL", err)
	}

	start := time.Now()
	defer metrics.RecordExternalCall(ctx, "page_fetch", start)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", errors.NewFetchError("failed to build request", "INVALID_URL", err)
	}
	req.Header.Set("User-Agent", httpclient.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		code := "FETCH_FAILED"
		if stderrors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			code = errors.CodeFetchTimeout
		}
		return "", errors.NewFetchError(fmt.Sprintf("failed to fetch %s", pageURL), code, err)
	}
	defer resp.Body.Close()

	if err := statusError(resp.StatusCode); err != nil {
		code := "HTTP_STATUS"
		if stderrors.Is(err, ErrRateLimited) {
			code = errors.CodeFetchRateLimited
		}
		return "", errors.NewFetchError(
			fmt.Sprintf("failed to fetch %s: status %d", pageURL, resp.StatusCode), code, err)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return "", errors.NewFetchError(fmt.Sprintf("failed to read %s", pageURL), "FETCH_FAILED", err)
	}
	return string(body), nil
}

func statusError(status int) error {
	switch {
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	case status == http.StatusNotFound || status == http.StatusGone:
		return ErrPageNotFound
	case status >= 400:
		return fmt.Errorf("unexpected status %d", status)
	default:
		return nil
	}
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return stderrors.As(err, &t) && t.Timeout()
}
