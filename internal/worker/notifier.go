package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/cooklang/cooklang-import/internal/httpclient"
	"github.com/cooklang/cooklang-import/internal/metrics"
	"github.com/cooklang/cooklang-import/internal/utils"
)

// Job statuses reported to callbacks and by the status endpoint.
const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusRetrying   = "retrying"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

type ProgressUpdate struct {
	JobID    string `json:"job_id"`
	Status   string `json:"status"`
	Progress int    `json:"progress"`
	Error    string `json:"error,omitempty"`
}

// Notifier delivers job progress to the caller.
type Notifier interface {
	Notify(ctx context.Context, callbackURL string, update ProgressUpdate) error
}

// CallbackNotifier POSTs progress updates to a caller supplied URL.
type CallbackNotifier struct {
	client *resty.Client
	retry  utils.RetryConfig
}

func NewCallbackNotifier(timeout time.Duration) *CallbackNotifier {
	retry := utils.DefaultRetryConfig()
	retry.OnRetry = func(attempt int, err error, delay time.Duration) {
		slog.Warn("Retrying progress callback", "attempt", attempt, "delay", delay, "error", err)
	}
	return &CallbackNotifier{
		client: httpclient.NewRestyClient("", timeout),
		retry:  retry,
	}
}

// WithRetry replaces the retry policy.
func (n *CallbackNotifier) WithRetry(cfg utils.RetryConfig) *CallbackNotifier {
	n.retry = cfg
	return n
}

// Notify does nothing when callbackURL is empty.
func (n *CallbackNotifier) Notify(ctx context.Context, callbackURL string, update ProgressUpdate) error {
	if callbackURL == "" {
		return nil
	}

	_, err := utils.WithRetry(ctx, func(ctx context.Context) (struct{}, error) {
		start := time.Now()
		defer metrics.RecordExternalCall(ctx, "job_callback", start)

		resp, err := n.client.R().
			SetContext(ctx).
			SetBody(update).
			Post(callbackURL)
		if err != nil {
			return struct{}{}, fmt.Errorf("failed to send progress callback: %w", err)
		}
		if resp.IsError() {
			return struct{}{}, fmt.Errorf("progress callback failed with status %d", resp.StatusCode())
		}
		return struct{}{}, nil
	}, n.retry)
	return err
}
