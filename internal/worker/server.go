package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	apperrors "github.com/cooklang/cooklang-import/internal/errors"
)

// NewServer creates a new Asynq server for processing tasks
func NewServer(redisURL string, concurrency int) *asynq.Server {
	opt, err := ParseRedisURL(redisURL)
	if err != nil {
		panic("failed to parse Redis URL: " + err.Error())
	}
	if concurrency <= 0 {
		concurrency = 10
	}

	return asynq.NewServer(
		opt,
		asynq.Config{
			Concurrency: concurrency,
			Queues:      map[string]int{QueueName: 1},
			RetryDelayFunc: func(n int, err error, t *asynq.Task) time.Duration {
				if appErr, ok := apperrors.As(err); ok && appErr.IsRateLimited() {
					return time.Duration(n+1) * time.Minute
				}
				return asynq.DefaultRetryDelayFunc(n, err, t)
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, t *asynq.Task, err error) {
				slog.ErrorContext(ctx, "Task failed", "type", t.Type(), "error", err)
			}),
		},
	)
}

// NewServeMux registers the import handler behind the tracing, Sentry and
// metrics middleware.
func NewServeMux(processor *ImportProcessor) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Use(OTelMiddleware, SentryMiddleware, processor.metrics.Middleware)
	mux.HandleFunc(TypeImportRecipe, processor.HandleImportRecipe)
	return mux
}
