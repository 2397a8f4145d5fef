package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	apperrors "github.com/cooklang/cooklang-import/internal/errors"
	"github.com/cooklang/cooklang-import/internal/importer"
)

// Importer runs one import.
type Importer interface {
	Import(ctx context.Context, req importer.Request) (*importer.Result, error)
}

type ImportProcessor struct {
	importer Importer
	notifier Notifier
	metrics  *WorkerMetrics
}

func NewImportProcessor(imp Importer, notifier Notifier, metrics *WorkerMetrics) *ImportProcessor {
	return &ImportProcessor{
		importer: imp,
		notifier: notifier,
		metrics:  metrics,
	}
}

func (p *ImportProcessor) HandleImportRecipe(ctx context.Context, t *asynq.Task) error {
	var payload ImportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	jobID := payload.JobID
	req := payload.Request()

	slog.InfoContext(ctx, "Processing import", "job_id", jobID, "source", req.Source())
	p.notify(ctx, payload, ProgressUpdate{Status: StatusProcessing, Progress: 10})

	result, err := p.importer.Import(ctx, req)
	if err != nil {
		return p.fail(ctx, t, payload, err)
	}

	p.writeResult(ctx, t, JobResult{Status: StatusCompleted, Result: result})
	p.notify(ctx, payload, ProgressUpdate{Status: StatusCompleted, Progress: 100})

	slog.InfoContext(ctx, "Import completed", "job_id", jobID, "source", result.Source)
	return nil
}

// fail decides between another attempt and a terminal failure. Errors that
// cannot succeed on retry skip the remaining attempts.
func (p *ImportProcessor) fail(ctx context.Context, t *asynq.Task, payload ImportPayload, err error) error {
	retryable := true
	if appErr, ok := apperrors.As(err); ok {
		retryable = appErr.IsRetryable()
	}

	retryCount, _ := asynq.GetRetryCount(ctx)
	maxRetry, ok := asynq.GetMaxRetry(ctx)
	if !ok {
		maxRetry = MaxRetry
	}

	if retryable && retryCount < maxRetry {
		slog.WarnContext(ctx, "Import failed, will retry",
			"job_id", payload.JobID,
			"retry_count", retryCount,
			"error", err,
		)
		p.notify(ctx, payload, ProgressUpdate{Status: StatusRetrying, Progress: 10, Error: err.Error()})
		return err
	}

	slog.ErrorContext(ctx, "Job failed", "job_id", payload.JobID, "error", err)
	p.writeResult(ctx, t, JobResult{Status: StatusFailed, Error: newJobError(err)})
	p.notify(ctx, payload, ProgressUpdate{Status: StatusFailed, Progress: 100, Error: err.Error()})

	if !retryable {
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	return err
}

func (p *ImportProcessor) writeResult(ctx context.Context, t *asynq.Task, result JobResult) {
	w := t.ResultWriter()
	if w == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to encode job result", "error", err)
		return
	}
	if _, err := w.Write(data); err != nil {
		slog.ErrorContext(ctx, "Failed to write job result", "task_id", w.TaskID(), "error", err)
	}
}

func (p *ImportProcessor) notify(ctx context.Context, payload ImportPayload, update ProgressUpdate) {
	slog.DebugContext(ctx, "Progress update", "job_id", payload.JobID, "status", update.Status)
	if p.notifier == nil || payload.CallbackURL == "" {
		return
	}
	update.JobID = payload.JobID
	if err := p.notifier.Notify(ctx, payload.CallbackURL, update); err != nil {
		slog.WarnContext(ctx, "Failed to send progress update", "job_id", payload.JobID, "error", err)
	}
}

func newJobError(err error) *JobError {
	if appErr, ok := apperrors.As(err); ok {
		return &JobError{
			Type:     string(appErr.Type),
			Code:     appErr.Code(),
			Message:  appErr.Error(),
			Recovery: appErr.RecoverySuggestion(),
		}
	}
	return &JobError{Type: string(apperrors.ErrorTypeInternal), Message: err.Error()}
}
