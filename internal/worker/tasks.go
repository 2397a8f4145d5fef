package worker

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"github.com/cooklang/cooklang-import/internal/importer"
	"github.com/cooklang/cooklang-import/internal/recipe"
)

// Task type constants
const (
	TypeImportRecipe = "import:recipe"
)

const (
	// ResultRetention is how long finished jobs and their results stay queryable.
	ResultRetention = 24 * time.Hour
	// MaxRetry bounds retries of retryable import failures.
	MaxRetry = 3
	// QueueName is the queue imports are enqueued on.
	QueueName = "default"
)

// ImportPayload is the payload for recipe import tasks. API keys are never
// queued; workers use their own configured credentials.
type ImportPayload struct {
	JobID       string   `json:"job_id"`
	UserID      string   `json:"user_id"`
	URL         string   `json:"url,omitempty"`
	Text        string   `json:"text,omitempty"`
	Images      []string `json:"images,omitempty"`
	Extract     bool     `json:"extract,omitempty"`
	ExtractOnly bool     `json:"extract_only,omitempty"`
	Provider    string   `json:"provider,omitempty"`
	Model       string   `json:"model,omitempty"`
	CallbackURL string   `json:"callback_url,omitempty"`
}

// NewImportPayload copies an import request into a task payload. Images must
// already be base64 encoded.
func NewImportPayload(jobID, userID, callbackURL string, req importer.Request) ImportPayload {
	images := make([]string, 0, len(req.Images))
	for _, img := range req.Images {
		images = append(images, img.Value)
	}
	return ImportPayload{
		JobID:       jobID,
		UserID:      userID,
		URL:         req.URL,
		Text:        req.Text,
		Images:      images,
		Extract:     req.Extract,
		ExtractOnly: req.ExtractOnly,
		Provider:    req.Provider,
		Model:       req.Model,
		CallbackURL: callbackURL,
	}
}

// Request rebuilds the import request carried by the payload.
func (p ImportPayload) Request() importer.Request {
	req := importer.Request{
		URL:         p.URL,
		Text:        p.Text,
		Extract:     p.Extract,
		ExtractOnly: p.ExtractOnly,
		Provider:    p.Provider,
		Model:       p.Model,
	}
	for _, img := range p.Images {
		req.Images = append(req.Images, recipe.Base64Image(img))
	}
	return req
}

// NewImportTask creates a new import task. The job ID doubles as the task ID
// so job status can be looked up directly.
func NewImportTask(payload ImportPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeImportRecipe, data,
		asynq.TaskID(payload.JobID),
		asynq.Queue(QueueName),
		asynq.MaxRetry(MaxRetry),
		asynq.Retention(ResultRetention),
	), nil
}

// JobError is the error part of a stored job result.
type JobError struct {
	Type     string `json:"type"`
	Code     string `json:"code,omitempty"`
	Message  string `json:"message"`
	Recovery string `json:"recovery,omitempty"`
}

// JobResult is what a finished job writes through the task ResultWriter.
type JobResult struct {
	Status string           `json:"status"`
	Result *importer.Result `json:"result,omitempty"`
	Error  *JobError        `json:"error,omitempty"`
}
