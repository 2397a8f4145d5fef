package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/cooklang/cooklang-import/internal/config"
	apperrors "github.com/cooklang/cooklang-import/internal/errors"
	"github.com/cooklang/cooklang-import/internal/importer"
	"github.com/cooklang/cooklang-import/internal/middleware"
	"github.com/cooklang/cooklang-import/internal/recipe"
	appsentry "github.com/cooklang/cooklang-import/internal/sentry"
	"github.com/cooklang/cooklang-import/internal/services/providers"
	"github.com/cooklang/cooklang-import/internal/services/scraper"
	"github.com/cooklang/cooklang-import/internal/validation"
	"github.com/cooklang/cooklang-import/internal/worker"
)

type Server struct {
	cfg       *config.Config
	importer  worker.Importer
	enqueuer  worker.Enqueuer
	tasks     worker.TaskLookup
	validator validation.RequestValidator
}

// NewServer wires the handlers. enqueuer and tasks may be nil, in which case
// the job endpoints answer 503.
func NewServer(cfg *config.Config, imp worker.Importer, enqueuer worker.Enqueuer, tasks worker.TaskLookup) *Server {
	return &Server{
		cfg:       cfg,
		importer:  imp,
		enqueuer:  enqueuer,
		tasks:     tasks,
		validator: newRequestValidator(cfg),
	}
}

func newRequestValidator(cfg *config.Config) validation.RequestValidator {
	v := validation.RequestValidator{Limits: validation.DefaultLimits()}
	if !cfg.AI.Extraction.ValidateContent {
		return v
	}

	completer, err := providers.ForExtraction(cfg.AI)
	if err != nil {
		slog.Warn("Content validation disabled", "error", err)
		return v
	}
	v.Content.EnableAIValidation = true
	v.Completer = completer
	return v
}

// WithValidator replaces the request validator.
func (s *Server) WithValidator(v validation.RequestValidator) *Server {
	s.validator = v
	return s
}

// ImportRequest is the JSON body of both import endpoints. Images are base64
// encoded, optionally as data URIs.
type ImportRequest struct {
	URL         string   `json:"url,omitempty"`
	Text        string   `json:"text,omitempty"`
	Images      []string `json:"images,omitempty"`
	Extract     bool     `json:"extract,omitempty"`
	ExtractOnly bool     `json:"extract_only,omitempty"`
	Provider    string   `json:"provider,omitempty"`
	Model       string   `json:"model,omitempty"`
	CallbackURL string   `json:"callback_url,omitempty"`
}

func (b ImportRequest) toRequest() importer.Request {
	req := importer.Request{
		URL:         b.URL,
		Text:        b.Text,
		Extract:     b.Extract,
		ExtractOnly: b.ExtractOnly,
		Provider:    b.Provider,
		Model:       b.Model,
	}
	for _, img := range b.Images {
		req.Images = append(req.Images, recipe.Base64Image(img))
	}
	return req
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) (ImportRequest, importer.Request, bool) {
	var body ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, apperrors.NewValidationError("Invalid request body", "INVALID_BODY", "Send a JSON object."))
		return body, importer.Request{}, false
	}

	req := body.toRequest()
	if err := s.validator.Validate(r.Context(), req); err != nil {
		writeError(w, r, err)
		return body, req, false
	}
	return body, req, true
}

// HandleImport runs an import synchronously.
func (s *Server) HandleImport(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserID(r.Context()); !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	_, req, ok := s.decode(w, r)
	if !ok {
		return
	}

	result, err := s.importer.Import(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type CreateJobResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// HandleCreateJob queues an import and returns its job ID.
func (s *Server) HandleCreateJob(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if s.enqueuer == nil {
		http.Error(w, "Job queue unavailable", http.StatusServiceUnavailable)
		return
	}

	body, req, ok := s.decode(w, r)
	if !ok {
		return
	}
	if body.CallbackURL != "" {
		if err := scraper.ValidateURL(body.CallbackURL); err != nil {
			writeError(w, r, apperrors.NewValidationError("invalid callback_url", "INVALID_CALLBACK_URL", "Use an absolute http or https URL."))
			return
		}
	}

	jobID := uuid.New().String()
	task, err := worker.NewImportTask(worker.NewImportPayload(jobID, userID, body.CallbackURL, req))
	if err != nil {
		writeError(w, r, apperrors.NewInternalError("Failed to create task", "TASK_ENCODE_FAILED", err))
		return
	}

	if _, err := s.enqueuer.EnqueueContext(r.Context(), task); err != nil {
		writeError(w, r, apperrors.NewInternalError("Failed to enqueue task", "ENQUEUE_FAILED", err))
		return
	}

	slog.InfoContext(r.Context(), "Import queued", "job_id", jobID, "source", req.Source())
	writeJSON(w, http.StatusAccepted, CreateJobResponse{JobID: jobID, Status: worker.StatusQueued})
}

type JobStatusResponse struct {
	ID          string           `json:"id"`
	Status      string           `json:"status"`
	Retried     int              `json:"retried"`
	LastError   string           `json:"last_error,omitempty"`
	Result      *importer.Result `json:"result,omitempty"`
	Error       *worker.JobError `json:"error,omitempty"`
	CompletedAt string           `json:"completed_at,omitempty"`
}

// HandleJobStatus reports a job's state. Jobs of other users are not found.
func (s *Server) HandleJobStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if s.tasks == nil {
		http.Error(w, "Job queue unavailable", http.StatusServiceUnavailable)
		return
	}

	jobID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(jobID); err != nil {
		writeError(w, r, apperrors.NewValidationError("job id must be a UUID", "INVALID_JOB_ID", ""))
		return
	}

	notFound := apperrors.NewNotFoundError("Job not found", "JOB_NOT_FOUND", "Jobs are kept for 24 hours after they finish.")

	info, err := s.tasks.GetTaskInfo(worker.QueueName, jobID)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
			writeError(w, r, notFound)
			return
		}
		writeError(w, r, apperrors.NewInternalError("Failed to read job", "JOB_LOOKUP_FAILED", err))
		return
	}

	var payload worker.ImportPayload
	if err := json.Unmarshal(info.Payload, &payload); err != nil || payload.UserID != userID {
		writeError(w, r, notFound)
		return
	}

	resp := JobStatusResponse{
		ID:        jobID,
		Status:    jobStatus(info.State),
		Retried:   info.Retried,
		LastError: info.LastErr,
	}
	if !info.CompletedAt.IsZero() {
		resp.CompletedAt = info.CompletedAt.Format(time.RFC3339)
	}
	if len(info.Result) > 0 {
		var stored worker.JobResult
		if err := json.Unmarshal(info.Result, &stored); err == nil {
			resp.Status = stored.Status
			resp.Result = stored.Result
			resp.Error = stored.Error
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func jobStatus(state asynq.TaskState) string {
	switch state {
	case asynq.TaskStateActive:
		return worker.StatusProcessing
	case asynq.TaskStateRetry:
		return worker.StatusRetrying
	case asynq.TaskStateCompleted:
		return worker.StatusCompleted
	case asynq.TaskStateArchived:
		return worker.StatusFailed
	default:
		return worker.StatusQueued
	}
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Type     string `json:"type"`
	Code     string `json:"code,omitempty"`
	Message  string `json:"message"`
	Recovery string `json:"recovery,omitempty"`
}

// writeError maps an AppError to its status code. Anything else is a 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.NewInternalError("Internal server error", "INTERNAL", err)
	}

	if appErr.StatusCode >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "error", err)
		appsentry.CaptureError(r.Context(), err, map[string]string{"path": r.URL.Path})
	}

	message := appErr.Message
	if appErr.Type != apperrors.ErrorTypeInternal {
		message = appErr.Error()
	}

	writeJSON(w, appErr.StatusCode, errorBody{Error: errorDetail{
		Type:     string(appErr.Type),
		Code:     appErr.Code(),
		Message:  message,
		Recovery: appErr.RecoverySuggestion(),
	}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
