package worker

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/cooklang/cooklang-import/internal/errors"
	"github.com/cooklang/cooklang-import/internal/importer"
	"github.com/cooklang/cooklang-import/internal/recipe"
	"github.com/cooklang/cooklang-import/internal/utils"
)

// Mocks

type MockImporter struct {
	mock.Mock
}

func (m *MockImporter) Import(ctx context.Context, req importer.Request) (*importer.Result, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*importer.Result), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, callbackURL string, update ProgressUpdate) error {
	args := m.Called(ctx, callbackURL, update)
	return args.Error(0)
}

func newTask(t *testing.T, payload ImportPayload) *asynq.Task {
	t.Helper()
	task, err := NewImportTask(payload)
	require.NoError(t, err)
	return task
}

func statusIs(status string) interface{} {
	return mock.MatchedBy(func(u ProgressUpdate) bool { return u.Status == status && u.JobID == "job-1" })
}

func TestHandleImportRecipe_Success(t *testing.T) {
	imp := new(MockImporter)
	notifier := new(MockNotifier)
	p := NewImportProcessor(imp, notifier, nil)

	payload := ImportPayload{JobID: "job-1", UserID: "user-1", URL: "https://example.com/pie", CallbackURL: "https://hooks.example.com"}
	imp.On("Import", mock.Anything, importer.Request{URL: "https://example.com/pie"}).
		Return(&importer.Result{Source: importer.SourceURL, Cooklang: "Mix @flour."}, nil)
	notifier.On("Notify", mock.Anything, "https://hooks.example.com", statusIs(StatusProcessing)).Return(nil)
	notifier.On("Notify", mock.Anything, "https://hooks.example.com", statusIs(StatusCompleted)).Return(nil)

	err := p.HandleImportRecipe(context.Background(), newTask(t, payload))
	require.NoError(t, err)
	imp.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestHandleImportRecipe_NoCallback(t *testing.T) {
	imp := new(MockImporter)
	notifier := new(MockNotifier)
	p := NewImportProcessor(imp, notifier, nil)

	imp.On("Import", mock.Anything, mock.Anything).Return(&importer.Result{Source: importer.SourceText}, nil)

	err := p.HandleImportRecipe(context.Background(), newTask(t, ImportPayload{JobID: "job-1", Text: "Mix @flour."}))
	require.NoError(t, err)
	notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleImportRecipe_NonRetryable(t *testing.T) {
	imp := new(MockImporter)
	notifier := new(MockNotifier)
	p := NewImportProcessor(imp, notifier, nil)

	imp.On("Import", mock.Anything, mock.Anything).
		Return(nil, apperrors.NewBuilderError("recipe text cannot be empty", "EMPTY_TEXT"))
	notifier.On("Notify", mock.Anything, mock.Anything, statusIs(StatusProcessing)).Return(nil)
	notifier.On("Notify", mock.Anything, mock.Anything, mock.MatchedBy(func(u ProgressUpdate) bool {
		return u.Status == StatusFailed && u.Error == "recipe text cannot be empty"
	})).Return(nil)

	err := p.HandleImportRecipe(context.Background(), newTask(t, ImportPayload{JobID: "job-1", Text: " ", CallbackURL: "https://hooks.example.com"}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeBuilder))
	notifier.AssertExpectations(t)
}

func TestHandleImportRecipe_Retryable(t *testing.T) {
	imp := new(MockImporter)
	notifier := new(MockNotifier)
	p := NewImportProcessor(imp, notifier, nil)

	fetchErr := apperrors.NewFetchError("cannot fetch page", "FETCH_TIMEOUT", errors.New("timeout"))
	imp.On("Import", mock.Anything, mock.Anything).Return(nil, fetchErr)
	notifier.On("Notify", mock.Anything, mock.Anything, statusIs(StatusProcessing)).Return(nil)
	notifier.On("Notify", mock.Anything, mock.Anything, statusIs(StatusRetrying)).Return(nil)

	err := p.HandleImportRecipe(context.Background(), newTask(t, ImportPayload{JobID: "job-1", URL: "https://example.com", CallbackURL: "https://hooks.example.com"}))
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
	notifier.AssertExpectations(t)
}

func TestHandleImportRecipe_NotifierErrorIgnored(t *testing.T) {
	imp := new(MockImporter)
	notifier := new(MockNotifier)
	p := NewImportProcessor(imp, notifier, nil)

	imp.On("Import", mock.Anything, mock.Anything).Return(&importer.Result{Source: importer.SourceURL}, nil)
	notifier.On("Notify", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("callback down"))

	err := p.HandleImportRecipe(context.Background(), newTask(t, ImportPayload{JobID: "job-1", URL: "https://example.com", CallbackURL: "https://hooks.example.com"}))
	assert.NoError(t, err)
}

func TestHandleImportRecipe_BadPayload(t *testing.T) {
	p := NewImportProcessor(new(MockImporter), nil, nil)
	err := p.HandleImportRecipe(context.Background(), asynq.NewTask(TypeImportRecipe, []byte("{")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestImportPayload_Request(t *testing.T) {
	req := importer.Request{
		Images:   []recipe.ImageSource{recipe.Base64Image("aGVsbG8=")},
		Provider: "anthropic",
		Model:    "claude-3-5-haiku-latest",
		APIKey:   "secret",
	}
	payload := NewImportPayload("job-1", "user-1", "", req)

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")

	var decoded ImportPayload
	require.NoError(t, json.Unmarshal(data, &decoded))
	got := decoded.Request()
	assert.Equal(t, []recipe.ImageSource{recipe.Base64Image("aGVsbG8=")}, got.Images)
	assert.Equal(t, "anthropic", got.Provider)
	assert.Empty(t, got.APIKey)
}

func TestParseRedisURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		addr     string
		password string
		db       int
		tls      bool
	}{
		{"plain host", "localhost:6379", "localhost:6379", "", 0, false},
		{"redis url", "redis://:pw@redis.internal:6380/2", "redis.internal:6380", "pw", 2, false},
		{"tls url", "rediss://default:pw@cache.example.com:6379", "cache.example.com:6379", "pw", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opt, err := ParseRedisURL(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.addr, opt.Addr)
			assert.Equal(t, tt.password, opt.Password)
			assert.Equal(t, tt.db, opt.DB)
			assert.Equal(t, tt.tls, opt.TLSConfig != nil)
		})
	}

	_, err := ParseRedisURL("redis://host:6379/notanumber")
	assert.Error(t, err)
}

func TestCallbackNotifier(t *testing.T) {
	var calls int32
	var got ProgressUpdate
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	retry := utils.DefaultRetryConfig()
	retry.Backoff = utils.LinearBackoff(time.Millisecond)
	n := NewCallbackNotifier(time.Second).WithRetry(retry)

	err := n.Notify(context.Background(), server.URL, ProgressUpdate{JobID: "job-1", Status: StatusCompleted, Progress: 100})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, ProgressUpdate{JobID: "job-1", Status: StatusCompleted, Progress: 100}, got)
}

func TestCallbackNotifier_EmptyURL(t *testing.T) {
	n := NewCallbackNotifier(time.Second)
	assert.NoError(t, n.Notify(context.Background(), "", ProgressUpdate{}))
}

func TestWorkerMetrics_Middleware(t *testing.T) {
	var m *WorkerMetrics
	called := false
	h := m.Middleware(asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
		called = true
		return nil
	}))
	require.NoError(t, h.ProcessTask(context.Background(), asynq.NewTask(TypeImportRecipe, nil)))
	assert.True(t, called)

	metrics, err := NewWorkerMetrics()
	require.NoError(t, err)
	h = metrics.Middleware(asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
		return errors.New("boom")
	}))
	assert.Error(t, h.ProcessTask(context.Background(), asynq.NewTask(TypeImportRecipe, nil)))
}
