package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timmiekettle/tk2/internal/platform/cache"
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{Type: task.Type(), Queue: QueueDefault}, nil
}

func (f *fakeEnqueuer) Close() error { return nil }

type fakeCleaner struct {
	retention time.Duration
	removed   int64
}

func (f *fakeCleaner) Cleanup(_ context.Context, olderThan time.Duration) (int64, error) {
	f.retention = olderThan
	return f.removed, nil
}

type failingBumper struct{}

func (failingBumper) Bump(context.Context) (int64, error) { return 0, errors.New("redis down") }

func TestSubmittedEnqueuesInvalidation(t *testing.T) {
	q := &fakeEnqueuer{}
	client := &Client{client: q, logger: discard()}

	client.Submitted(context.Background(), "Sales Invoice", "ACC-SINV-2026-00001")

	require.Len(t, q.tasks, 1)
	assert.Equal(t, TaskDashboardInvalidate, q.tasks[0].Type())
	var payload DashboardInvalidatePayload
	require.NoError(t, json.Unmarshal(q.tasks[0].Payload(), &payload))
	assert.Equal(t, DashboardInvalidatePayload{Doctype: "Sales Invoice", Name: "ACC-SINV-2026-00001"}, payload)
}

func TestSubmittedSwallowsQueueErrors(t *testing.T) {
	client := &Client{client: &fakeEnqueuer{err: errors.New("no redis")}, logger: discard()}
	assert.NotPanics(t, func() {
		client.Submitted(context.Background(), "Journal Entry", "ACC-JV-2026-00001")
	})
}

func TestDashboardInvalidateBumpsVersion(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	versioned := cache.NewVersioned(rdb, "dashboard", time.Minute)

	before, err := versioned.Version(context.Background())
	require.NoError(t, err)

	task, err := NewDashboardInvalidateTask(DashboardInvalidatePayload{Doctype: "Sales Invoice", Name: "X"})
	require.NoError(t, err)
	require.NoError(t, NewDashboardInvalidateHandler(versioned, nil, discard())(context.Background(), task))

	after, err := versioned.Version(context.Background())
	require.NoError(t, err)
	assert.Greater(t, after, before)
}

func TestDashboardInvalidateErrors(t *testing.T) {
	handler := NewDashboardInvalidateHandler(failingBumper{}, nil, discard())

	err := handler(context.Background(), asynq.NewTask(TaskDashboardInvalidate, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	task, err := NewDashboardInvalidateTask(DashboardInvalidatePayload{})
	require.NoError(t, err)
	err = handler(context.Background(), task)
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestIdempotencyCleanupRetention(t *testing.T) {
	store := &fakeCleaner{removed: 4}
	handler := NewIdempotencyCleanupHandler(store, nil, discard())

	task, err := NewIdempotencyCleanupTask(6 * time.Hour)
	require.NoError(t, err)
	require.NoError(t, handler(context.Background(), task))
	assert.Equal(t, 6*time.Hour, store.retention)

	require.NoError(t, handler(context.Background(), asynq.NewTask(TaskIdempotencyCleanup, nil)))
	assert.Equal(t, DefaultIdempotencyRetention, store.retention)
}

type fakeInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (f fakeInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) { return f.info, f.err }

func TestHealth(t *testing.T) {
	cases := []struct {
		name      string
		inspector QueueInspector
		status    int
		body      string
	}{
		{"no queue", nil, http.StatusOK, `{"queue":"default","pending":0,"active":0,"retry":0,"failed":0}`},
		{"queue info", fakeInspector{info: &asynq.QueueInfo{Queue: "default", Pending: 3, Retry: 1}}, http.StatusOK,
			`{"queue":"default","pending":3,"active":0,"retry":1,"failed":0}`},
		{"not created yet", fakeInspector{err: asynq.ErrQueueNotFound}, http.StatusOK,
			`{"queue":"default","pending":0,"active":0,"retry":0,"failed":0}`},
		{"redis down", fakeInspector{err: errors.New("dial tcp")}, http.StatusServiceUnavailable, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := chi.NewRouter()
			NewHandler(tc.inspector, discard()).MountRoutes(r)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, tc.status, rec.Code)
			if tc.body != "" {
				assert.JSONEq(t, tc.body, rec.Body.String())
			}
		})
	}
}
