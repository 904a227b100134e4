package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDashboardInvalidate bumps the dashboard cache version.
	TaskDashboardInvalidate = "dashboard:invalidate"
	// TaskIdempotencyCleanup drops expired idempotency keys.
	TaskIdempotencyCleanup = "idempotency:cleanup"
)

// DefaultIdempotencyRetention is how long processed keys are remembered.
const DefaultIdempotencyRetention = 72 * time.Hour

// DashboardInvalidatePayload names the document whose submission made the
// dashboard stale.
type DashboardInvalidatePayload struct {
	Doctype string `json:"doctype"`
	Name    string `json:"name"`
}

// IdempotencyCleanupPayload carries the retention window.
type IdempotencyCleanupPayload struct {
	Retention time.Duration `json:"retention"`
}

// NewDashboardInvalidateTask constructs an Asynq task.
func NewDashboardInvalidateTask(payload DashboardInvalidatePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDashboardInvalidate, data, asynq.MaxRetry(5), asynq.Timeout(30*time.Second)), nil
}

// NewIdempotencyCleanupTask constructs an Asynq task.
func NewIdempotencyCleanupTask(retention time.Duration) (*asynq.Task, error) {
	data, err := json.Marshal(IdempotencyCleanupPayload{Retention: retention})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIdempotencyCleanup, data, asynq.MaxRetry(3)), nil
}
