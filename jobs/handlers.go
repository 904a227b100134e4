package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/timmiekettle/tk2/internal/jobs"
)

// CacheBumper invalidates a versioned cache namespace.
type CacheBumper interface {
	Bump(ctx context.Context) (int64, error)
}

// KeyCleaner deletes idempotency keys older than a retention window.
type KeyCleaner interface {
	Cleanup(ctx context.Context, olderThan time.Duration) (int64, error)
}

// NewDashboardInvalidateHandler bumps the dashboard cache version.
func NewDashboardInvalidateHandler(cache CacheBumper, metrics *jobmetrics.Metrics, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload DashboardInvalidatePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("decode payload: %w: %w", err, asynq.SkipRetry)
		}
		tracker := metrics.Track(TaskDashboardInvalidate)
		version, err := cache.Bump(ctx)
		if err != nil {
			return tracker.End(fmt.Errorf("bump dashboard cache: %w", err))
		}
		logger.Debug("dashboard cache invalidated",
			slog.String("doctype", payload.Doctype),
			slog.String("name", payload.Name),
			slog.Int64("version", version))
		return tracker.End(nil)
	}
}

// NewIdempotencyCleanupHandler removes expired idempotency keys.
func NewIdempotencyCleanupHandler(store KeyCleaner, metrics *jobmetrics.Metrics, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		payload := IdempotencyCleanupPayload{Retention: DefaultIdempotencyRetention}
		if len(t.Payload()) > 0 {
			if err := json.Unmarshal(t.Payload(), &payload); err != nil {
				return fmt.Errorf("decode payload: %w: %w", err, asynq.SkipRetry)
			}
		}
		if payload.Retention <= 0 {
			payload.Retention = DefaultIdempotencyRetention
		}
		tracker := metrics.Track(TaskIdempotencyCleanup)
		removed, err := store.Cleanup(ctx, payload.Retention)
		if err != nil {
			return tracker.End(fmt.Errorf("cleanup idempotency keys: %w", err))
		}
		metrics.AddAffected(TaskIdempotencyCleanup, removed)
		logger.Info("idempotency keys cleaned", slog.Int64("removed", removed), slog.Duration("retention", payload.Retention))
		return tracker.End(nil)
	}
}
