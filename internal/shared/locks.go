package shared

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
)

// DocumentLockKey builds the redis key guarding work on one source document.
func DocumentLockKey(doctype, name string) string {
	return fmt.Sprintf("tk2:lock:%s:%s", doctype, name)
}

// DocumentLocker serialises work that turns a source document into ledger
// entries, so a double click cannot create two invoices for one sheet.
type DocumentLocker struct {
	client *redislock.Client
	ttl    time.Duration
}

// NewDocumentLocker returns a locker backed by redis.
func NewDocumentLocker(client redislock.RedisClient, ttl time.Duration) *DocumentLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &DocumentLocker{client: redislock.New(client), ttl: ttl}
}

// WithLock runs fn while holding the lock for doctype/name. A nil locker
// runs fn unguarded.
func (l *DocumentLocker) WithLock(ctx context.Context, doctype, name string, fn func(context.Context) error) error {
	if l == nil {
		return fn(ctx)
	}
	lock, err := l.client.Obtain(ctx, DocumentLockKey(doctype, name), l.ttl, nil)
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return fmt.Errorf("%s %s: %w", doctype, name, ErrDocumentBusy)
		}
		return fmt.Errorf("shared: obtain lock: %w", err)
	}
	defer func() {
		_ = lock.Release(context.WithoutCancel(ctx))
	}()
	return fn(ctx)
}
