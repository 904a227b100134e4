// Package cache builds the Redis client and a versioned JSON cache on top
// of it.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options selects the Redis instance shared by sessions, locks, the
// dashboard cache and asynq.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// Client returns an unconnected client for opts.
func (o Options) Client() *redis.Client {
	return redis.NewClient(&redis.Options{Addr: o.Addr, Password: o.Password, DB: o.DB})
}

// New connects to Redis and fails unless it answers a ping within five seconds.
func New(ctx context.Context, opts Options) (*redis.Client, error) {
	client := opts.Client()
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("platform/cache: ping %s: %w", opts.Addr, err)
	}
	return client, nil
}
