package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "jobboard:ratelimit:"

// RedisWindowCounter implements a fixed-window hit counter backed by Redis so
// every API replica shares the same budget per client.
type RedisWindowCounter struct {
	client  redis.UniversalClient
	prefix  string
	timeout time.Duration
}

// NewRedisWindowCounter constructs a counter using client.
func NewRedisWindowCounter(client redis.UniversalClient) *RedisWindowCounter {
	return &RedisWindowCounter{client: client, prefix: defaultPrefix, timeout: 250 * time.Millisecond}
}

// Hit increments the counter for key and returns the running count together
// with the time left in the current window.
func (r *RedisWindowCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if window <= 0 {
		window = time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	redisKey := r.prefix + key
	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.ExpireNX(ctx, redisKey, window)
	ttl := pipe.TTL(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, fmt.Errorf("redis window hit: %w", err)
	}

	resetIn := ttl.Val()
	if resetIn <= 0 {
		resetIn = window
	}
	return incr.Val(), resetIn, nil
}

// NewRedisClient dials Redis and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}
