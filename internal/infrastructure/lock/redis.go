package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"IncidentScanner/internal/ports"
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLock is a single-holder lease stored under one key.
type RedisLock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

var _ ports.RunLock = (*RedisLock)(nil)

// NewRedisLock builds a lock; ttl bounds how long a crashed holder can block others.
func NewRedisLock(client *redis.Client, key string, ttl time.Duration) *RedisLock {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &RedisLock{client: client, key: key, ttl: ttl}
}

// Acquire tries to take the lease once. ok is false when another holder owns it.
func (l *RedisLock) Acquire(ctx context.Context) (func(context.Context) error, bool, error) {
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire %s: %w", l.key, err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("release %s: %w", l.key, err)
		}
		return nil
	}
	return release, true, nil
}

// Noop always grants the lease; used when no Redis is configured.
type Noop struct{}

var _ ports.RunLock = Noop{}

// Acquire always succeeds.
func (Noop) Acquire(context.Context) (func(context.Context) error, bool, error) {
	return func(context.Context) error { return nil }, true, nil
}
