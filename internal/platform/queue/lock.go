package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Deletes the key only while it still holds our token, so an expired lock
// re-acquired by another request is never released by us.
var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// RedisLocker hands out short-lived exclusive locks keyed by an arbitrary string.
type RedisLocker struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisLocker(rdb *redis.Client, prefix string) *RedisLocker {
	return &RedisLocker{rdb: rdb, prefix: prefix}
}

// Acquire tries SET NX PX once. ok is false when someone else holds the key.
// The returned release func is safe to call exactly once and is a no-op when
// ok is false.
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error) {
	fullKey := l.prefix + key
	token := uuid.NewString()

	ok, err = l.rdb.SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil {
		return func() {}, false, fmt.Errorf("acquire lock %s: %w", fullKey, err)
	}
	if !ok {
		return func() {}, false, nil
	}

	release = func() {
		// The request context may already be done; releasing must still happen.
		relCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		deleted, err := releaseScript.Run(relCtx, l.rdb, []string{fullKey}, token).Int64()
		if err != nil {
			slog.Error("failed to release lock", "key", fullKey, "error", err)
			return
		}
		if deleted == 0 {
			slog.Warn("lock expired before release", "key", fullKey)
		}
	}
	return release, true, nil
}
