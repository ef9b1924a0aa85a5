package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisPeriodLocker serializes period operations across instances using
// SETNX with a TTL. The release function deletes the key only if this
// holder still owns it.
type RedisPeriodLocker struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisPeriodLocker creates a locker over an existing Redis client
func NewRedisPeriodLocker(client *redis.Client, keyPrefix string) *RedisPeriodLocker {
	if keyPrefix == "" {
		keyPrefix = "billing:period_lock:"
	}
	return &RedisPeriodLocker{client: client, keyPrefix: keyPrefix}
}

// Acquire takes the distributed lock for the key via SETNX
func (l *RedisPeriodLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	redisKey := l.keyPrefix + key
	token := uuid.New().String()

	ok, err := l.client.SetNX(ctx, redisKey, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire period lock: %w", err)
	}
	if !ok {
		return nil, ErrLockHeld
	}

	return func() {
		// compare-and-delete so an expired lock taken over by another
		// holder is not removed from under them
		releaseScript := redis.NewScript(`
			if redis.call("GET", KEYS[1]) == ARGV[1] then
				return redis.call("DEL", KEYS[1])
			end
			return 0
		`)
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, l.client, []string{redisKey}, token).Err()
	}, nil
}
