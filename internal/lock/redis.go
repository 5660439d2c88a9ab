package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultRetryInterval = 50 * time.Millisecond

// releaseScript deletes the key only while it still carries our token, so an
// expired holder never frees a lock taken over by someone else.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker serialises critical sections across replicas with SET NX PX.
type RedisLocker struct {
	client redis.UniversalClient
	ttl    time.Duration
	retry  time.Duration
	prefix string
	logger *zap.Logger
}

// NewRedisLocker builds a Redis backed locker. ttl bounds how long a crashed
// holder can block others.
func NewRedisLocker(client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *RedisLocker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisLocker{
		client: client,
		ttl:    ttl,
		retry:  defaultRetryInterval,
		prefix: "dairyfarm:lock:",
		logger: logger,
	}
}

// Acquire implements Locker.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	if l == nil || l.client == nil {
		return nil, errors.New("lock: redis client not configured")
	}
	fullKey := l.prefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, fullKey, token, l.ttl).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			if ctx.Err() != nil {
				return nil, errors.Join(ErrNotAcquired, ctx.Err())
			}
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			return l.releaser(fullKey, token), nil
		}
		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrNotAcquired, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (l *RedisLocker) releaser(fullKey, token string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := releaseScript.Run(ctx, l.client, []string{fullKey}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
				l.logger.Warn("failed to release redis lock", zap.String("key", fullKey), zap.Error(err))
			}
		})
	}
}
