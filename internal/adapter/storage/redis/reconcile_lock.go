package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// releaseScript deletes the lock only while it still holds our token.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

const defaultRetryInterval = 25 * time.Millisecond

// ReconcileLock implements ports.Locker with SET NX PX. Every relay that
// shares a store must be configured with the same key.
type ReconcileLock struct {
	client goredis.UniversalClient
	key    string
	ttl    time.Duration
	retry  time.Duration
	log    zerolog.Logger
}

// NewReconcileLock creates a Redis-backed reconcile lock. ttl bounds how long
// a crashed holder can block others.
func NewReconcileLock(client goredis.UniversalClient, key string, ttl time.Duration, log zerolog.Logger) *ReconcileLock {
	return &ReconcileLock{
		client: client,
		key:    key,
		ttl:    ttl,
		retry:  defaultRetryInterval,
		log:    log,
	}
}

// Acquire blocks until the lock is held or ctx is done.
func (l *ReconcileLock) Acquire(ctx context.Context) (func(), error) {
	token := uuid.NewString()

	for {
		ok, err := l.tryAcquire(ctx, token)
		if err != nil {
			return nil, err
		}
		if ok {
			return func() { l.release(token) }, nil
		}

		timer := time.NewTimer(l.retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("waiting for reconcile lock: %w", ctx.Err())
		case <-timer.C:
		}
	}
}

func (l *ReconcileLock) tryAcquire(ctx context.Context, token string) (bool, error) {
	result, err := l.client.SetArgs(ctx, l.key, token, goredis.SetArgs{
		Mode: "NX",
		TTL:  l.ttl,
	}).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			// Held by someone else
			return false, nil
		}
		return false, fmt.Errorf("redis lock acquire: %w", err)
	}
	return result == "OK", nil
}

// release runs on its own context: the request context may already be done.
func (l *ReconcileLock) release(token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	deleted, err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Int()
	if err != nil {
		l.log.Error().Err(err).Str("key", l.key).Msg("Failed to release reconcile lock")
		return
	}
	if deleted == 0 {
		l.log.Warn().Str("key", l.key).Msg("Reconcile lock expired before release")
	}
}
