package redis

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLock(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })
	return s, client
}

func TestReconcileLock_AcquireAndRelease(t *testing.T) {
	s, client := newTestLock(t)
	lock := NewReconcileLock(client, "relay:reconcile", 30*time.Second, zerolog.Nop())

	release, err := lock.Acquire(context.Background())
	require.NoError(t, err)
	assert.True(t, s.Exists("relay:reconcile"))
	assert.Equal(t, 30*time.Second, s.TTL("relay:reconcile"))

	release()
	assert.False(t, s.Exists("relay:reconcile"))
}

func TestReconcileLock_BlocksUntilContextDone(t *testing.T) {
	_, client := newTestLock(t)
	lock := NewReconcileLock(client, "relay:reconcile", 30*time.Second, zerolog.Nop())

	release, err := lock.Acquire(context.Background())
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err = lock.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestReconcileLock_SharedKeyAcrossInstances(t *testing.T) {
	_, client := newTestLock(t)
	a := NewReconcileLock(client, "shared", 30*time.Second, zerolog.Nop())
	b := NewReconcileLock(client, "shared", 30*time.Second, zerolog.Nop())

	releaseA, err := a.Acquire(context.Background())
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		releaseB, err := b.Acquire(context.Background())
		if err == nil {
			close(acquired)
			releaseB()
		}
	}()

	select {
	case <-acquired:
		t.Fatal("second instance acquired a held lock")
	case <-time.After(100 * time.Millisecond):
	}

	releaseA()

	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("second instance never acquired the released lock")
	}
}

func TestReconcileLock_ReleaseDoesNotDeleteForeignToken(t *testing.T) {
	s, client := newTestLock(t)
	lock := NewReconcileLock(client, "relay:reconcile", time.Second, zerolog.Nop())

	release, err := lock.Acquire(context.Background())
	require.NoError(t, err)

	// TTL lapses and another holder takes over.
	s.FastForward(2 * time.Second)
	require.NoError(t, s.Set("relay:reconcile", "other-holder"))

	release()

	got, err := s.Get("relay:reconcile")
	require.NoError(t, err)
	assert.Equal(t, "other-holder", got)
}

func TestReconcileLock_MutualExclusion(t *testing.T) {
	_, client := newTestLock(t)
	lock := NewReconcileLock(client, "relay:reconcile", 30*time.Second, zerolog.Nop())

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := lock.Acquire(context.Background())
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&inside, -1)
			release()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
}

func TestReconcileLock_RedisError(t *testing.T) {
	s, client := newTestLock(t)
	lock := NewReconcileLock(client, "relay:reconcile", time.Second, zerolog.Nop())
	s.SetError("READONLY")

	_, err := lock.Acquire(context.Background())
	assert.ErrorContains(t, err, "redis lock acquire")
}
