package service

import (
	"context"
	"fmt"
	"sync"
)

// LocalLocker implements ports.Locker for a single process. Unlike
// sync.Mutex, waiting honors context cancellation.
type LocalLocker struct {
	sem chan struct{}
}

// NewLocalLocker creates an unlocked LocalLocker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{sem: make(chan struct{}, 1)}
}

// Acquire blocks until the lock is held or ctx is done. The returned release
// func is safe to call more than once.
func (l *LocalLocker) Acquire(ctx context.Context) (func(), error) {
	select {
	case l.sem <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-l.sem }) }, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for reconcile lock: %w", ctx.Err())
	}
}
