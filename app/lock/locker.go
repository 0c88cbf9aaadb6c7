package lock

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrAlreadyHeld = errors.New("lock already held by this process")
	ErrNotAcquired = errors.New("lock not acquired")
	// ErrNotHeld is returned by Release when the backend no longer holds the
	// lock for us, e.g. it expired and another consumer took it.
	ErrNotHeld = errors.New("lock no longer held")
)

// Locker abstracts distributed locking implementations.
type Locker interface {
	// Acquire attempts to lock a key for the given TTL.
	Acquire(ctx context.Context, key string, ttl time.Duration) error
	// Release frees the lock for the given key.
	Release(ctx context.Context, key string) error
}

// BounceKey is the lock name guarding the processing of one ingested bounce.
func BounceKey(requestID string) string {
	return "bounces:lock:" + requestID
}

// owned tracks the locks this process holds. A key is reserved before the
// backend round-trip so concurrent callers in one process never both reach it.
type owned[T any] struct {
	mu      sync.Mutex
	handles map[string]T
	pending map[string]struct{}
}

func newOwned[T any]() *owned[T] {
	return &owned[T]{handles: make(map[string]T), pending: make(map[string]struct{})}
}

func (o *owned[T]) reserve(key string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.handles[key]; ok {
		return ErrAlreadyHeld
	}
	if _, ok := o.pending[key]; ok {
		return ErrAlreadyHeld
	}
	o.pending[key] = struct{}{}
	return nil
}

// settle ends a reservation, recording handle when the backend granted the lock.
func (o *owned[T]) settle(key string, handle T, granted bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.pending, key)
	if granted {
		o.handles[key] = handle
	}
}

func (o *owned[T]) take(key string) (T, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	handle, ok := o.handles[key]
	delete(o.handles, key)
	return handle, ok
}

// With runs fn while holding key. The lock is released on a fresh context so a
// cancelled caller still frees it.
func With(ctx context.Context, l Locker, key string, ttl time.Duration, fn func(ctx context.Context) error) error {
	if err := l.Acquire(ctx, key, ttl); err != nil {
		return err
	}
	defer func() {
		_ = l.Release(context.Background(), key)
	}()
	return fn(ctx)
}
