package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisLockerAcquireRelease(t *testing.T) {
	t.Parallel()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	lockerA := NewRedisLocker(client)
	lockerB := NewRedisLocker(client)

	if err := lockerA.Acquire(context.Background(), BounceKey("req-1"), time.Minute); err != nil {
		t.Fatalf("Acquire A: %v", err)
	}
	if err := lockerB.Acquire(context.Background(), BounceKey("req-1"), time.Minute); err != ErrNotAcquired {
		t.Fatalf("expected ErrNotAcquired, got %v", err)
	}
	if err := lockerA.Release(context.Background(), BounceKey("req-1")); err != nil {
		t.Fatalf("Release A: %v", err)
	}
	if err := lockerB.Acquire(context.Background(), BounceKey("req-1"), time.Minute); err != nil {
		t.Fatalf("Acquire B after release: %v", err)
	}
	if err := lockerB.Release(context.Background(), BounceKey("req-1")); err != nil {
		t.Fatalf("Release B: %v", err)
	}
}

func TestRedisLockerAlreadyHeld(t *testing.T) {
	t.Parallel()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	locker := NewRedisLocker(client)
	if err := locker.Acquire(context.Background(), BounceKey("req-1"), time.Minute); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := locker.Acquire(context.Background(), BounceKey("req-1"), time.Minute); err != ErrAlreadyHeld {
		t.Fatalf("expected ErrAlreadyHeld, got %v", err)
	}
}

func TestRedisLockerReleaseAfterExpiry(t *testing.T) {
	t.Parallel()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	key := BounceKey("req-3")
	first := NewRedisLocker(client)
	if err := first.Acquire(context.Background(), key, time.Second); err != nil {
		t.Fatalf("Acquire first: %v", err)
	}
	mr.FastForward(2 * time.Second)

	second := NewRedisLocker(client)
	if err := second.Acquire(context.Background(), key, time.Minute); err != nil {
		t.Fatalf("Acquire second after expiry: %v", err)
	}
	if err := first.Release(context.Background(), key); err != ErrNotHeld {
		t.Fatalf("expected ErrNotHeld, got %v", err)
	}
	if !mr.Exists(key) {
		t.Fatalf("expected the second owner to keep %s", key)
	}
}

func TestOwnedReservesBeforeBackend(t *testing.T) {
	t.Parallel()

	o := newOwned[string]()
	if err := o.reserve("k"); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := o.reserve("k"); err != ErrAlreadyHeld {
		t.Fatalf("expected ErrAlreadyHeld while pending, got %v", err)
	}
	if _, ok := o.take("k"); ok {
		t.Fatalf("pending key must not be releasable")
	}
	o.settle("k", "", false)
	if err := o.reserve("k"); err != nil {
		t.Fatalf("reserve after refused attempt: %v", err)
	}
	o.settle("k", "token", true)
	if token, ok := o.take("k"); !ok || token != "token" {
		t.Fatalf("unexpected handle %q %v", token, ok)
	}
}

func TestWithReleasesAfterRun(t *testing.T) {
	t.Parallel()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	locker := NewRedisLocker(client)
	key := BounceKey("req-2")

	ran := false
	err = With(context.Background(), locker, key, time.Minute, func(ctx context.Context) error {
		ran = true
		if !mr.Exists(key) {
			t.Fatalf("expected %s to be held while running", key)
		}
		return nil
	})
	if err != nil || !ran {
		t.Fatalf("With: ran=%v err=%v", ran, err)
	}
	if mr.Exists(key) {
		t.Fatalf("expected %s to be released", key)
	}

	other := NewRedisLocker(client)
	if err := other.Acquire(context.Background(), key, time.Minute); err != nil {
		t.Fatalf("Acquire after With: %v", err)
	}
	if err := With(context.Background(), locker, key, time.Minute, func(context.Context) error { return nil }); err != ErrNotAcquired {
		t.Fatalf("expected ErrNotAcquired, got %v", err)
	}
}
