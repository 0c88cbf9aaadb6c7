package lock

import (
	"context"
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"fmt"
	"math"
	"time"
)

// maxLockName is the longest name GET_LOCK accepts.
const maxLockName = 64

// MySQLLocker takes named advisory locks with GET_LOCK. A lock belongs to the
// session that took it, so every held key pins one pooled connection until
// Release. The lock has no expiry of its own: it dies with the session.
type MySQLLocker struct {
	db    *sql.DB
	conns *owned[*sql.Conn]
}

func NewMySQLLocker(db *sql.DB) *MySQLLocker {
	return &MySQLLocker{db: db, conns: newOwned[*sql.Conn]()}
}

// Acquire waits up to wait for the lock named after key.
func (l *MySQLLocker) Acquire(ctx context.Context, key string, wait time.Duration) (err error) {
	if err := l.conns.reserve(key); err != nil {
		return err
	}
	var conn *sql.Conn
	defer func() { l.conns.settle(key, conn, err == nil) }()

	conn, err = l.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("reserve connection: %w", err)
	}
	if err = getLock(ctx, conn, lockName(key), waitSeconds(wait)); err != nil {
		_ = conn.Close()
		return err
	}
	return nil
}

// Release drops the lock and hands the pinned connection back to the pool.
func (l *MySQLLocker) Release(ctx context.Context, key string) error {
	conn, ok := l.conns.take(key)
	if !ok {
		return nil
	}
	defer conn.Close()

	var released sql.NullInt64
	if err := conn.QueryRowContext(ctx, "SELECT RELEASE_LOCK(?)", lockName(key)).Scan(&released); err != nil {
		return err
	}
	if !released.Valid || released.Int64 != 1 {
		return ErrNotHeld
	}
	return nil
}

// getLock maps GET_LOCK results: 1 granted, 0 timed out, NULL on server error.
func getLock(ctx context.Context, conn *sql.Conn, name string, seconds int) error {
	var granted sql.NullInt64
	if err := conn.QueryRowContext(ctx, "SELECT GET_LOCK(?, ?)", name, seconds).Scan(&granted); err != nil {
		return err
	}
	switch {
	case !granted.Valid:
		return fmt.Errorf("get_lock %s: server returned NULL", name)
	case granted.Int64 != 1:
		return ErrNotAcquired
	}
	return nil
}

// waitSeconds rounds up to whole seconds, at least one.
func waitSeconds(d time.Duration) int {
	return int(math.Max(1, math.Ceil(d.Seconds())))
}

// lockName keeps short keys readable and hashes keys that exceed the MySQL limit.
func lockName(key string) string {
	if len(key) <= maxLockName {
		return key
	}
	sum := sha1.Sum([]byte(key))
	return "bounces:" + hex.EncodeToString(sum[:])
}
