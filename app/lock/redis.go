package lock

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLocker stores a ULID ownership token under each key with SET NX PX.
// Unlike the MySQL locker the lock expires on its own after ttl.
type RedisLocker struct {
	client *redis.Client
	tokens *owned[string]
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client, tokens: newOwned[string]()}
}

// Acquire takes key for ttl without waiting.
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (err error) {
	if err := l.tokens.reserve(key); err != nil {
		return err
	}
	token := ulid.Make().String()
	defer func() { l.tokens.settle(key, token, err == nil) }()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAcquired
	}
	return nil
}

// Release deletes key when our token is still on it and reports ErrNotHeld otherwise.
func (l *RedisLocker) Release(ctx context.Context, key string) error {
	token, ok := l.tokens.take(key)
	if !ok {
		return nil
	}
	deleted, err := releaseScript.Run(ctx, l.client, []string{key}, token).Int()
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrNotHeld
	}
	return nil
}
