// Package lock provides the per-URL save lock shared by every API process.
package lock

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	// KeyPrefix namespaces save lock keys
	KeyPrefix = "linkshelf:save:"
	// DefaultTTL bounds how long a crashed save can hold a URL
	DefaultTTL = 2 * time.Minute

	releaseTimeout = 5 * time.Second
)

// releaseScript deletes the key only when it still holds our token, so an
// expired lock re-acquired by another process is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisLocker takes short-lived locks with SET NX PX
type RedisLocker struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisLocker connects to Redis and verifies the connection
func NewRedisLocker(ctx context.Context, cfg RedisConfig, logger zerolog.Logger) (*RedisLocker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisLockerWithClient(client, cfg.TTL, logger), nil
}

// NewRedisLockerWithClient wraps an existing client
func NewRedisLockerWithClient(client redis.UniversalClient, ttl time.Duration, logger zerolog.Logger) *RedisLocker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisLocker{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "save_lock").Logger(),
	}
}

// Key returns the Redis key guarding url
func Key(url string) string {
	sum := sha256.Sum256([]byte(url))
	return KeyPrefix + hex.EncodeToString(sum[:])
}

// TryLock attempts to take the lock for url without waiting. The returned
// unlock func is a no-op when ok is false.
func (l *RedisLocker) TryLock(ctx context.Context, url string) (func(), bool, error) {
	key := Key(url)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return func() {}, false, fmt.Errorf("acquiring save lock: %w", err)
	}
	if !ok {
		return func() {}, false, nil
	}

	unlock := func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil {
			l.logger.Warn().Err(err).Str("key", key).Msg("failed to release save lock")
		}
	}
	return unlock, true, nil
}

// Close closes the underlying client
func (l *RedisLocker) Close() error {
	return l.client.Close()
}

// NoopLocker always grants the lock. Used when Redis is not configured.
type NoopLocker struct{}

func (NoopLocker) TryLock(ctx context.Context, url string) (func(), bool, error) {
	return func() {}, true, nil
}
