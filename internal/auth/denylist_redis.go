package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ecotrack/auth-service/internal/constants"
)

// RedisDenylist keeps revoked token ids in Redis so every instance sees them.
// Keys expire with the token, so Prune has nothing to do.
type RedisDenylist struct {
	rdb    *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedisClient creates a Redis client from a URL such as redis://:pass@host:6379/0
// and pings it so a bad address fails at startup.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, constants.RedisOperationTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return rdb, nil
}

// NewRedisDenylist wraps an existing client. An empty prefix uses the default.
func NewRedisDenylist(rdb *redis.Client, prefix string) *RedisDenylist {
	if prefix == "" {
		prefix = constants.DefaultRevocationKeyPrefix
	}
	return &RedisDenylist{rdb: rdb, prefix: prefix, now: time.Now}
}

func (d *RedisDenylist) key(tokenID string) string { return d.prefix + tokenID }

// Revoke stores the token id with a TTL that ends when the token expires
func (d *RedisDenylist) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := until.Sub(d.now())
	if tokenID == "" || ttl <= 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, constants.RedisOperationTimeout)
	defer cancel()

	if err := d.rdb.Set(ctx, d.key(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether the token id is present
func (d *RedisDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RedisOperationTimeout)
	defer cancel()

	n, err := d.rdb.Exists(ctx, d.key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check revocation: %w", err)
	}
	return n > 0, nil
}

// Prune is a no-op
func (d *RedisDenylist) Prune(context.Context) (int, error) {
	return 0, nil
}

// Close closes the underlying client
func (d *RedisDenylist) Close() error {
	return d.rdb.Close()
}
