package accounts

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LivenessCache is a read-through cache over the store's token liveness
// check. A hit answers "this exact token is live for this account" without a
// database round trip; a miss degrades to the store lookup. Logout must
// invalidate, so a revoked token never outlives its cache entry.
type LivenessCache interface {
	Get(ctx context.Context, token string) (Projection, bool, error)
	Set(ctx context.Context, token string, acc Projection) error
	Invalidate(ctx context.Context, token string) error
}

// RedisLivenessCache implements LivenessCache on Redis. Keys are the SHA-256
// of the raw token, so the cache never stores a usable bearer credential.
type RedisLivenessCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLivenessCache constructs a cache with the given entry TTL.
func NewRedisLivenessCache(client *redis.Client, ttl time.Duration) *RedisLivenessCache {
	return &RedisLivenessCache{client: client, ttl: ttl}
}

func (c *RedisLivenessCache) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "taskledger:token:" + hex.EncodeToString(sum[:])
}

// Get looks up the cached projection for token.
func (c *RedisLivenessCache) Get(ctx context.Context, token string) (Projection, bool, error) {
	val, err := c.client.Get(ctx, c.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Projection{}, false, nil
		}
		return Projection{}, false, fmt.Errorf("accounts: liveness cache get: %w", err)
	}
	var acc Projection
	if err := json.Unmarshal(val, &acc); err != nil {
		// A corrupt entry is treated as a miss and left to expire.
		return Projection{}, false, nil
	}
	return acc, true, nil
}

// Set records that token is live for the given account.
func (c *RedisLivenessCache) Set(ctx context.Context, token string, acc Projection) error {
	data, err := json.Marshal(acc)
	if err != nil {
		return fmt.Errorf("accounts: liveness cache encode: %w", err)
	}
	if err := c.client.Set(ctx, c.key(token), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("accounts: liveness cache set: %w", err)
	}
	return nil
}

// Invalidate drops the cache entry for token.
func (c *RedisLivenessCache) Invalidate(ctx context.Context, token string) error {
	if err := c.client.Del(ctx, c.key(token)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("accounts: liveness cache del: %w", err)
	}
	return nil
}

var _ LivenessCache = (*RedisLivenessCache)(nil)
