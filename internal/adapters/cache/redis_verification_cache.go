package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/codehaven/licensing-service/internal/ports"
)

// RedisVerificationCache memoizes verification results in Redis with TTL.
// The key keeps slug and code digest as separate segments so admin state
// changes can evict every domain variant of one license with a single scan.
type RedisVerificationCache struct {
	client *redis.Client
}

// NewRedisVerificationCache creates the verification cache adapter.
func NewRedisVerificationCache(client *redis.Client) *RedisVerificationCache {
	return &RedisVerificationCache{client: client}
}

func verificationKey(productSlug, codeDigest, domainDigest string) string {
	return "license:verify:" + productSlug + ":" + codeDigest + ":" + domainDigest
}

func (c *RedisVerificationCache) Get(ctx context.Context, productSlug, codeDigest, domainDigest string) (*ports.CachedVerification, error) {
	raw, err := c.client.Get(ctx, verificationKey(productSlug, codeDigest, domainDigest)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var out ports.CachedVerification
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RedisVerificationCache) Put(ctx context.Context, productSlug, codeDigest, domainDigest string, value ports.CachedVerification, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, verificationKey(productSlug, codeDigest, domainDigest), raw, ttl).Err()
}

// InvalidateLicense walks every cached triple for one license and deletes it.
// SCAN keeps the eviction non-blocking on shared Redis instances.
func (c *RedisVerificationCache) InvalidateLicense(ctx context.Context, productSlug, codeDigest string) error {
	pattern := "license:verify:" + productSlug + ":" + codeDigest + ":*"
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
