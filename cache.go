package lendcore

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// NoOpInvalidator discards invalidation signals. Installed by default.
type NoOpInvalidator struct{}

// Invalidate describes the invalidate operation and its observable behavior.
func (NoOpInvalidator) Invalidate(context.Context, string) error { return nil }

// RedisInvalidator drops cached dashboard views by deleting their
// rendered-view keys. The presentation layer re-renders on the next read.
type RedisInvalidator struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisInvalidator creates an invalidator over the given client.
// Keys take the form "<prefix>:view:<path>".
func NewRedisInvalidator(redisClient redis.UniversalClient, prefix string) *RedisInvalidator {
	if prefix == "" {
		prefix = "lc"
	}
	return &RedisInvalidator{
		redis:  redisClient,
		prefix: prefix,
	}
}

// Invalidate describes the invalidate operation and its observable behavior.
//
// Invalidate may return an error when the deletion cannot be issued; the
// engine treats that as non-fatal and the stale view expires on its own TTL.
func (c *RedisInvalidator) Invalidate(ctx context.Context, path string) error {
	if c == nil || c.redis == nil {
		return nil
	}
	if err := c.redis.Del(ctx, c.prefix+":view:"+path).Err(); err != nil {
		return fmt.Errorf("invalidate %s: %w", path, err)
	}
	return nil
}
