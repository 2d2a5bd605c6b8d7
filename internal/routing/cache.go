package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pkordes/eld-logbook/internal/domain"
)

const cacheKeyPrefix = "route:"

// Cache is a read-through Redis cache in front of another Provider.
// Redis failures are logged and fall through to the wrapped provider; a
// routing answer is never lost because the cache is down.
type Cache struct {
	rdb  redis.Cmdable
	next Provider
	ttl  time.Duration
}

// NewCache wraps next. A ttl of zero stores entries without expiry.
func NewCache(rdb redis.Cmdable, next Provider, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, next: next, ttl: ttl}
}

func (c *Cache) EstimateRoute(ctx context.Context, origin, destination string) (domain.RouteEstimate, error) {
	o, d, err := checkEndpoints(origin, destination)
	if err != nil {
		return domain.RouteEstimate{}, fmt.Errorf("routing.Cache.EstimateRoute: %w", err)
	}
	key := CacheKey(o, d)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var est domain.RouteEstimate
		if err := json.Unmarshal(raw, &est); err == nil {
			return est, nil
		}
		slog.WarnContext(ctx, "discarding unreadable route cache entry", "key", key)
	case errors.Is(err, redis.Nil):
	default:
		slog.WarnContext(ctx, "route cache read failed", "key", key, "error", err)
	}

	est, err := c.next.EstimateRoute(ctx, o, d)
	if err != nil {
		return domain.RouteEstimate{}, err
	}

	if b, err := json.Marshal(est); err == nil {
		if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
			slog.WarnContext(ctx, "route cache write failed", "key", key, "error", err)
		}
	}
	return est, nil
}

// CacheKey is the Redis key for a leg. Keys are case-insensitive.
func CacheKey(origin, destination string) string {
	return cacheKeyPrefix + strings.ToLower(normalize(origin)) + "|" + strings.ToLower(normalize(destination))
}
