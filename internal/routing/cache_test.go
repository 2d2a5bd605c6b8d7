package routing_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/eld-logbook/internal/domain"
	"github.com/pkordes/eld-logbook/internal/routing"
)

// countingProvider is a hand-written Provider mock.
type countingProvider struct {
	calls int
	fn    func(origin, destination string) (domain.RouteEstimate, error)
}

func (p *countingProvider) EstimateRoute(_ context.Context, origin, destination string) (domain.RouteEstimate, error) {
	p.calls++
	return p.fn(origin, destination)
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestCache_ReadThrough(t *testing.T) {
	mr, rdb := newRedis(t)
	want := domain.RouteEstimate{
		DistanceMiles:   469.76,
		DurationMinutes: 430,
		Waypoints:       []domain.Waypoint{{Label: "Omaha, NE", DistanceMiles: 469.76, DurationMinutes: 430}},
	}
	next := &countingProvider{fn: func(string, string) (domain.RouteEstimate, error) { return want, nil }}
	c := routing.NewCache(rdb, next, time.Hour)
	ctx := context.Background()

	first, err := c.EstimateRoute(ctx, "Chicago, IL", "Omaha, NE")
	require.NoError(t, err)
	second, err := c.EstimateRoute(ctx, "chicago,  il", "OMAHA, NE")
	require.NoError(t, err)

	assert.Equal(t, want, first)
	assert.Equal(t, want, second)
	assert.Equal(t, 1, next.calls, "the second lookup is served from Redis")

	key := routing.CacheKey("Chicago, IL", "Omaha, NE")
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Hour, mr.TTL(key))

	mr.FastForward(time.Hour + time.Second)
	_, err = c.EstimateRoute(ctx, "Chicago, IL", "Omaha, NE")
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls, "expired entries are fetched again")
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	mr, rdb := newRedis(t)
	next := &countingProvider{fn: func(string, string) (domain.RouteEstimate, error) {
		return domain.RouteEstimate{}, domain.ErrRouteUnavailable
	}}
	c := routing.NewCache(rdb, next, time.Minute)

	_, err := c.EstimateRoute(context.Background(), "Chicago, IL", "Omaha, NE")

	assert.ErrorIs(t, err, domain.ErrRouteUnavailable)
	assert.Empty(t, mr.Keys())
}

func TestCache_RedisDownFallsThrough(t *testing.T) {
	mr, rdb := newRedis(t)
	next := &countingProvider{fn: func(string, string) (domain.RouteEstimate, error) {
		return domain.RouteEstimate{DistanceMiles: 10, DurationMinutes: 12}, nil
	}}
	c := routing.NewCache(rdb, next, time.Minute)
	mr.Close()

	est, err := c.EstimateRoute(context.Background(), "Chicago, IL", "Omaha, NE")

	require.NoError(t, err)
	assert.Equal(t, 12, est.DurationMinutes)
	assert.Equal(t, 1, next.calls)
}

func TestCache_UnreadableEntryIsReplaced(t *testing.T) {
	mr, rdb := newRedis(t)
	key := routing.CacheKey("Chicago, IL", "Omaha, NE")
	require.NoError(t, mr.Set(key, "{not json"))
	next := &countingProvider{fn: func(string, string) (domain.RouteEstimate, error) {
		return domain.RouteEstimate{DistanceMiles: 10, DurationMinutes: 12}, nil
	}}
	c := routing.NewCache(rdb, next, 0)

	est, err := c.EstimateRoute(context.Background(), "Chicago, IL", "Omaha, NE")

	require.NoError(t, err)
	assert.Equal(t, 10.0, est.DistanceMiles)
	got, err := mr.Get(key)
	require.NoError(t, err)
	assert.JSONEq(t, `{"distance_miles":10,"duration_minutes":12,"waypoints":null}`, got)
}
