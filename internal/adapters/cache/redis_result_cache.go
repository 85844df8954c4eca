package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"smart-route-planner/internal/domain"
	"smart-route-planner/internal/platform/obs"
)

// RedisResultCache is a Redis-backed cache of optimization results.
// Entries expire after TTL; a zero TTL keeps them until evicted.
type RedisResultCache struct {
	RDB *redis.Client
	TTL time.Duration
}

func NewRedisResultCache(rdb *redis.Client, ttl time.Duration) *RedisResultCache {
	return &RedisResultCache{RDB: rdb, TTL: ttl}
}

// NewRedisClient parses a redis:// URL and verifies the server is reachable.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis client: parse url: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis client: ping: %w", err)
	}

	return rdb, nil
}

type cachedStop struct {
	ID       int     `json:"id"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Priority string  `json:"priority"`
}

type cachedGroup struct {
	Count      int     `json:"count"`
	DistanceKm float64 `json:"distance_km"`
}

type cachedResult struct {
	Route           []cachedStop           `json:"route"`
	TotalDistanceKm float64                `json:"total_distance_km"`
	GroupStats      map[string]cachedGroup `json:"group_stats"`
	ElapsedNs       int64                  `json:"elapsed_ns"`
}

// Fetch the result stored under key.
func (c *RedisResultCache) Get(
	ctx context.Context,
	key string,
) (_ *domain.OptimizationResult, _ bool, err error) {
	defer obs.Time(ctx, "result.cache.Get")(&err)

	if c.RDB == nil {
		return nil, false, errors.New("result cache: redis client is nil")
	}
	if key == "" {
		return nil, false, errors.New("get result cache: key must not be empty")
	}

	raw, err := c.RDB.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get result cache key=%q: %w", key, err)
	}

	var cr cachedResult
	if err := json.Unmarshal(raw, &cr); err != nil {
		return nil, false, fmt.Errorf("get result cache key=%q: decode: %w", key, err)
	}

	return cr.toDomain(), true, nil
}

// Store res under key with the configured TTL.
func (c *RedisResultCache) Put(
	ctx context.Context,
	key string,
	res *domain.OptimizationResult,
) (err error) {
	defer obs.Time(ctx, "result.cache.Put")(&err)

	if c.RDB == nil {
		return errors.New("result cache: redis client is nil")
	}
	if key == "" {
		return errors.New("insert result cache: key must not be empty")
	}
	if res == nil {
		return errors.New("insert result cache: result must not be nil")
	}

	raw, err := json.Marshal(fromDomain(res))
	if err != nil {
		return fmt.Errorf("insert result cache key=%q: encode: %w", key, err)
	}

	if err := c.RDB.Set(ctx, key, raw, c.TTL).Err(); err != nil {
		return fmt.Errorf("insert result cache key=%q: %w", key, err)
	}

	return nil
}

func fromDomain(res *domain.OptimizationResult) cachedResult {
	cr := cachedResult{
		Route:           make([]cachedStop, 0, len(res.Route)),
		TotalDistanceKm: res.TotalDistanceKm,
		GroupStats:      make(map[string]cachedGroup, len(res.GroupStats)),
		ElapsedNs:       res.Elapsed.Nanoseconds(),
	}
	for _, s := range res.Route {
		cr.Route = append(cr.Route, cachedStop{ID: s.ID, Lat: s.Lat, Lon: s.Lon, Priority: string(s.Priority)})
	}
	for p, g := range res.GroupStats {
		cr.GroupStats[string(p)] = cachedGroup{Count: g.Count, DistanceKm: g.DistanceKm}
	}
	return cr
}

func (cr cachedResult) toDomain() *domain.OptimizationResult {
	res := &domain.OptimizationResult{
		Route:           make([]domain.Stop, 0, len(cr.Route)),
		TotalDistanceKm: cr.TotalDistanceKm,
		GroupStats:      make(map[domain.Priority]domain.GroupStat, len(domain.Priorities)),
		Elapsed:         time.Duration(cr.ElapsedNs),
	}
	for _, s := range cr.Route {
		res.Route = append(res.Route, domain.Stop{ID: s.ID, Lat: s.Lat, Lon: s.Lon, Priority: domain.Priority(s.Priority)})
	}
	// Every tier is always present, even if the entry predates one.
	for _, p := range domain.Priorities {
		g := cr.GroupStats[string(p)]
		res.GroupStats[p] = domain.GroupStat{Count: g.Count, DistanceKm: g.DistanceKm}
	}
	return res
}
