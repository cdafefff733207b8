package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

// gridCacheStore persists cached payloads under a generation counter.
type gridCacheStore interface {
	Generation(ctx context.Context) (int64, error)
	Bump(ctx context.Context) (int64, error)
	Get(ctx context.Context, generation int64, key string, dest interface{}) error
	Set(ctx context.Context, generation int64, key string, value interface{}, ttl time.Duration) error
}

type cacheObserver interface {
	ObserveCacheLookup(hit bool)
}

// GridCache is a read-through cache for rendered timetables. Any store write
// calls Invalidate, which moves every reader to a fresh generation.
type GridCache struct {
	store    gridCacheStore
	observer cacheObserver
	ttl      time.Duration
	logger   *zap.Logger
	enabled  bool
}

// NewGridCache constructs a GridCache. A nil store disables caching.
func NewGridCache(store gridCacheStore, observer cacheObserver, ttl time.Duration, logger *zap.Logger, enabled bool) *GridCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GridCache{store: store, observer: observer, ttl: ttl, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (c *GridCache) Enabled() bool {
	return c != nil && c.enabled && c.store != nil
}

// Invalidate drops every cached grid. Failures are logged; readers then serve
// entries until their TTL runs out.
func (c *GridCache) Invalidate(ctx context.Context) {
	if !c.Enabled() {
		return
	}
	if _, err := c.store.Bump(ctx); err != nil {
		c.logger.Warn("grid cache invalidate failed", zap.Error(err))
	}
}

func (c *GridCache) observe(hit bool) {
	if c.observer != nil {
		c.observer.ObserveCacheLookup(hit)
	}
}

// cached serves key from the cache or runs load and stores its result. Cache
// errors never fail the request.
func cached[T any](ctx context.Context, c *GridCache, key string, load func() (*T, error)) (*T, error) {
	if !c.Enabled() {
		return load()
	}

	generation, err := c.store.Generation(ctx)
	if err != nil {
		c.logger.Warn("grid cache generation read failed", zap.Error(err))
		return load()
	}

	var hit T
	err = c.store.Get(ctx, generation, key, &hit)
	switch {
	case err == nil:
		c.observe(true)
		return &hit, nil
	case !errors.Is(err, appErrors.ErrCacheMiss):
		c.logger.Warn("grid cache get failed", zap.String("key", key), zap.Error(err))
	}
	c.observe(false)

	value, err := load()
	if err != nil {
		return nil, err
	}
	if err := c.store.Set(ctx, generation, key, value, c.ttl); err != nil {
		c.logger.Warn("grid cache set failed", zap.String("key", key), zap.Error(err))
	}
	return value, nil
}
