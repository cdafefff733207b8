package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

// CacheRepository stores rendered grids in Redis under a generation counter.
// Bumping the generation orphans every entry written before it; stale keys
// expire through their TTL.
type CacheRepository struct {
	client *redis.Client
	prefix string
}

// NewCacheRepository constructs a cache repository. A nil client always misses.
func NewCacheRepository(client *redis.Client, prefix string) *CacheRepository {
	if prefix == "" {
		prefix = "timetable:grid"
	}
	return &CacheRepository{client: client, prefix: prefix}
}

func (r *CacheRepository) generationKey() string {
	return r.prefix + ":generation"
}

// Generation returns the current generation, zero when none was ever bumped.
func (r *CacheRepository) Generation(ctx context.Context) (int64, error) {
	if r.client == nil {
		return 0, nil
	}
	gen, err := r.client.Get(ctx, r.generationKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get generation: %w", err)
	}
	return gen, nil
}

// Bump advances the generation.
func (r *CacheRepository) Bump(ctx context.Context) (int64, error) {
	if r.client == nil {
		return 0, nil
	}
	gen, err := r.client.Incr(ctx, r.generationKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr generation: %w", err)
	}
	return gen, nil
}

func (r *CacheRepository) entryKey(generation int64, key string) string {
	return fmt.Sprintf("%s:%d:%s", r.prefix, generation, key)
}

// Get unmarshals the entry for key at generation into dest.
func (r *CacheRepository) Get(ctx context.Context, generation int64, key string, dest interface{}) error {
	if r.client == nil {
		return appErrors.ErrCacheMiss
	}
	raw, err := r.client.Get(ctx, r.entryKey(generation, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return appErrors.ErrCacheMiss
		}
		return fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("unmarshal cache value for %s: %w", key, err)
	}
	return nil
}

// Set stores value for key at generation.
func (r *CacheRepository) Set(ctx context.Context, generation int64, key string, value interface{}, ttl time.Duration) error {
	if r.client == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value for %s: %w", key, err)
	}
	if err := r.client.Set(ctx, r.entryKey(generation, key), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
