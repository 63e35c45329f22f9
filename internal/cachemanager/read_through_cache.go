package cachemanager

import (
	"context"
	"time"

	"github.com/zjrosen/smartmd/internal/log"
)

// ReadThroughCache computes a value on miss and stores it.
type ReadThroughCache[K ~string, V any, I any] struct {
	cache    CacheManager[K, V]
	fn       func(ctx context.Context, input I) (V, error)
	disabled bool
}

// NewReadThroughCache wraps fn with cache. When disabled, fn is always called.
func NewReadThroughCache[K ~string, V any, I any](
	cache CacheManager[K, V],
	fn func(ctx context.Context, input I) (V, error),
	disabled bool,
) *ReadThroughCache[K, V, I] {
	return &ReadThroughCache[K, V, I]{cache: cache, fn: fn, disabled: disabled}
}

// Get returns the cached value for key or computes it from input.
// Errors are not cached.
func (r *ReadThroughCache[K, V, I]) Get(ctx context.Context, key K, input I, ttl time.Duration) (V, error) {
	if r.disabled {
		return r.fn(ctx, input)
	}
	if value, ok := r.cache.Get(ctx, key); ok {
		return value, nil
	}

	value, err := r.fn(ctx, input)
	if err != nil {
		return value, err
	}
	log.Debug(log.CatCache, "cache fill", "key", key)
	r.cache.Set(ctx, key, value, ttl)
	return value, nil
}
