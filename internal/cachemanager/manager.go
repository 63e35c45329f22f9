// Package cachemanager provides small TTL caches for derived editor data.
package cachemanager

import (
	"context"
	"time"
)

// CacheManager stores derived values under string keys with a TTL.
type CacheManager[K ~string, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K) error
	Flush(ctx context.Context) error
	Len() int
}
