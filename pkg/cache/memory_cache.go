package cache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryCache is the process-local Cache. Expired keys are invisible to reads at once and
// removed by a background sweep, so keys that are never read again do not accumulate.
type MemoryCache struct {
	items *ttlcache.Cache[string, string]
}

type memoryOptions struct {
	capacity uint64
}

type MemoryOption func(*memoryOptions)

// WithCapacity bounds the number of keys; the least recently used key is evicted first.
func WithCapacity(n uint64) MemoryOption {
	return func(o *memoryOptions) {
		o.capacity = n
	}
}

// NewMemoryCache starts the expiry sweep. Call Close to stop it.
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	var o memoryOptions
	for _, opt := range opts {
		opt(&o)
	}

	cacheOpts := []ttlcache.Option[string, string]{
		// reads must not push an entry's expiry forward
		ttlcache.WithDisableTouchOnHit[string, string](),
	}
	if o.capacity > 0 {
		cacheOpts = append(cacheOpts, ttlcache.WithCapacity[string, string](o.capacity))
	}

	m := &MemoryCache{items: ttlcache.New[string, string](cacheOpts...)}
	go m.items.Start()
	return m
}

// Set stores value for ttl; a ttl of zero or less never expires.
func (m *MemoryCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = ttlcache.NoTTL
	}
	m.items.Set(key, value, ttl)
	return nil
}

func (m *MemoryCache) Get(_ context.Context, key string) (string, error) {
	item := m.items.Get(key)
	if item == nil {
		return "", ErrNotFound
	}
	return item.Value(), nil
}

func (m *MemoryCache) Del(_ context.Context, key string) error {
	m.items.Delete(key)
	return nil
}

func (m *MemoryCache) Clear(_ context.Context) error {
	m.items.DeleteAll()
	return nil
}

func (m *MemoryCache) Len(_ context.Context) (int, error) {
	m.items.DeleteExpired()
	return m.items.Len(), nil
}

// Close stops the expiry sweep.
func (m *MemoryCache) Close() error {
	m.items.Stop()
	return nil
}
