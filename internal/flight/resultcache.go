package flight

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"sync/atomic"
	"time"

	"corptravel/pkg/cache"
	"corptravel/pkg/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	offerKeyPrefix     = "flight:offer:"
	referenceKeyPrefix = "flight:ref:"
)

// CacheKind selects the TTL an entry is stored with.
type CacheKind int

const (
	KindFlightSearch CacheKind = iota
	KindReferenceData
	KindOffer
)

func (k CacheKind) String() string {
	switch k {
	case KindFlightSearch:
		return "flight_search"
	case KindReferenceData:
		return "reference_data"
	case KindOffer:
		return "offer"
	}
	return "unknown"
}

type TTLPolicy struct {
	FlightSearch  time.Duration
	ReferenceData time.Duration
	Offer         time.Duration
}

func DefaultTTLPolicy() TTLPolicy {
	return TTLPolicy{
		FlightSearch:  5 * time.Minute,
		ReferenceData: 24 * time.Hour,
		Offer:         2 * time.Minute,
	}
}

func (p TTLPolicy) For(kind CacheKind) time.Duration {
	switch kind {
	case KindReferenceData:
		return p.ReferenceData
	case KindOffer:
		return p.Offer
	default:
		return p.FlightSearch
	}
}

type CacheStats struct {
	Size    int     `json:"size"`
	Hits    uint64  `json:"hits"`
	Misses  uint64  `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// cacheEntry is the envelope written to the backend.
type cacheEntry struct {
	Key        string          `json:"key"`
	StoredAt   time.Time       `json:"stored_at"`
	TTLSeconds int64           `json:"ttl_seconds"`
	Value      json.RawMessage `json:"value"`
}

func (e cacheEntry) expired(now time.Time) bool {
	if e.TTLSeconds <= 0 {
		return false
	}
	return now.After(e.StoredAt.Add(time.Duration(e.TTLSeconds) * time.Second))
}

// ResultCache stores normalized results keyed by request fingerprint. It never blocks
// callers on a miss and does not coalesce identical in-flight lookups.
type ResultCache struct {
	backend cache.Cache
	ttl     TTLPolicy
	now     func() time.Time
	logger  logger.Logger

	hits   atomic.Uint64
	misses atomic.Uint64

	hitCounter  metric.Int64Counter
	missCounter metric.Int64Counter
}

type ResultCacheOption func(*ResultCache)

func WithCacheClock(now func() time.Time) ResultCacheOption {
	return func(c *ResultCache) { c.now = now }
}

func WithMeter(meter metric.Meter) ResultCacheOption {
	return func(c *ResultCache) { c.registerInstruments(meter) }
}

func NewResultCache(backend cache.Cache, ttl TTLPolicy, log logger.Logger, opts ...ResultCacheOption) *ResultCache {
	c := &ResultCache{
		backend: backend,
		ttl:     ttl,
		now:     time.Now,
		logger:  log,
	}
	c.registerInstruments(otel.Meter("corptravel/internal/flight"))
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *ResultCache) registerInstruments(meter metric.Meter) {
	var err error
	if c.hitCounter, err = meter.Int64Counter("flight.cache.hits", metric.WithDescription("result cache hits")); err != nil {
		c.logger.Warn("cache hit counter unavailable", logger.Err(err))
	}
	if c.missCounter, err = meter.Int64Counter("flight.cache.misses", metric.WithDescription("result cache misses")); err != nil {
		c.logger.Warn("cache miss counter unavailable", logger.Err(err))
	}
}

// Get returns the cached result for req. Expired entries count as misses and are evicted.
func (c *ResultCache) Get(ctx context.Context, req SearchRequest) (*SearchResult, bool) {
	var result SearchResult
	if !c.lookup(ctx, Fingerprint(req), KindFlightSearch, &result) {
		return nil, false
	}
	return &result, true
}

func (c *ResultCache) Set(ctx context.Context, req SearchRequest, result *SearchResult, kind CacheKind) error {
	return c.store(ctx, Fingerprint(req), result, c.ttl.For(kind))
}

// GetOffer returns a cached offer unless it has expired on the provider side.
func (c *ResultCache) GetOffer(ctx context.Context, offerID string) (*Flight, bool) {
	var f Flight
	if !c.lookup(ctx, offerKeyPrefix+offerID, KindOffer, &f) {
		return nil, false
	}
	if f.Expired(c.now()) {
		_ = c.backend.Del(ctx, offerKeyPrefix+offerID)
		return nil, false
	}
	return &f, true
}

// SetOffer stores f for the offer TTL, shortened to the offer's own expiry.
func (c *ResultCache) SetOffer(ctx context.Context, f *Flight) error {
	ttl := c.ttl.Offer
	if f.ExpiresAt != nil {
		remaining := f.ExpiresAt.Sub(c.now())
		if remaining <= 0 {
			return nil
		}
		if remaining < ttl {
			ttl = remaining
		}
	}
	return c.store(ctx, offerKeyPrefix+f.ID, f, ttl)
}

// GetReference decodes the reference list stored under name into dst.
func (c *ResultCache) GetReference(ctx context.Context, name string, dst any) bool {
	return c.lookup(ctx, referenceKey(name), KindReferenceData, dst)
}

func (c *ResultCache) SetReference(ctx context.Context, name string, value any) error {
	return c.store(ctx, referenceKey(name), value, c.ttl.ReferenceData)
}

func (c *ResultCache) Clear(ctx context.Context) error {
	return c.backend.Clear(ctx)
}

func (c *ResultCache) Stats(ctx context.Context) CacheStats {
	size, err := c.backend.Len(ctx)
	if err != nil {
		c.logger.Error("cache size unavailable", logger.Err(err))
	}

	hits, misses := c.hits.Load(), c.misses.Load()
	stats := CacheStats{Size: size, Hits: hits, Misses: misses}
	if total := hits + misses; total > 0 {
		stats.HitRate = float64(hits) / float64(total)
	}
	return stats
}

func (c *ResultCache) lookup(ctx context.Context, key string, kind CacheKind, dst any) bool {
	raw, err := c.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			c.logger.Error("cache get failed", logger.Field{Key: "cache_key", Value: key}, logger.Err(err))
		}
		c.recordMiss(ctx, kind)
		return false
	}

	var entry cacheEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		c.logger.Error("failed to unmarshal cache entry", logger.Field{Key: "cache_key", Value: key}, logger.Err(err))
		_ = c.backend.Del(ctx, key)
		c.recordMiss(ctx, kind)
		return false
	}

	if entry.expired(c.now()) {
		_ = c.backend.Del(ctx, key)
		c.recordMiss(ctx, kind)
		return false
	}

	if err := json.Unmarshal(entry.Value, dst); err != nil {
		c.logger.Error("failed to unmarshal cached value", logger.Field{Key: "cache_key", Value: key}, logger.Err(err))
		_ = c.backend.Del(ctx, key)
		c.recordMiss(ctx, kind)
		return false
	}

	c.recordHit(ctx, kind)
	return true
}

func (c *ResultCache) store(ctx context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}

	entry, err := json.Marshal(cacheEntry{
		Key:        key,
		StoredAt:   c.now(),
		TTLSeconds: int64(math.Ceil(ttl.Seconds())),
		Value:      payload,
	})
	if err != nil {
		return err
	}
	return c.backend.Set(ctx, key, string(entry), ttl)
}

func (c *ResultCache) recordHit(ctx context.Context, kind CacheKind) {
	c.hits.Add(1)
	if c.hitCounter != nil {
		c.hitCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind.String())))
	}
}

func (c *ResultCache) recordMiss(ctx context.Context, kind CacheKind) {
	c.misses.Add(1)
	if c.missCounter != nil {
		c.missCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind.String())))
	}
}

func referenceKey(name string) string {
	return referenceKeyPrefix + strings.ToLower(strings.TrimSpace(name))
}
