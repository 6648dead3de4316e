package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// minIdle keeps sweeps from running on every call when buckets refill quickly.
const minIdle = time.Minute

type keyedEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type Keyed struct {
	limit rate.Limit
	burst int
	clock func() time.Time

	mu        sync.Mutex
	limiters  map[string]*keyedEntry
	lastSweep time.Time
}

type KeyedOption func(*Keyed)

func WithKeyedClock(clock func() time.Time) KeyedOption {
	return func(k *Keyed) {
		k.clock = clock
	}
}

// NewKeyed returns a token-bucket limiter per key refilling at rps with the given burst.
// A key unused for long enough to refill its whole bucket is forgotten.
func NewKeyed(rps float64, burst int, opts ...KeyedOption) *Keyed {
	k := &Keyed{
		limit:    rate.Limit(rps),
		burst:    burst,
		clock:    time.Now,
		limiters: make(map[string]*keyedEntry),
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

func (k *Keyed) get(key string, now time.Time) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.sweep(now)
	e, ok := k.limiters[key]
	if !ok {
		e = &keyedEntry{limiter: rate.NewLimiter(k.limit, k.burst)}
		k.limiters[key] = e
	}
	e.lastSeen = now
	return e.limiter
}

// idleAfter is how long a bucket takes to refill from empty; zero means it never does.
func (k *Keyed) idleAfter() time.Duration {
	if k.limit == rate.Inf {
		return minIdle
	}
	if k.limit <= 0 {
		return 0
	}
	d := time.Duration(float64(k.burst) / float64(k.limit) * float64(time.Second))
	return max(d, minIdle)
}

func (k *Keyed) sweep(now time.Time) {
	idle := k.idleAfter()
	if idle == 0 || now.Sub(k.lastSweep) < idle {
		return
	}
	k.lastSweep = now
	for key, e := range k.limiters {
		if now.Sub(e.lastSeen) >= idle {
			delete(k.limiters, key)
		}
	}
}

// Len reports how many keys hold a bucket.
func (k *Keyed) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.limiters)
}

// Allow consumes a token for key without waiting.
func (k *Keyed) Allow(key string) bool {
	now := k.clock()
	return k.get(key, now).AllowN(now, 1)
}

// Wait blocks until key has a token or ctx is done.
func (k *Keyed) Wait(ctx context.Context, key string) error {
	return k.get(key, k.clock()).Wait(ctx)
}
