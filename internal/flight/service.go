package flight

import (
	"context"
	"strings"
	"sync"
	"time"

	"corptravel/pkg/idgen"
	"corptravel/pkg/logger"

	"github.com/jellydator/ttlcache/v3"
)

const (
	defaultDebounce    = 300 * time.Millisecond
	defaultRecentLimit = 5
	airportsRefName    = "airports"
	airlinesRefName    = "airlines"
	prefsTimeout       = 2 * time.Second
	defaultSessionIdle = 30 * time.Minute
)

// Gateway is the only way out to the offer provider. Implementations make a single
// attempt per call and report failures as *AppError.
type Gateway interface {
	SearchFlights(ctx context.Context, req SearchRequest) (*SearchResult, error)
	GetOffer(ctx context.Context, offerID string) (*Flight, error)
	GetAirports(ctx context.Context, query string) ([]Airport, error)
	GetAirlines(ctx context.Context) ([]Airline, error)
}

type Limiter interface {
	TryAcquire(clientID string) bool
}

// PreferenceStore persists the client-local part of a session.
type PreferenceStore interface {
	Load(ctx context.Context, clientID string) (Preferences, error)
	Save(ctx context.Context, clientID string, prefs Preferences) error
}

type Service struct {
	gateway Gateway
	cache   *ResultCache
	limiter Limiter
	prefs   PreferenceStore
	ids     idgen.Generator
	logger  logger.Logger

	now         func() time.Time
	debounce    time.Duration
	recentLimit int
	sessionIdle time.Duration

	// mu serialises session creation; sessions expire after sessionIdle without use.
	mu       sync.Mutex
	sessions *ttlcache.Cache[string, *Session]
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithDebounce(d time.Duration) Option {
	return func(s *Service) { s.debounce = d }
}

func WithRecentLimit(n int) Option {
	return func(s *Service) { s.recentLimit = n }
}

// WithSessionIdleTTL sets how long a session survives without a request before it is
// stopped and dropped.
func WithSessionIdleTTL(d time.Duration) Option {
	return func(s *Service) { s.sessionIdle = d }
}

func NewService(gateway Gateway, resultCache *ResultCache, limiter Limiter, prefs PreferenceStore,
	ids idgen.Generator, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		gateway:     gateway,
		cache:       resultCache,
		limiter:     limiter,
		prefs:       prefs,
		ids:         ids,
		logger:      log,
		now:         time.Now,
		debounce:    defaultDebounce,
		recentLimit: defaultRecentLimit,
		sessionIdle: defaultSessionIdle,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.sessions = ttlcache.New[string, *Session](ttlcache.WithTTL[string, *Session](s.sessionIdle))
	s.sessions.OnEviction(func(_ context.Context, reason ttlcache.EvictionReason, item *ttlcache.Item[string, *Session]) {
		item.Value().stop()
		if reason == ttlcache.EvictionReasonExpired {
			s.logger.Debug("idle session evicted", logger.Field{Key: "client_id", Value: item.Key()})
		}
	})
	return s
}

// Session returns the search session of clientID, creating it from the client's
// stored preferences on first use.
func (s *Service) Session(ctx context.Context, clientID string) *Session {
	s.mu.Lock()
	s.sessions.DeleteExpired()
	if item := s.sessions.Get(clientID); item != nil {
		s.mu.Unlock()
		return item.Value()
	}
	s.mu.Unlock()

	prefs := Preferences{SortKey: DefaultSortKey}
	if s.prefs != nil {
		loaded, err := s.prefs.Load(ctx, clientID)
		if err != nil {
			s.logger.Warn("failed to load preferences",
				logger.Field{Key: "client_id", Value: clientID}, logger.Err(err))
		} else {
			prefs = loaded
		}
	}
	if !prefs.SortKey.Valid() {
		prefs.SortKey = DefaultSortKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// another request may have opened it while preferences loaded
	if item := s.sessions.Get(clientID); item != nil {
		return item.Value()
	}
	sess := newSession(s, clientID, prefs)
	s.sessions.Set(clientID, sess, ttlcache.DefaultTTL)
	return sess
}

// SessionCount reports the sessions still live.
func (s *Service) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions.DeleteExpired()
	return s.sessions.Len()
}

func (s *Service) ClearCache(ctx context.Context) error {
	if err := s.cache.Clear(ctx); err != nil {
		s.logger.Error("failed to clear cache", logger.Err(err))
		return NewAppError(ErrorCodeInternalFailure, err.Error(), err)
	}
	s.logger.Info("cache cleared")
	return nil
}

func (s *Service) CacheStats(ctx context.Context) CacheStats {
	return s.cache.Stats(ctx)
}

// GetOffer fetches one offer, served from the short-lived offer cache when possible.
func (s *Service) GetOffer(ctx context.Context, offerID string) (*Flight, error) {
	offerID = strings.TrimSpace(offerID)
	if offerID == "" {
		return nil, NewAppError(ErrorCodeValidation, "offer id is required", nil)
	}

	if f, ok := s.cache.GetOffer(ctx, offerID); ok {
		return f, nil
	}

	f, err := s.gateway.GetOffer(ctx, offerID)
	if err != nil {
		s.logger.Warn("get offer failed",
			logger.Field{Key: "offer_id", Value: offerID}, logger.Err(err))
		return nil, err
	}
	if f.Expired(s.now()) {
		return nil, NewAppError(ErrorCodeOfferUnavailable, "offer expired", nil)
	}

	if err := s.cache.SetOffer(ctx, f); err != nil {
		s.logger.Error("failed to cache offer", logger.Field{Key: "offer_id", Value: offerID}, logger.Err(err))
	}
	return f, nil
}

// GetAirports looks up airports by free-text query; an empty query lists them all.
func (s *Service) GetAirports(ctx context.Context, query string) ([]Airport, error) {
	query = strings.TrimSpace(query)
	name := airportsRefName + ":" + query

	var airports []Airport
	if s.cache.GetReference(ctx, name, &airports) {
		return airports, nil
	}

	airports, err := s.gateway.GetAirports(ctx, query)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetReference(ctx, name, airports); err != nil {
		s.logger.Error("failed to cache airports", logger.Err(err))
	}
	return airports, nil
}

func (s *Service) GetAirlines(ctx context.Context) ([]Airline, error) {
	var airlines []Airline
	if s.cache.GetReference(ctx, airlinesRefName, &airlines) {
		return airlines, nil
	}

	airlines, err := s.gateway.GetAirlines(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetReference(ctx, airlinesRefName, airlines); err != nil {
		s.logger.Error("failed to cache airlines", logger.Err(err))
	}
	return airlines, nil
}

// Shutdown stops pending debounced submissions and cancels in-flight searches.
func (s *Service) Shutdown() {
	s.mu.Lock()
	items := s.sessions.Items()
	s.sessions.DeleteAll()
	s.mu.Unlock()

	for _, item := range items {
		item.Value().stop()
	}
}

func (s *Service) savePreferences(ctx context.Context, clientID string, prefs Preferences) {
	if s.prefs == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), prefsTimeout)
	defer cancel()

	if err := s.prefs.Save(ctx, clientID, prefs); err != nil {
		s.logger.Warn("failed to save preferences",
			logger.Field{Key: "client_id", Value: clientID}, logger.Err(err))
	}
}
