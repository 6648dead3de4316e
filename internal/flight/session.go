package flight

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"corptravel/pkg/logger"
)

// attempt is one submitted search. Only the session's active attempt may write results.
type attempt struct {
	id      int64
	request SearchRequest
	cancel  context.CancelFunc
}

// Session is the search state machine of a single client:
//
//	Idle --submit--> Searching --success--> Success
//	Searching --failure--> Error
//	Success|Error --submit--> Searching
//	Success|Error --clear--> Idle
//
// At most one attempt is active. Submitting again cancels the previous attempt and a
// superseded completion is dropped without touching state.
type Session struct {
	svc      *Service
	clientID string
	logger   logger.Logger

	mu       sync.Mutex
	state    SessionState
	active   *attempt
	debounce *time.Timer
}

func newSession(svc *Service, clientID string, prefs Preferences) *Session {
	return &Session{
		svc:      svc,
		clientID: clientID,
		logger:   svc.logger.With(logger.Field{Key: "client_id", Value: clientID}),
		state: SessionState{
			Phase:          PhaseIdle,
			Filters:        prefs.Filters,
			SortKey:        prefs.SortKey,
			RecentSearches: append([]SearchRequest(nil), prefs.RecentSearches...),
		},
	}
}

func (s *Session) ClientID() string {
	return s.clientID
}

// Search runs one submission to completion. It returns (nil, nil) when the attempt
// was superseded by a newer submission or a clear before it finished.
func (s *Session) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	att, attemptCtx := s.begin(ctx, req)
	defer att.cancel()

	log := s.logger.With(logger.Field{Key: "attempt_id", Value: att.id})
	log.Info("search submitted",
		logger.Field{Key: "origin", Value: req.Origin},
		logger.Field{Key: "destination", Value: req.Destination},
		logger.Field{Key: "departure_date", Value: req.DepartureDate},
	)

	if v := Validate(req, s.svc.now()); !v.Valid {
		log.Info("search rejected by validation",
			logger.Field{Key: "rule", Value: v.Rule},
			logger.Field{Key: "field", Value: v.Field},
		)
		return s.fail(att, validationError(v))
	}

	if !s.svc.limiter.TryAcquire(s.clientID) {
		log.Warn("search rate limited")
		return s.fail(att, NewAppError(ErrorCodeRateLimited, "local search limit reached", nil))
	}

	if cached, ok := s.svc.cache.Get(attemptCtx, req); ok {
		log.Info("cache hit", logger.Field{Key: "cache_key", Value: cached.RequestFingerprint})
		cached.FromCache = true
		return s.succeed(att, cached)
	}

	started := s.svc.now()
	result, err := s.svc.gateway.SearchFlights(attemptCtx, req)
	if err != nil {
		if !s.isActive(att) {
			log.Debug("superseded search failed", logger.Err(err))
			return nil, nil
		}
		if CodeOf(err) != ErrorCodeNoOffers {
			log.Error("search failed", logger.Field{Key: "code", Value: string(CodeOf(err))}, logger.Err(err))
			return s.fail(att, asAppError(err))
		}
		log.Info("provider returned no offers")
		result = &SearchResult{
			RequestFingerprint: Fingerprint(req),
			Flights:            []Flight{},
			FetchedAt:          s.svc.now(),
		}
	}

	if !s.isActive(att) {
		log.Debug("discarding superseded search result")
		return nil, nil
	}

	result.RequestFingerprint = Fingerprint(req)
	result.TotalCount = len(result.Flights)
	result.FromCache = false

	if err := s.svc.cache.Set(attemptCtx, req, result, KindFlightSearch); err != nil {
		log.Error("failed to cache search result", logger.Err(err))
	}

	log.Info("search completed",
		logger.Field{Key: "offers", Value: result.TotalCount},
		logger.Field{Key: "elapsed", Value: s.svc.now().Sub(started)},
	)
	return s.succeed(att, result)
}

// SubmitDebounced schedules a search after the debounce window. A later call within
// the window replaces the pending one.
func (s *Session) SubmitDebounced(req SearchRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.debounce != nil {
		s.debounce.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(s.svc.debounce, func() {
		s.mu.Lock()
		// a newer call replaced this timer after it had already fired
		if s.debounce != timer {
			s.mu.Unlock()
			return
		}
		s.debounce = nil
		s.mu.Unlock()

		if _, err := s.Search(context.Background(), req); err != nil {
			s.logger.Debug("debounced search failed", logger.Err(err))
		}
	})
	s.debounce = timer
}

// UpdateFilters applies a partial filter change and returns the new visible list.
func (s *Session) UpdateFilters(patch FilterPatch) []Flight {
	s.mu.Lock()
	s.state.Filters = patch.Apply(s.state.Filters)
	visible := s.visibleLocked()
	prefs := s.preferencesLocked()
	s.mu.Unlock()

	s.svc.savePreferences(context.Background(), s.clientID, prefs)
	return visible
}

func (s *Session) UpdateSorting(key SortKey) ([]Flight, error) {
	if !key.Valid() {
		return nil, NewAppError(ErrorCodeValidation, "unknown sort key "+string(key), nil)
	}

	s.mu.Lock()
	s.state.SortKey = key
	visible := s.visibleLocked()
	prefs := s.preferencesLocked()
	s.mu.Unlock()

	s.svc.savePreferences(context.Background(), s.clientID, prefs)
	return visible, nil
}

// ClearSearch cancels any in-flight or pending search and returns to Idle.
// Recent searches and the sort key are kept.
func (s *Session) ClearSearch() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.state.Phase = PhaseIdle
	s.state.ActiveRequest = nil
	s.state.Results = nil
	s.state.Error = nil
	s.state.Filters = FilterState{}
}

func (s *Session) Snapshot() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	st.RecentSearches = append([]SearchRequest(nil), s.state.RecentSearches...)
	st.Filters.Airlines = append([]string(nil), s.state.Filters.Airlines...)
	return st
}

// Visible is sort(filter(results, filters), sortKey), computed on every call.
func (s *Session) Visible() []Flight {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visibleLocked()
}

func (s *Session) visibleLocked() []Flight {
	if s.state.Results == nil {
		return []Flight{}
	}
	return Sort(Filter(s.state.Results.Flights, s.state.Filters), s.state.SortKey)
}

// begin makes req the active attempt. The attempt outlives the caller's context: only a
// newer submission, a clear or shutdown cancels it, so an aborted request never ends a search.
func (s *Session) begin(ctx context.Context, req SearchRequest) (*attempt, context.Context) {
	attemptCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	att := &attempt{
		id:      s.svc.ids.GenerateID(),
		request: req,
		cancel:  cancel,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		s.logger.Debug("cancelling superseded search", logger.Field{Key: "attempt_id", Value: s.active.id})
		s.active.cancel()
	}
	s.active = att
	s.state.Phase = PhaseSearching
	s.state.ActiveRequest = &att.request
	s.state.Error = nil
	return att, attemptCtx
}

func (s *Session) isActive(att *attempt) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active == att
}

func (s *Session) succeed(att *attempt, result *SearchResult) (*SearchResult, error) {
	s.mu.Lock()
	if s.active != att {
		s.mu.Unlock()
		return nil, nil
	}

	now := s.svc.now()
	s.active = nil
	s.state.Phase = PhaseSuccess
	s.state.Results = result
	s.state.Filters = FilterState{}
	s.state.Error = nil
	s.state.LastSearchedAt = &now
	s.state.RecentSearches = pushRecent(s.state.RecentSearches, att.request, s.svc.recentLimit)
	prefs := s.preferencesLocked()
	s.mu.Unlock()

	s.svc.savePreferences(context.Background(), s.clientID, prefs)
	return result, nil
}

// fail keeps the previous results so the user can still see them.
func (s *Session) fail(att *attempt, appErr *AppError) (*SearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != att {
		return nil, nil
	}
	s.active = nil
	s.state.Phase = PhaseError
	s.state.Error = appErr
	return nil, appErr
}

func (s *Session) preferencesLocked() Preferences {
	return Preferences{
		RecentSearches: append([]SearchRequest(nil), s.state.RecentSearches...),
		Filters:        s.state.Filters,
		SortKey:        s.state.SortKey,
	}
}

func (s *Session) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Session) stopLocked() {
	if s.debounce != nil {
		s.debounce.Stop()
		s.debounce = nil
	}
	if s.active != nil {
		s.active.cancel()
		s.active = nil
	}
}

// pushRecent puts req first, dropping any older entry for the same route and day.
func pushRecent(recent []SearchRequest, req SearchRequest, limit int) []SearchRequest {
	out := make([]SearchRequest, 0, limit)
	out = append(out, req)
	for _, r := range recent {
		if len(out) == limit {
			break
		}
		if sameTrip(r, req) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func sameTrip(a, b SearchRequest) bool {
	return strings.EqualFold(strings.TrimSpace(a.Origin), strings.TrimSpace(b.Origin)) &&
		strings.EqualFold(strings.TrimSpace(a.Destination), strings.TrimSpace(b.Destination)) &&
		isoDate(a.DepartureDate) == isoDate(b.DepartureDate)
}

func asAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewAppError(ErrorCodeInternalFailure, err.Error(), err)
}
