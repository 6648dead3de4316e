// Package ratelimit bounds how often a caller may do something.
//
// SlidingWindow is the per-client search budget. Keyed wraps golang.org/x/time/rate token
// buckets for request damping at the HTTP edge and pacing toward the upstream provider.
package ratelimit

import (
	"sync"
	"time"
)

type windowState struct {
	start time.Time
	count int
}

// SlidingWindow allows at most limit acquisitions per client inside a window that restarts
// once it has been open longer than the window size. State lives in memory only.
type SlidingWindow struct {
	limit  int
	window time.Duration
	clock  func() time.Time

	mu        sync.Mutex
	clients   map[string]*windowState
	lastSweep time.Time
}

type WindowOption func(*SlidingWindow)

func WithWindowClock(clock func() time.Time) WindowOption {
	return func(w *SlidingWindow) {
		w.clock = clock
	}
}

func NewSlidingWindow(limit int, window time.Duration, opts ...WindowOption) *SlidingWindow {
	w := &SlidingWindow{
		limit:   limit,
		window:  window,
		clock:   time.Now,
		clients: make(map[string]*windowState),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// TryAcquire reports whether clientID may proceed. A rejected call leaves the window untouched.
func (w *SlidingWindow) TryAcquire(clientID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.clock()
	w.sweep(now)
	st, ok := w.clients[clientID]
	if !ok {
		st = &windowState{start: now}
		w.clients[clientID] = st
	}

	if now.Sub(st.start) > w.window {
		st.count = 0
		st.start = now
	}

	if st.count >= w.limit {
		return false
	}
	st.count++
	return true
}

// Remaining reports how many acquisitions clientID has left in its current window.
func (w *SlidingWindow) Remaining(clientID string) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	st, ok := w.clients[clientID]
	if !ok || w.clock().Sub(st.start) > w.window {
		return w.limit
	}
	return w.limit - st.count
}

// Len reports how many clients hold window state.
func (w *SlidingWindow) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.clients)
}

// sweep drops clients whose window has lapsed, at most once per window. A lapsed window
// restarts on the next acquisition anyway, so dropping it changes no answer.
func (w *SlidingWindow) sweep(now time.Time) {
	if now.Sub(w.lastSweep) <= w.window {
		return
	}
	w.lastSweep = now
	for id, st := range w.clients {
		if now.Sub(st.start) > w.window {
			delete(w.clients, id)
		}
	}
}
