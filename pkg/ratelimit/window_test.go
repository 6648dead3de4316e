package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stepClock struct {
	now time.Time
}

func (c *stepClock) Now() time.Time { return c.now }

func TestSlidingWindow_RejectsOverLimit(t *testing.T) {
	clock := &stepClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	w := NewSlidingWindow(3, time.Minute, WithWindowClock(clock.Now))

	assert.True(t, w.TryAcquire("alice"))
	assert.True(t, w.TryAcquire("alice"))
	assert.True(t, w.TryAcquire("alice"))
	assert.False(t, w.TryAcquire("alice"))
	assert.Equal(t, 0, w.Remaining("alice"))
}

func TestSlidingWindow_ClientsAreIndependent(t *testing.T) {
	w := NewSlidingWindow(1, time.Minute)

	assert.True(t, w.TryAcquire("alice"))
	assert.False(t, w.TryAcquire("alice"))
	assert.True(t, w.TryAcquire("bob"))
}

func TestSlidingWindow_ResetsAfterWindow(t *testing.T) {
	clock := &stepClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	w := NewSlidingWindow(2, time.Minute, WithWindowClock(clock.Now))

	assert.True(t, w.TryAcquire("alice"))
	assert.True(t, w.TryAcquire("alice"))

	// exactly one window later is still inside the window
	clock.now = clock.now.Add(time.Minute)
	assert.False(t, w.TryAcquire("alice"))

	clock.now = clock.now.Add(time.Millisecond)
	assert.True(t, w.TryAcquire("alice"))
	assert.Equal(t, 1, w.Remaining("alice"))
}

func TestSlidingWindow_RejectionDoesNotExtendWindow(t *testing.T) {
	clock := &stepClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	w := NewSlidingWindow(1, time.Minute, WithWindowClock(clock.Now))

	assert.True(t, w.TryAcquire("alice"))
	for i := 0; i < 5; i++ {
		clock.now = clock.now.Add(10 * time.Second)
		assert.False(t, w.TryAcquire("alice"))
	}

	clock.now = clock.now.Add(11 * time.Second)
	assert.True(t, w.TryAcquire("alice"))
}

func TestSlidingWindow_LapsedClientsArePruned(t *testing.T) {
	clock := &stepClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	w := NewSlidingWindow(2, time.Minute, WithWindowClock(clock.Now))

	for _, id := range []string{"alice", "bob", "carol"} {
		assert.True(t, w.TryAcquire(id))
	}
	assert.Equal(t, 3, w.Len())

	clock.now = clock.now.Add(30 * time.Second)
	assert.True(t, w.TryAcquire("alice"))
	assert.Equal(t, 3, w.Len())

	clock.now = clock.now.Add(61 * time.Second)
	assert.True(t, w.TryAcquire("dave"))
	assert.Equal(t, 1, w.Len())
	assert.Equal(t, 2, w.Remaining("alice"))
}
