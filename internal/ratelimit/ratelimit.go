// Package ratelimit gates how often a user may trigger a live-fetch cycle.
// One window covers all source kinds together, so switching targets does not
// bypass the limit. State is process-local; a restart resets the windows.
package ratelimit

import (
	"sync"
	"time"
)

type Limiter struct {
	mu       sync.Mutex
	cooldown time.Duration
	last     map[int64]time.Time

	now func() time.Time // overridable in tests
}

func New(cooldown time.Duration) *Limiter {
	if cooldown <= 0 {
		cooldown = 60 * time.Second
	}
	return &Limiter{
		cooldown: cooldown,
		last:     make(map[int64]time.Time),
		now:      time.Now,
	}
}

// TryAcquire stamps the user's window and returns true exactly once per
// cooldown window; otherwise it returns false with no side effects. The
// check-and-set is atomic: of N concurrent calls for one user, one wins.
func (l *Limiter) TryAcquire(userID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if last, ok := l.last[userID]; ok && now.Sub(last) < l.cooldown {
		return false
	}
	l.last[userID] = now
	return true
}

// Remaining reports how long until the user may fetch again. Zero means the
// next TryAcquire will succeed.
func (l *Limiter) Remaining(userID int64) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	last, ok := l.last[userID]
	if !ok {
		return 0
	}
	rem := l.cooldown - l.now().Sub(last)
	if rem < 0 {
		return 0
	}
	return rem
}
