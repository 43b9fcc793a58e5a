package moderation

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// RateLimiter gates commands per user with a fixed cooldown.
type RateLimiter struct {
	mu       sync.Mutex
	clock    clockwork.Clock
	cooldown time.Duration
	last     map[int64]time.Time
}

// NewRateLimiter creates a limiter. A nil clock uses the real one.
func NewRateLimiter(clock clockwork.Clock, cooldown time.Duration) *RateLimiter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &RateLimiter{
		clock:    clock,
		cooldown: cooldown,
		last:     make(map[int64]time.Time),
	}
}

// Allow reports whether userID may run a command now and, if so, starts a new
// cooldown window. Denied calls leave the window untouched.
func (l *RateLimiter) Allow(userID int64) bool {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if last, ok := l.last[userID]; ok && now.Sub(last) < l.cooldown {
		rateLimitRejections.Inc()
		return false
	}
	l.last[userID] = now
	return true
}

// Sweep drops entries whose window closed more than StaleCooldownMultiple
// cooldowns ago and returns how many were removed.
func (l *RateLimiter) Sweep() int {
	cutoff := l.clock.Now().Add(-StaleCooldownMultiple * l.cooldown)

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for id, last := range l.last {
		if last.Before(cutoff) {
			delete(l.last, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked users.
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.last)
}
