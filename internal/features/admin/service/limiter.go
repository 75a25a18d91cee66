package service

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	attemptRate  = rate.Limit(1.0 / 60) // one retry per minute
	attemptBurst = 3
)

type userLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// attemptLimiter is a per-user token bucket guarding access-code attempts,
// with automatic stale-entry cleanup.
type attemptLimiter struct {
	mu       sync.Mutex
	limiters map[string]*userLimiter
}

func newAttemptLimiter() *attemptLimiter {
	l := &attemptLimiter{limiters: make(map[string]*userLimiter)}
	go l.cleanup()
	return l
}

func (l *attemptLimiter) allow(userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.limiters[userID]
	if !ok {
		v = &userLimiter{limiter: rate.NewLimiter(attemptRate, attemptBurst)}
		l.limiters[userID] = v
	}
	v.lastSeen = time.Now()
	return v.limiter.Allow()
}

func (l *attemptLimiter) reset(userID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.limiters, userID)
}

// cleanup removes stale entries every 5 minutes.
func (l *attemptLimiter) cleanup() {
	for {
		time.Sleep(5 * time.Minute)
		l.mu.Lock()
		for id, v := range l.limiters {
			if time.Since(v.lastSeen) > 10*time.Minute {
				delete(l.limiters, id)
			}
		}
		l.mu.Unlock()
	}
}
