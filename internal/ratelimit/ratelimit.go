package ratelimit

import (
	"sync"
	"time"
)

// ClientLimiter enforces a minimum delay between analysis submissions from
// the same client.
type ClientLimiter struct {
	mu       sync.Mutex
	lastCall map[string]time.Time // key: client address
	minDelay time.Duration
	now      func() time.Time
}

// NewClientLimiter creates a limiter that enforces minDelay between
// consecutive submissions from the same client. A zero minDelay allows
// everything.
func NewClientLimiter(minDelay time.Duration) *ClientLimiter {
	return &ClientLimiter{
		lastCall: make(map[string]time.Time),
		minDelay: minDelay,
		now:      time.Now,
	}
}

// Allow records a submission from client if enough time has passed since its
// previous one. Otherwise it reports false and how long the client must wait.
func (r *ClientLimiter) Allow(client string) (bool, time.Duration) {
	if r.minDelay <= 0 {
		return true, 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	last, ok := r.lastCall[client]
	if !ok {
		r.lastCall[client] = now
		return true, 0
	}

	elapsed := now.Sub(last)
	if elapsed >= r.minDelay {
		r.lastCall[client] = now
		return true, 0
	}
	return false, r.minDelay - elapsed
}

// Prune forgets clients whose last submission is older than minDelay and
// returns how many were removed. The maintenance loop calls it so the map
// does not grow with every visitor.
func (r *ClientLimiter) Prune() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.minDelay)
	removed := 0
	for client, last := range r.lastCall {
		if !last.After(cutoff) {
			delete(r.lastCall, client)
			removed++
		}
	}
	return removed
}

// Len returns the number of clients currently tracked.
func (r *ClientLimiter) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lastCall)
}
