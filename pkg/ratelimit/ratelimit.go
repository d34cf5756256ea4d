// Package ratelimit provides a per-principal fixed-window request limiter.
//
// Each authenticated username gets its own bucket. The first request in a
// window stamps the window start; further requests increment the counter
// until the window elapses, at which point the bucket resets. A background
// goroutine sweeps stale buckets so long-running servers do not leak memory.
//
// The limiter is in-memory on purpose: the server deploys as a single
// instance, and hitting SQLite on every request would add pointless I/O.
// It lives in its own leaf package so middleware and handlers can both
// import it without cycles.
package ratelimit

import (
	"sync"
	"time"
)

// bucket holds the request counter and window start for one principal.
type bucket struct {
	count       int
	windowStart time.Time
}

// Limiter is a fixed-window rate limiter keyed by principal name.
type Limiter struct {
	mu          sync.RWMutex
	buckets     map[string]*bucket
	maxRequests int
	window      time.Duration
	now         func() time.Time
	stopCleanup chan struct{}
}

// New creates a Limiter allowing maxRequests per window and starts the
// background cleanup goroutine. Call Stop to terminate it.
func New(maxRequests int, window time.Duration) *Limiter {
	l := &Limiter{
		buckets:     make(map[string]*bucket),
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}

	go l.cleanupLoop()

	return l
}

// Allow reports whether the principal may make another request in the
// current window. Every call counts against the limit, allowed or not.
func (l *Limiter) Allow(principal string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, exists := l.buckets[principal]
	if !exists {
		l.buckets[principal] = &bucket{count: 1, windowStart: now}
		return true
	}

	if now.Sub(b.windowStart) >= l.window {
		// Window elapsed, start a fresh one.
		b.count = 1
		b.windowStart = now
		return true
	}

	b.count++
	return b.count <= l.maxRequests
}

// RetryAfterSeconds returns how long the principal must wait before the
// current window resets, rounded up. Used for the Retry-After header.
func (l *Limiter) RetryAfterSeconds(principal string) int {
	now := l.now()

	l.mu.RLock()
	defer l.mu.RUnlock()

	b, exists := l.buckets[principal]
	if !exists {
		return 0
	}

	remaining := l.window - now.Sub(b.windowStart)
	if remaining <= 0 {
		return 0
	}
	return int(remaining.Seconds()) + 1
}

// Stop terminates the background cleanup goroutine.
func (l *Limiter) Stop() {
	close(l.stopCleanup)
}

// cleanupLoop sweeps expired buckets once a minute.
func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stopCleanup:
			return
		}
	}
}

func (l *Limiter) cleanup() {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for principal, b := range l.buckets {
		if now.Sub(b.windowStart) >= l.window {
			delete(l.buckets, principal)
		}
	}
}
