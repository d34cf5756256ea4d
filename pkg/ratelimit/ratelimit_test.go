package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(maxRequests int, window time.Duration) (*Limiter, *time.Time) {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l := &Limiter{
		buckets:     make(map[string]*bucket),
		maxRequests: maxRequests,
		window:      window,
		now:         func() time.Time { return current },
		stopCleanup: make(chan struct{}),
	}
	return l, &current
}

func TestLimiterAllowsUpToMax(t *testing.T) {
	l, _ := newTestLimiter(10, time.Minute)

	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow("alice"), "request %d should be admitted", i+1)
	}
	assert.False(t, l.Allow("alice"), "11th request should be rejected")
}

func TestLimiterAdmitsExactlyMaxUnderContention(t *testing.T) {
	l, _ := newTestLimiter(10, time.Minute)

	const callers = 50
	results := make(chan bool, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- l.Allow("alice")
		}()
	}
	wg.Wait()
	close(results)

	admitted := 0
	for ok := range results {
		if ok {
			admitted++
		}
	}
	assert.Equal(t, 10, admitted, "contending callers share one window")
}

func TestLimiterIsolatesPrincipals(t *testing.T) {
	l, _ := newTestLimiter(10, time.Minute)

	for i := 0; i < 11; i++ {
		l.Allow("alice")
	}
	assert.False(t, l.Allow("alice"))
	assert.True(t, l.Allow("bob"), "bob has his own bucket")
}

func TestLimiterResetsAfterWindow(t *testing.T) {
	l, clock := newTestLimiter(10, time.Minute)

	for i := 0; i < 11; i++ {
		l.Allow("alice")
	}
	assert.False(t, l.Allow("alice"))

	*clock = clock.Add(61 * time.Second)
	assert.True(t, l.Allow("alice"), "new window should admit again")
}

func TestLimiterRejectionsCountAgainstWindow(t *testing.T) {
	l, clock := newTestLimiter(10, time.Minute)

	for i := 0; i < 15; i++ {
		l.Allow("alice")
	}

	// Rejected calls do not extend the window, it still started at the
	// first request.
	*clock = clock.Add(60 * time.Second)
	assert.True(t, l.Allow("alice"))
}

func TestRetryAfterSeconds(t *testing.T) {
	l, clock := newTestLimiter(10, time.Minute)

	assert.Equal(t, 0, l.RetryAfterSeconds("alice"), "no bucket yet")

	l.Allow("alice")
	assert.Equal(t, 61, l.RetryAfterSeconds("alice"))

	*clock = clock.Add(45 * time.Second)
	assert.Equal(t, 16, l.RetryAfterSeconds("alice"))

	*clock = clock.Add(20 * time.Second)
	assert.Equal(t, 0, l.RetryAfterSeconds("alice"), "window elapsed")
}

func TestCleanupRemovesStaleBuckets(t *testing.T) {
	l, clock := newTestLimiter(10, time.Minute)

	l.Allow("alice")
	l.Allow("bob")

	*clock = clock.Add(2 * time.Minute)
	l.cleanup()

	l.mu.RLock()
	defer l.mu.RUnlock()
	assert.Empty(t, l.buckets)
}
