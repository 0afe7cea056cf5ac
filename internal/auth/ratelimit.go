package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LoginLimiter throttles login attempts per IP+email pair with token
// buckets. Buckets that go quiet are dropped by a background cleanup loop.
type LoginLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*loginBucket
	limit    rate.Limit
	burst    int
	stopOnce sync.Once
	stopCh   chan struct{}
}

type loginBucket struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

const limiterCleanupInterval = 5 * time.Minute

// NewLoginLimiter creates a limiter allowing maxAttempts per window for each
// IP+email pair.
func NewLoginLimiter(maxAttempts int, window time.Duration) *LoginLimiter {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if window <= 0 {
		window = 15 * time.Minute
	}

	l := &LoginLimiter{
		buckets: make(map[string]*loginBucket),
		limit:   rate.Limit(float64(maxAttempts) / window.Seconds()),
		burst:   maxAttempts,
		stopCh:  make(chan struct{}),
	}

	go l.cleanupLoop()

	return l
}

// Stop stops the background cleanup goroutine.
func (l *LoginLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

// Allow reports whether another attempt is permitted for this IP+email pair.
func (l *LoginLimiter) Allow(ip, email string) bool {
	key := ip + ":" + email

	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = &loginBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.lastAccess = time.Now()
	l.mu.Unlock()

	return b.limiter.Allow()
}

// RetryAfter estimates how long until one attempt is available again.
func (l *LoginLimiter) RetryAfter() time.Duration {
	return time.Duration(float64(time.Second) / float64(l.limit))
}

func (l *LoginLimiter) cleanupLoop() {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stopCh:
			return
		}
	}
}

func (l *LoginLimiter) cleanup() {
	ttl := 2 * limiterCleanupInterval
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, b := range l.buckets {
		if now.Sub(b.lastAccess) > ttl {
			delete(l.buckets, key)
		}
	}
}
