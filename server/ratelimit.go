package server

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LoginLimiter throttles login attempts per email address. Entries that
// have not been touched within the cleanup window are dropped so the map
// does not grow with every address ever tried.
type LoginLimiter struct {
	mu       sync.Mutex
	limiters map[string]*emailLimiter

	limit rate.Limit
	burst int

	stop chan struct{}
	once sync.Once
}

type emailLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

const limiterCleanupInterval = 5 * time.Minute

// NewLoginLimiter allows perMinute attempts per email with the given
// burst. A background sweep evicts idle entries until Stop is called.
func NewLoginLimiter(perMinute float64, burst int) *LoginLimiter {
	l := &LoginLimiter{
		limiters: map[string]*emailLimiter{},
		limit:    rate.Limit(perMinute / 60.0),
		burst:    burst,
		stop:     make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Allow reports whether another attempt for email is within the limit.
func (l *LoginLimiter) Allow(email string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.limiters[email]
	if !ok {
		entry = &emailLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[email] = entry
	}
	entry.lastAccess = time.Now()
	return entry.limiter.Allow()
}

// Stop ends the background sweep.
func (l *LoginLimiter) Stop() {
	l.once.Do(func() {
		close(l.stop)
	})
}

func (l *LoginLimiter) cleanupLoop() {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case now := <-ticker.C:
			l.mu.Lock()
			for email, entry := range l.limiters {
				if now.Sub(entry.lastAccess) > limiterCleanupInterval {
					delete(l.limiters, email)
				}
			}
			l.mu.Unlock()
		}
	}
}
