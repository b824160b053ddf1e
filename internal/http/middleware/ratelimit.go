package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
)

type window struct {
	start time.Time
	count int
}

// MemoryRateLimiter is the in-process fixed-window limiter used when redis
// is not configured.
type MemoryRateLimiter struct {
	mu      sync.Mutex
	clients map[string]*window
	clock   clockwork.Clock
}

func NewMemoryRateLimiter(clock clockwork.Clock) *MemoryRateLimiter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MemoryRateLimiter{clients: make(map[string]*window), clock: clock}
}

func (l *MemoryRateLimiter) allow(key string, maxRequests int, period time.Duration) bool {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.clients[key]
	if !ok || now.Sub(w.start) > period {
		l.clients[key] = &window{start: now, count: 1}
		return true
	}
	w.count++
	return w.count <= maxRequests
}

// Limit blocks keys that send more than maxRequests per period.
func (l *MemoryRateLimiter) Limit(maxRequests int, period time.Duration, keyFn KeyFunc) gin.HandlerFunc {
	if keyFn == nil {
		keyFn = ByClientIP
	}
	return func(c *gin.Context) {
		if !l.allow(keyFn(c), maxRequests, period) {
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		RLRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
	}
}
