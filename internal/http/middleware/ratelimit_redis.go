package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"gesture_rps/internal/logger"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

// KeyFunc picks the identity a request is counted against.
type KeyFunc func(c *gin.Context) string

// ByClientIP counts requests per remote address.
func ByClientIP(c *gin.Context) string {
	return c.ClientIP()
}

// ByFeedSubject counts requests per authenticated feed, falling back to the
// client IP when auth is off. Keys never collide with ByClientIP.
func ByFeedSubject(c *gin.Context) string {
	if s := c.GetString(FeedSubjectKey); s != "" {
		return "feed:" + s
	}
	return "feed-ip:" + c.ClientIP()
}

// RedisRateLimiter is a fixed-window limiter using INCR/EXPIRE.
// A nil limiter or nil client lets everything through.
type RedisRateLimiter struct {
	client *redis.Client
	prefix string
}

func NewRedisRateLimiter(client *redis.Client, prefix string) *RedisRateLimiter {
	if prefix == "" {
		prefix = "rl"
	}
	return &RedisRateLimiter{client: client, prefix: prefix}
}

// PingRedis checks addr and returns a client, or nil if redis is not
// configured or unreachable.
func PingRedis(ctx context.Context, addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, rate limiting disabled", "addr", addr, "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// Limit allows maxRequests per window per key.
// key format: <prefix>:<window_seconds>:<identity>
func (l *RedisRateLimiter) Limit(maxRequests int, window time.Duration, keyFn KeyFunc) gin.HandlerFunc {
	if keyFn == nil {
		keyFn = ByClientIP
	}

	return func(c *gin.Context) {
		if l == nil || l.client == nil {
			c.Next()
			return
		}

		key := l.prefix + ":" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + keyFn(c)
		ctx := c.Request.Context()

		val, err := l.client.Incr(ctx, key).Result()
		if err != nil {
			// fail-open
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}

		if val == 1 {
			l.client.Expire(ctx, key, window)
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(maxRequests)-val), 10))

		if val > int64(maxRequests) {
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": int(window.Seconds()),
			})
			return
		}

		RLRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
	}
}
