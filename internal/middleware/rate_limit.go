package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter applies a token bucket per client IP.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	ttl      time.Duration
	now      func() time.Time
}

// NewRateLimiter allows rps sustained requests per client with bursts of
// burst. Clients idle for longer than ttl are forgotten by Sweep.
func NewRateLimiter(rps float64, burst int, ttl time.Duration) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(rps),
		burst:    burst,
		ttl:      ttl,
		now:      time.Now,
	}
}

// reserve takes a token for key and returns how long the caller must wait
// if none was available.
func (l *RateLimiter) reserve(key string) time.Duration {
	now := l.now()

	l.mu.Lock()
	v, exists := l.visitors[key]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	l.mu.Unlock()

	r := v.limiter.ReserveN(now, 1)
	if !r.OK() {
		return time.Duration(math.MaxInt64)
	}
	delay := r.DelayFrom(now)
	if delay > 0 {
		r.CancelAt(now)
	}
	return delay
}

// Middleware rejects requests over the limit with 429 and a Retry-After
// header.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		delay := l.reserve(ip)
		if delay <= 0 {
			c.Next()
			return
		}

		if log := GetLogger(c); log != nil {
			log.Warn("Rate limit exceeded", map[string]interface{}{
				"ip":   ip,
				"path": c.Request.URL.Path,
			})
		}

		retryAfter := int64(math.Ceil(delay.Seconds()))
		if delay == time.Duration(math.MaxInt64) || retryAfter < 1 {
			retryAfter = 1
		}
		c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
		abortWithError(c, http.StatusTooManyRequests, CodeTooManyRequests, "Too many requests, please slow down")
	}
}

// Sweep forgets clients idle for longer than the ttl and returns how many
// were removed. It has the signature of a background task.
func (l *RateLimiter) Sweep(context.Context) (int, error) {
	cutoff := l.now().Add(-l.ttl)

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, key)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of tracked clients.
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}
