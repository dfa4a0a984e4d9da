package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"chatonline-world/backend/pkg/errors"
	"chatonline-world/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter grants each client address a fixed quota per window.
// A window opens with the client's first request; its quota does not
// refill until the window ends.
type RateLimiter struct {
	quota  int
	window time.Duration
	log    *logger.Logger
	now    func() time.Time

	mu      sync.Mutex
	clients map[string]*quotaWindow
	swept   time.Time
}

type quotaWindow struct {
	opened time.Time
	// a zero-rate limiter only spends its burst, which is the quota
	tokens *rate.Limiter
}

// NewRateLimiter allows quota requests per window for each client IP.
// quota is clamped to at least 1.
func NewRateLimiter(log *logger.Logger, quota int, window time.Duration) *RateLimiter {
	if quota < 1 {
		quota = 1
	}
	return &RateLimiter{
		quota:   quota,
		window:  window,
		log:     log,
		now:     time.Now,
		clients: make(map[string]*quotaWindow),
	}
}

// PerMinute allows quota requests per client per minute
func PerMinute(log *logger.Logger, quota int) *RateLimiter {
	return NewRateLimiter(log, quota, time.Minute)
}

// allow spends one request of key's quota, or reports how long until the
// window resets.
func (r *RateLimiter) allow(key string) (bool, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	w, ok := r.clients[key]
	if !ok || now.Sub(w.opened) >= r.window {
		if now.Sub(r.swept) >= r.window {
			r.forgetIdle(now)
			r.swept = now
		}
		w = &quotaWindow{opened: now, tokens: rate.NewLimiter(0, r.quota)}
		r.clients[key] = w
	}

	if w.tokens.AllowN(now, 1) {
		return true, 0
	}
	return false, w.opened.Add(r.window).Sub(now)
}

// forgetIdle drops clients whose window has ended. Caller holds mu.
func (r *RateLimiter) forgetIdle(now time.Time) {
	for k, w := range r.clients {
		if now.Sub(w.opened) >= r.window {
			delete(r.clients, k)
		}
	}
}

// Middleware answers 429 with Retry-After once a client's quota is spent
func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		ok, wait := r.allow(key)
		if ok {
			c.Next()
			return
		}

		r.log.Warn("Rate limit exceeded",
			"client", key,
			"path", c.Request.URL.Path,
			"retry_after", wait.String(),
		)
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		c.Header("X-RateLimit-Limit", strconv.Itoa(r.quota))
		c.Error(errors.NewTooManyRequestsError("RATE_LIMIT_EXCEEDED", "Too many requests. Please try again later."))
		c.Abort()
	}
}
