package middleware

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/smallbiznis/jobboard/internal/http/response"
)

// WindowCounter counts hits per key in a fixed window shared across replicas.
type WindowCounter interface {
	Hit(ctx context.Context, key string, window time.Duration) (count int64, resetIn time.Duration, err error)
}

// RateLimiter enforces per-client throttling. With a WindowCounter it uses a
// shared fixed window; otherwise it keeps a token bucket per client in memory.
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	rpm     int
	window  time.Duration
	mu      sync.Mutex
	clients map[string]*clientLimiter

	counter WindowCounter
	logger  *zap.Logger
	onLimit func(route string)
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter for the provided requests-per-minute
// budget. A non-positive budget disables limiting and returns nil.
func NewRateLimiter(requestsPerMinute int, counter WindowCounter, logger *zap.Logger) *RateLimiter {
	if requestsPerMinute <= 0 {
		return nil
	}
	if logger == nil {
		logger = zap.L()
	}
	burst := requestsPerMinute / 10
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limit:   rate.Limit(float64(requestsPerMinute) / 60.0),
		burst:   burst,
		rpm:     requestsPerMinute,
		window:  5 * time.Minute,
		clients: make(map[string]*clientLimiter),
		counter: counter,
		logger:  logger,
	}
}

// OnLimit registers a callback invoked for every rejected request.
func (r *RateLimiter) OnLimit(fn func(route string)) {
	if r != nil {
		r.onLimit = fn
	}
}

// Handler returns the gin middleware enforcing throttling behaviour.
func (r *RateLimiter) Handler() gin.HandlerFunc {
	if r == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		if !r.allow(c) {
			if r.onLimit != nil {
				r.onLimit(c.FullPath())
			}
			response.AbortWith(c, response.KindRateLimited, "too many requests, please slow down")
			return
		}
		c.Next()
	}
}

func (r *RateLimiter) allow(c *gin.Context) bool {
	key := c.ClientIP()
	if r.counter == nil {
		return r.getLimiter(key).Allow()
	}

	count, resetIn, err := r.counter.Hit(c.Request.Context(), key, time.Minute)
	if err != nil {
		// fail open
		r.logger.Warn("rate limit counter unavailable", zap.Error(err))
		return r.getLimiter(key).Allow()
	}
	remaining := int64(r.rpm) - count
	if remaining < 0 {
		remaining = 0
	}
	header := c.Writer.Header()
	header.Set("X-RateLimit-Limit", strconv.Itoa(r.rpm))
	header.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
	if count > int64(r.rpm) {
		header.Set("Retry-After", strconv.Itoa(int(resetIn.Round(time.Second).Seconds())))
		return false
	}
	return true
}

func (r *RateLimiter) getLimiter(key string) *rate.Limiter {
	now := time.Now()
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.clients[key]; ok {
		entry.lastSeen = now
		return entry.limiter
	}

	limiter := rate.NewLimiter(r.limit, r.burst)
	r.clients[key] = &clientLimiter{limiter: limiter, lastSeen: now}
	r.cleanupLocked(now)
	return limiter
}

func (r *RateLimiter) cleanupLocked(now time.Time) {
	for key, entry := range r.clients {
		if now.Sub(entry.lastSeen) > r.window {
			delete(r.clients, key)
		}
	}
}
