package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"mahberhub/internal/cache"
	"mahberhub/internal/contextutils"
	"mahberhub/internal/response"

	"go.uber.org/zap"
)

// RateLimiter throttles the public auth endpoints with cache-backed
// fixed-window counters keyed by client IP. Counters live in the shared
// cache so the limits hold across instances. A broken cache lets the
// request through rather than locking every caller out.
type RateLimiter struct {
	cache  cache.Cache
	writer *response.Writer
	logger *zap.Logger
}

// NewRateLimiter creates the rate limiting middleware
func NewRateLimiter(c cache.Cache, writer *response.Writer, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{cache: c, writer: writer, logger: logger}
}

// Limit caps requests from one client IP at limit per window for the
// named endpoint. The window is fixed, anchored at time truncated to
// the window size, so the counter key changes as each window rolls over
// and old counters simply expire.
func (l *RateLimiter) Limit(name string, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			windowStart := time.Now().Truncate(window)
			reset := windowStart.Add(window)
			key := fmt.Sprintf("ratelimit:%s:%s:window:%d",
				name, contextutils.GetClientIP(r.Context()), windowStart.Unix())

			var count int
			if _, err := l.cache.Get(r.Context(), key, &count); err != nil {
				l.logger.Warn("rate limit counter unavailable, allowing request",
					zap.String("endpoint", name),
					zap.Error(err),
				)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))

			if count >= limit {
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("Retry-After", strconv.Itoa(int(time.Until(reset).Seconds())+1))
				l.logger.Warn("rate limit exceeded",
					zap.String("endpoint", name),
					zap.String("ip", contextutils.GetClientIP(r.Context())),
					zap.Int("limit", limit),
				)
				l.writer.Fail(w, r, http.StatusTooManyRequests, "too many requests, try again later")
				return
			}

			if err := l.cache.Set(r.Context(), key, count+1, time.Until(reset)); err != nil {
				l.logger.Warn("failed to update rate limit counter",
					zap.String("endpoint", name),
					zap.Error(err),
				)
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(limit-count-1))

			next.ServeHTTP(w, r)
		})
	}
}
