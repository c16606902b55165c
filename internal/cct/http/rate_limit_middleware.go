package http

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	limiterCleanupInterval = 5 * time.Minute
	limiterIdleTimeout     = time.Hour
)

// ipLimiterStore holds per-IP rate limiters.
type ipLimiterStore struct {
	mu       sync.Mutex
	limiters map[string]*ipLimiterEntry
	rps      rate.Limit
	burst    int
	now      func() time.Time
}

type ipLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

func newIPLimiterStore(rps float64, burst int) *ipLimiterStore {
	return &ipLimiterStore{
		limiters: make(map[string]*ipLimiterEntry),
		rps:      rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
	}
}

// IssueRateLimitMiddleware enforces per-IP rate limiting on token issuance.
//
// Each client IP (c.ClientIP, honoring the engine's trusted proxies) gets an independent
// token bucket of rps requests per second with the given burst. Exceeding it yields
// 429 with a Retry-After header. Idle limiters are evicted by a background sweep that
// stops when ctx is done.
func IssueRateLimitMiddleware(ctx context.Context, rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := newIPLimiterStore(rps, burst)
	go store.cleanupStale(ctx, limiterCleanupInterval)

	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		limiter := store.getLimiter(clientIP)

		reservation := limiter.Reserve()
		if delay := reservation.Delay(); delay > 0 {
			reservation.Cancel()
			retryAfter := 60
			if delay != rate.InfDuration {
				retryAfter = int(math.Ceil(delay.Seconds()))
			}

			logger.Debug("issue rate limit exceeded",
				slog.String("client_ip", clientIP),
				slog.Int("retry_after", retryAfter))

			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limit_exceeded",
				"message": "Too many token requests from this IP. Please retry after the specified delay.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// getLimiter retrieves or creates the limiter of ip.
func (s *ipLimiterStore) getLimiter(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.limiters[ip]
	if !ok {
		entry = &ipLimiterEntry{limiter: rate.NewLimiter(s.rps, s.burst)}
		s.limiters[ip] = entry
	}
	entry.lastAccess = s.now()
	return entry.limiter
}

// evictIdle removes limiters not used since threshold and returns how many were removed.
func (s *ipLimiterStore) evictIdle(threshold time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for ip, entry := range s.limiters {
		if entry.lastAccess.Before(threshold) {
			delete(s.limiters, ip)
			removed++
		}
	}
	return removed
}

func (s *ipLimiterStore) cleanupStale(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.evictIdle(s.now().Add(-limiterIdleTimeout))
		}
	}
}
