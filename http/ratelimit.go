package http

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/avaldeso/machina"
)

// rateLimiter throttles login attempts per client IP using token buckets.
// Limiters live in memory and are evicted after an hour of inactivity.
//
// It relies on c.RealIP(), so Echo's IPExtractor must be configured
// correctly when the server runs behind a proxy.
type rateLimiter struct {
	limiters sync.Map // IP address -> *limiterEntry
	logger   *slog.Logger
	limit    rate.Limit
	burst    int
	stop     chan struct{}
	stopOnce sync.Once
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess atomic.Int64 // Unix timestamp in seconds
}

const (
	// 5 attempts per minute with a small burst.
	authRateLimit = rate.Limit(5.0 / 60.0)
	authRateBurst = 5

	limiterCleanupInterval = time.Hour
)

func newRateLimiter(logger *slog.Logger) *rateLimiter {
	rl := &rateLimiter{
		logger: logger,
		limit:  authRateLimit,
		burst:  authRateBurst,
		stop:   make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Middleware rejects requests with ERATELIMIT once the client's bucket is empty.
func (rl *rateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()

			if !rl.limiterFor(ip).Allow() {
				rl.logger.Warn("rate limit exceeded",
					slog.String("ip", ip),
					slog.String("path", c.Path()))

				c.Response().Header().Set("Retry-After", "60")
				return &machina.Error{Code: machina.ERATELIMIT, Message: "Too many attempts. Try again later."}
			}

			return next(c)
		}
	}
}

func (rl *rateLimiter) limiterFor(ip string) *rate.Limiter {
	if entry, exists := rl.limiters.Load(ip); exists {
		e := entry.(*limiterEntry)
		e.lastAccess.Store(time.Now().Unix())
		return e.limiter
	}

	entry := &limiterEntry{limiter: rate.NewLimiter(rl.limit, rl.burst)}
	entry.lastAccess.Store(time.Now().Unix())
	actual, _ := rl.limiters.LoadOrStore(ip, entry)
	return actual.(*limiterEntry).limiter
}

// cleanupLoop evicts limiters unused for over an hour.
func (rl *rateLimiter) cleanupLoop() {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			threshold := time.Now().Add(-limiterCleanupInterval).Unix()
			rl.limiters.Range(func(key, value any) bool {
				if value.(*limiterEntry).lastAccess.Load() < threshold {
					rl.limiters.Delete(key)
				}
				return true
			})
		case <-rl.stop:
			return
		}
	}
}

// Shutdown stops the cleanup goroutine.
func (rl *rateLimiter) Shutdown() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}
