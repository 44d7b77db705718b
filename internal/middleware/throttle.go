// throttle.go provides the burst throttle that sits in front of authentication.
// It enforces a short-window requests-per-minute limit per client, distinct
// from the per-key daily quota charged by AuthMiddleware. When Redis is
// configured the limit is shared across instances via a sliding-window
// counter; otherwise a per-process token bucket is used.
package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	redisrate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"

	"github.com/cigardb/cigardb/internal/config"
	"github.com/cigardb/cigardb/internal/telemetry"
)

const throttleMessage = "You have sent too many requests in a short period. Please slow down."

// throttleEntry tracks the token bucket for a single client
type throttleEntry struct {
	tokens     float64
	lastUpdate time.Time
}

// LocalThrottle is the in-process token bucket used when no Redis address is
// configured. Limits then apply per instance rather than across the fleet.
type LocalThrottle struct {
	ratePerMinute int
	burst         int
	entries       map[string]*throttleEntry
	mu            sync.Mutex
	stopCh        chan struct{}
}

// NewLocalThrottle creates a token bucket throttle and starts its cleanup loop
func NewLocalThrottle(ratePerMinute, burst int) *LocalThrottle {
	lt := &LocalThrottle{
		ratePerMinute: ratePerMinute,
		burst:         burst,
		entries:       make(map[string]*throttleEntry),
		stopCh:        make(chan struct{}),
	}
	go lt.cleanup()
	return lt
}

// cleanup periodically drops buckets that have been idle long enough to refill
func (lt *LocalThrottle) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			lt.mu.Lock()
			now := time.Now()
			for key, entry := range lt.entries {
				if now.Sub(entry.lastUpdate) > 10*time.Minute {
					delete(lt.entries, key)
				}
			}
			lt.mu.Unlock()
		case <-lt.stopCh:
			return
		}
	}
}

// Stop stops the cleanup goroutine
func (lt *LocalThrottle) Stop() {
	close(lt.stopCh)
}

// Allow reports whether a request under the given key may proceed, along with
// the number of whole tokens remaining after the decision.
func (lt *LocalThrottle) Allow(key string) (bool, int) {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	now := time.Now()
	entry, exists := lt.entries[key]
	if !exists {
		lt.entries[key] = &throttleEntry{
			tokens:     float64(lt.burst) - 1,
			lastUpdate: now,
		}
		return true, lt.burst - 1
	}

	elapsed := now.Sub(entry.lastUpdate)
	refill := elapsed.Seconds() * float64(lt.ratePerMinute) / 60.0
	entry.tokens = min(float64(lt.burst), entry.tokens+refill)
	entry.lastUpdate = now

	if entry.tokens >= 1 {
		entry.tokens--
		return true, int(entry.tokens)
	}
	return false, 0
}

// Throttle returns the burst-throttle middleware. The client key is the
// api_key query parameter when present, so all requests under one key share a
// bucket no matter where they originate, falling back to the client IP for
// unauthenticated traffic. A Redis failure is logged and the request is let
// through: the daily quota downstream still bounds total usage.
func Throttle(cfg config.ThrottleConfig, rdb *redis.Client, local *LocalThrottle, logger *slog.Logger) gin.HandlerFunc {
	var limiter *redisrate.Limiter
	if rdb != nil {
		limiter = redisrate.NewLimiter(rdb)
	}
	limit := redisrate.Limit{
		Rate:   cfg.RequestsPerMinute,
		Burst:  cfg.Burst,
		Period: time.Minute,
	}

	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}

		key := throttleKey(c)

		allowed := true
		remaining := cfg.Burst
		if limiter != nil {
			res, err := limiter.Allow(c.Request.Context(), "throttle:"+key, limit)
			if err != nil {
				logger.Warn("throttle check failed, allowing request", "key", key, "error", err)
			} else {
				allowed = res.Allowed > 0
				remaining = res.Remaining
			}
		} else if local != nil {
			allowed, remaining = local.Allow(key)
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.RequestsPerMinute))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			telemetry.ThrottleRejectionsTotal.Inc()
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": throttleMessage})
			return
		}

		c.Next()
	}
}

// throttleKey determines the bucket key for a request.
// Priority: api_key > client IP.
func throttleKey(c *gin.Context) string {
	if apiKey := c.Query("api_key"); apiKey != "" {
		return "key:" + apiKey
	}
	ip := c.ClientIP()
	if ip == "" {
		ip = c.Request.RemoteAddr
	}
	return "ip:" + ip
}
