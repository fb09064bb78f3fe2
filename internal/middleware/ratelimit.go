package middleware

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/fathima-sithara/video-service/internal/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RedisRateLimiter is a fixed-window counter shared by every replica.
type RedisRateLimiter struct {
	Redis  *redis.Client
	Prefix string
	Limit  int // requests
	Window time.Duration
	log    *zap.Logger
}

func NewRedisRateLimiter(r *redis.Client, prefix string, limit int, window time.Duration, logger *zap.Logger) *RedisRateLimiter {
	return &RedisRateLimiter{Redis: r, Prefix: prefix, Limit: limit, Window: window, log: logger}
}

func (r *RedisRateLimiter) MiddlewareByKey(keyFunc func(c *fiber.Ctx) string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := keyFunc(c)
		ctx, cancel := context.WithTimeout(c.UserContext(), time.Second)
		defer cancel()

		redisKey := fmt.Sprintf("%s:%s", r.Prefix, key)
		// ExpireNX on every hit heals a window key that lost its TTL
		var incr *redis.IntCmd
		_, err := r.Redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			incr = pipe.Incr(ctx, redisKey)
			pipe.ExpireNX(ctx, redisKey, r.Window)
			return nil
		})
		if err != nil {
			// fail open: an unavailable limiter must not take the API down
			r.log.Warn("rate limiter unavailable", zap.Error(err))
			return c.Next()
		}
		count := incr.Val()
		if count > int64(r.Limit) {
			r.log.Warn("rate limit exceeded", zap.String("key", key), zap.String("path", c.Path()))
			return utils.TooManyRequests("rate limit exceeded")
		}
		return c.Next()
	}
}

func (r *RedisRateLimiter) Handler() fiber.Handler {
	return r.MiddlewareByKey(ClientIP)
}

// IPRateLimiter is the in-process token bucket used when Redis is absent.
type IPRateLimiter struct {
	visitors sync.Map
	rps      rate.Limit
	burst    int
	log      *zap.Logger
	now      func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	mu       sync.Mutex
	lastSeen time.Time
}

func NewIPRateLimiter(perMinute int, logger *zap.Logger) *IPRateLimiter {
	return &IPRateLimiter{
		rps:   rate.Limit(float64(perMinute) / 60.0),
		burst: max(perMinute/6, 5),
		log:   logger,
		now:   time.Now,
	}
}

// Run evicts idle visitors until ctx is done.
func (l *IPRateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.cleanup(l.now().Add(-5 * time.Minute))
		}
	}
}

// getLimiter keeps ip past the request, so it must not alias fiber's buffers.
func (l *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	v, _ := l.visitors.LoadOrStore(strings.Clone(ip), &visitor{limiter: rate.NewLimiter(l.rps, l.burst)})
	vi := v.(*visitor)
	vi.mu.Lock()
	vi.lastSeen = l.now()
	vi.mu.Unlock()
	return vi.limiter
}

func (l *IPRateLimiter) cleanup(cutoff time.Time) {
	l.visitors.Range(func(k, v interface{}) bool {
		vi := v.(*visitor)
		vi.mu.Lock()
		idle := vi.lastSeen.Before(cutoff)
		vi.mu.Unlock()
		if idle {
			l.visitors.Delete(k)
		}
		return true
	})
}

func (l *IPRateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := ClientIP(c)
		if !l.getLimiter(ip).Allow() {
			l.log.Warn("rate limit exceeded", zap.String("ip", ip), zap.String("path", c.Path()))
			return utils.TooManyRequests("rate limit exceeded")
		}
		return c.Next()
	}
}

func ClientIP(c *fiber.Ctx) string {
	ip := c.IP()
	if ip == "" {
		ip = "unknown"
	}
	host, _, err := net.SplitHostPort(ip)
	if err == nil {
		return host
	}
	return ip
}
