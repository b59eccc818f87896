package http

import (
	"math"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/cijene-me/cijene-api/internal/config"
	"github.com/cijene-me/cijene-api/internal/observability"
	apperrors "github.com/cijene-me/cijene-api/pkg/util"
)

// tokenBucketScript refills KEYS[1] by whole intervals, then takes one token.
// Returns {allowed, remaining, retry_after_ms}.
var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local interval_ms = tonumber(ARGV[3])
local ttl_seconds = tonumber(ARGV[4])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])

if tokens == nil or last_refill == nil then
  tokens = capacity
  last_refill = now_ms
end

if interval_ms > 0 then
  local elapsed = math.max(0, now_ms - last_refill)
  local intervals = math.floor(elapsed / interval_ms)
  if intervals > 0 then
    tokens = math.min(capacity, tokens + intervals)
    last_refill = last_refill + (intervals * interval_ms)
  end
end

local allowed = 0
local retry_after_ms = 0
if tokens > 0 then
  allowed = 1
  tokens = tokens - 1
elseif interval_ms > 0 then
  retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
else
  retry_after_ms = ttl_seconds * 1000
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
redis.call('EXPIRE', key, ttl_seconds)

return { allowed, tokens, retry_after_ms }
`)

// RateLimiter is a Redis token bucket keyed by client IP and route.
type RateLimiter struct {
	rdb        redis.UniversalClient
	prefix     string
	capacity   int
	intervalMS int64
	ttlSeconds int64
	logger     *zap.Logger
	now        func() time.Time
}

// NewRateLimiter returns nil when limiting is disabled or Redis is missing; a nil
// limiter's Handler lets every request through.
func NewRateLimiter(cfg config.RateLimitConfig, rdb redis.UniversalClient, prefix string, logger *zap.Logger) *RateLimiter {
	if !cfg.Enabled || rdb == nil || cfg.Capacity <= 0 {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	var interval int64
	if cfg.RefillPerSecond > 0 {
		interval = int64(math.Ceil(1000 / cfg.RefillPerSecond))
	}
	// keep a bucket around at least until it would be full again
	ttl := int64(60)
	if full := int64(cfg.Capacity)*interval/1000 + 1; full > ttl {
		ttl = full
	}
	return &RateLimiter{
		rdb:        rdb,
		prefix:     prefix + "rl:",
		capacity:   cfg.Capacity,
		intervalMS: interval,
		ttlSeconds: ttl,
		logger:     logger,
		now:        time.Now,
	}
}

// Handler must be attached per route so the route pattern is part of the key.
// Redis failures let the request through.
func (l *RateLimiter) Handler() fiber.Handler {
	if l == nil {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return func(c *fiber.Ctx) error {
		key := l.prefix + c.IP() + ":" + c.Method() + ":" + observability.RouteLabel(c)

		res, err := tokenBucketScript.Run(c.UserContext(), l.rdb, []string{key},
			l.now().UnixMilli(), l.capacity, l.intervalMS, l.ttlSeconds).Int64Slice()
		if err != nil || len(res) != 3 {
			l.logger.Warn("rate limiter unavailable", zap.String("key", key), zap.Error(err))
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(l.capacity))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(res[1], 10))

		if res[0] != 1 {
			secs := int(math.Ceil(float64(res[2]) / 1000))
			if secs < 1 {
				secs = 1
			}
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(secs))
			return apperrors.NewRateLimited(secs)
		}
		return c.Next()
	}
}
