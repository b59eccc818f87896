package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/cijene-me/cijene-api/internal/cache"
	"github.com/cijene-me/cijene-api/internal/observability"
)

const cacheHeader = "X-Cache"

// responseCache serves GET responses of one namespace from Redis. Only 200
// responses are stored; Redis errors bypass the cache.
func responseCache(store *cache.Store, ns cache.Namespace, metrics *observability.Metrics, logger *zap.Logger) fiber.Handler {
	if store == nil {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodGet {
			return c.Next()
		}
		ctx := c.UserContext()

		key, err := store.Key(ctx, ns, c.Method()+" "+c.OriginalURL())
		if err != nil {
			logger.Warn("cache key lookup failed", zap.String("namespace", string(ns)), zap.Error(err))
			return c.Next()
		}

		body, ok, err := store.Get(ctx, key)
		if err != nil {
			logger.Warn("cache read failed", zap.String("namespace", string(ns)), zap.Error(err))
		}
		if ok {
			metrics.RecordCacheLookup(string(ns), true)
			c.Set(cacheHeader, "HIT")
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Status(http.StatusOK).Send(body)
		}

		metrics.RecordCacheLookup(string(ns), false)
		c.Set(cacheHeader, "MISS")
		if err := c.Next(); err != nil {
			return err
		}
		if c.Response().StatusCode() != http.StatusOK {
			return nil
		}
		payload := append([]byte(nil), c.Response().Body()...)
		if err := store.Set(ctx, key, payload); err != nil {
			logger.Warn("cache write failed", zap.String("namespace", string(ns)), zap.Error(err))
		}
		return nil
	}
}
