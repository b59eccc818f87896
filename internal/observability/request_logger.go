package observability

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const RequestIDHeader = "X-Request-ID"

// RequestLogger assigns a request id, logs each request once it completes and records
// request metrics. The route label is the matched route pattern, not the raw path.
func RequestLogger(logger *zap.Logger, metrics *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		reqID := c.Get(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Locals("request_id", reqID)
		c.Set(RequestIDHeader, reqID)

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		latency := time.Since(start)

		metrics.RecordRequest(RouteLabel(c), MethodLabel(c), status, latency)

		fields := []zap.Field{
			zap.String("request_id", reqID),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("ip", c.IP()),
		}
		switch {
		case status >= 500:
			logger.Error("request completed", fields...)
		case status >= 400:
			logger.Warn("request completed", fields...)
		default:
			logger.Info("request completed", fields...)
		}
		return err
	}
}

// UnmatchedRoute labels requests that matched no registered route.
const UnmatchedRoute = "unmatched"

// RouteLabel returns the matched route pattern, or UnmatchedRoute. The result does not
// alias the request buffer and is safe to keep as a metric label.
func RouteLabel(c *fiber.Ctx) string {
	if r := c.Route(); r != nil && r.Path != "" && r.Path != "/" && len(r.Handlers) > 0 {
		return utils.CopyString(r.Path)
	}
	return UnmatchedRoute
}

// MethodLabel returns a copy of the request method.
func MethodLabel(c *fiber.Ctx) string {
	return utils.CopyString(c.Method())
}
