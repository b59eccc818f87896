package http

import (
	"context"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/cijene-me/cijene-api/internal/observability"
	apperrors "github.com/cijene-me/cijene-api/pkg/util"
)

// RegisterMiddlewares attaches global middlewares such as logging and error handling.
// The request logger sits outermost so it sees the status the error handler wrote.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(errorHandlingMiddleware(logger, metrics))
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
}

// ErrorHandler renders errors raised before the middleware chain runs, such as an
// oversized body.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		writeError(c, logger, apperrors.ToDomainError(err))
		return nil
	}
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				domainErr := apperrors.ToDomainError(err)
				metrics.RecordError(observability.RouteLabel(c), observability.MethodLabel(c), domainErr.Code)
				writeError(c, logger, domainErr)
				err = nil
			}
		}()
		return c.Next()
	}
}

func writeError(c *fiber.Ctx, logger *zap.Logger, domainErr *apperrors.DomainError) {
	body := fiber.Map{
		"code":    domainErr.Code,
		"message": domainErr.Message,
	}
	if len(domainErr.Details) > 0 {
		body["details"] = domainErr.Details
	}
	if domainErr.HTTPStatus >= 500 {
		logger.Error("request failed",
			zap.String("path", c.Path()),
			zap.Any("request_id", c.Locals("request_id")),
			zap.Error(domainErr),
		)
	}
	if domainErr.HTTPStatus == http.StatusUnauthorized {
		c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	}
	c.Status(domainErr.HTTPStatus)
	_ = c.JSON(fiber.Map{"error": body})
}

