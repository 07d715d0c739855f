package http

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-service/internal/observability"
	apperrors "github.com/spec-kit/sla-service/pkg/util"
)

// RegisterMiddlewares attaches the global middleware chain: request ids,
// per-request deadline, error translation and request logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	app.Use(requestid.New())
	if timeout > 0 {
		app.Use(deadline(timeout))
	}
	app.Use(translateErrors(logger, metrics))
	app.Use(observability.RequestLogger(logger, metrics))
}

// deadline bounds each request's context so a stuck database call cannot
// hold a connection forever.
func deadline(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// translateErrors converts whatever the handlers return (or panic with)
// into the error envelope clients see. Status and code come from the
// domain error; unknown errors surface as internal errors.
func translateErrors(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					zap.Any("panic", r),
					zap.String("request_id", requestID(c)),
					zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err == nil {
				return
			}
			domainErr := apperrors.ToDomainError(err)
			if metrics != nil {
				metrics.RecordError(c.Path(), c.Method(), domainErr.Code)
			}
			if domainErr.HTTPStatus >= 500 {
				logger.Error("request failed",
					zap.String("request_id", requestID(c)),
					zap.Error(domainErr))
			}
			body := fiber.Map{
				"code":       domainErr.Code,
				"message":    domainErr.Message,
				"request_id": requestID(c),
			}
			if len(domainErr.Details) > 0 {
				body["details"] = domainErr.Details
			}
			c.Status(domainErr.HTTPStatus)
			_ = c.JSON(fiber.Map{"error": body})
			err = nil
		}()
		return c.Next()
	}
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals(requestid.ConfigDefault.ContextKey).(string); ok {
		return id
	}
	return ""
}
