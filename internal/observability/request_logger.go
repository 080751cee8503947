package observability

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/agent-gateway/internal/auth"
)

// RequestIDKey is the Locals key under which the request id is stored.
const RequestIDKey = "request_id"

// RequestLogger emits one structured line per request and feeds the request
// counters. It must be registered outside the error-envelope middleware so
// the logged status is the one sent to the client.
func RequestLogger(logger *zap.Logger, metrics *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		duration := time.Since(start)
		status := c.Response().StatusCode()

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("duration", duration),
		}
		if id, ok := c.Locals(RequestIDKey).(string); ok && id != "" {
			fields = append(fields, zap.String("request_id", id))
		}
		if identity, ok := auth.IdentityFromContext(c); ok {
			fields = append(fields, zap.String("user.id", identity.UserID))
		}
		logger.Info("request completed", fields...)
		metrics.RecordRequest(c.Path(), c.Method(), status, duration)
		return err
	}
}
