package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	HeaderRequestID = "X-Request-ID"
	LocalRequestID  = "request_id"
)

// RequestID reuses an incoming X-Request-ID or mints one.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(LocalRequestID, id)
		c.Set(HeaderRequestID, id)
		return c.Next()
	}
}

// ZapLogger logs every request once it has been handled. Errors are logged
// with the status the error handler will send.
func ZapLogger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		latency := time.Since(start)

		status := c.Response().StatusCode()
		if err != nil {
			status = statusOf(err)
		}

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
			zap.Int("status", status),
			zap.Duration("latency", latency),
		}
		if id, ok := c.Locals(LocalRequestID).(string); ok {
			fields = append(fields, zap.String("request_id", id))
		}
		if claims := Claims(c); claims != nil {
			fields = append(fields, zap.String("user_id", claims.UserID), zap.String("user_name", claims.UserName))
		}

		switch {
		case err != nil && status >= fiber.StatusInternalServerError:
			logger.Error("HTTP Request Error", append(fields, zap.Error(err))...)
		case err != nil:
			logger.Info("HTTP Request Rejected", append(fields, zap.Error(err))...)
		default:
			logger.Info("HTTP Request", fields...)
		}
		return err
	}
}
