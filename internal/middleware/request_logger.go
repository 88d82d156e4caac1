package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RequestLogger logs one structured line per request. Bodies are never logged.
func RequestLogger(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("dur", time.Since(start)),
			zap.String("ip", c.IP()),
		}
		if caller := CallerFrom(c); caller.Authenticated() {
			fields = append(fields, zap.Uint("user_id", caller.UserID))
		}
		if status >= fiber.StatusInternalServerError {
			log.Error("http", append(fields, zap.Error(err))...)
		} else {
			log.Info("http", fields...)
		}
		return err
	}
}
