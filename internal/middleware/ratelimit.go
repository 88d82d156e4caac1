package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// LoginLimiter caps POST attempts per client IP per minute. storage may be
// nil for in-memory counters; max <= 0 disables the limit.
func LoginLimiter(max int, storage fiber.Storage, deny fiber.Handler) fiber.Handler {
	if max <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Method() != fiber.MethodPost
		},
		Max:          max,
		Expiration:   time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string { return "login:" + c.IP() },
		LimitReached: deny,
		Storage:      storage,
	})
}
