package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/faxbot/faxbot/internal/apikeys"
	"github.com/faxbot/faxbot/internal/logger"
)

// LoggerConfig holds configuration for the request-logging middleware.
type LoggerConfig struct {
	// Skip defines a function to skip middleware
	Skip func(c *fiber.Ctx) bool

	// CustomLogger overrides the default per-request log call
	CustomLogger func(c *fiber.Ctx, duration time.Duration)
}

// LoggerMiddleware logs every request through logger.LogAPIRequest.
func LoggerMiddleware() fiber.Handler {
	return LoggerWithConfig(LoggerConfig{})
}

// LoggerWithConfig creates the request-logging middleware with
// skip/override hooks.
func LoggerWithConfig(config LoggerConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if config.Skip != nil && config.Skip(c) {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()
		duration := time.Since(start)

		if config.CustomLogger != nil {
			config.CustomLogger(c, duration)
			return err
		}

		keyID := ""
		if p := apikeys.FromContext(c); p != nil {
			keyID = p.KeyID
		}

		logger.LogAPIRequest(
			c.Context(),
			c.Method(),
			c.Path(),
			keyID,
			c.Response().StatusCode(),
			duration,
		)

		return err
	}
}

// HealthCheckSkipper skips logging for the liveness endpoint.
func HealthCheckSkipper(c *fiber.Ctx) bool {
	return c.Path() == "/health"
}
