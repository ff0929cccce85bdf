package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// Health reports liveness. No auth, no database round-trip — a
// reverse proxy health check should never be gated behind anything
// that can itself fail.
//
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
