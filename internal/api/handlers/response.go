package handlers

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/faxbot/faxbot/internal/errors"
)

// writeError maps an error to its JSON wire form. AppErrors carry
// their own HTTP status; anything else is an unclassified internal
// failure and must never leak its raw text to the client.
func writeError(c *fiber.Ctx, err error) error {
	if appErr, ok := apperrors.IsAppError(err); ok {
		return c.Status(appErr.HTTPStatus).JSON(fiber.Map{
			"code":    appErr.Code,
			"message": appErr.Message,
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"code":    apperrors.ErrInternal.Code,
		"message": apperrors.ErrInternal.Message,
	})
}

// noStoreHeaders marks a tokenized artifact response as never cacheable
// by an intermediary, even briefly.
func noStoreHeaders(c *fiber.Ctx) {
	c.Set("Cache-Control", "no-store, no-cache, must-revalidate")
	c.Set("Pragma", "no-cache")
	c.Set("Expires", "0")
}
