package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/faxbot/faxbot/internal/apikeys"
	apperrors "github.com/faxbot/faxbot/internal/errors"
	"github.com/faxbot/faxbot/internal/ratelimit"
)

// RateLimit gates one route class against store, keyed by the
// authenticated principal when present and falling back to the
// client's remote IP when no principal is set.
func RateLimit(store ratelimit.Store, class ratelimit.Class, policy ratelimit.Policy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if policy.RPM <= 0 {
			return c.Next()
		}

		actorID := c.IP()
		if p := apikeys.FromContext(c); p != nil {
			actorID = p.KeyID
		}

		allowed, err := store.Allow(c.Context(), class, actorID, policy, 1)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"code":    apperrors.ErrInternal.Code,
				"message": apperrors.ErrInternal.Message,
			})
		}
		if !allowed {
			return c.Status(apperrors.ErrRateLimited.HTTPStatus).JSON(fiber.Map{
				"code":    apperrors.ErrRateLimited.Code,
				"message": apperrors.ErrRateLimited.Message,
			})
		}

		return c.Next()
	}
}
