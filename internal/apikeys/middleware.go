package apikeys

import (
	"github.com/gofiber/fiber/v2"

	"github.com/faxbot/faxbot/internal/audit"
	apperrors "github.com/faxbot/faxbot/internal/errors"
	"github.com/faxbot/faxbot/internal/logger"
)

type principalContextKey string

const principalKey principalContextKey = "principal"

// RequireAuth authenticates the bearer token on every request and
// stores the resulting Principal for downstream handlers and
// RequireScope.
func RequireAuth(svc *Service, rec *audit.Recorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractToken(c)

		principal, err := svc.Authenticate(c.Context(), token)
		if err != nil {
			logger.LogAuthEvent(c.Context(), "", c.Path(), false, err.Error())
			rec.Record(c.Context(), "", "auth.denied", "APIKey", "", err.Error())
			return writeAppError(c, err)
		}

		logger.LogAuthEvent(c.Context(), principal.KeyID, c.Path(), true, "")
		rec.Record(c.Context(), principal.KeyID, "auth.allowed", "APIKey", principal.KeyID, "")
		c.Locals(string(principalKey), principal)
		return c.Next()
	}
}

// OptionalAuth authenticates the bearer token if one is present,
// storing the Principal for handlers that accept either a valid
// principal or some other credential (e.g. an artifact token) — unlike
// RequireAuth it never fails the request when no token is supplied.
func OptionalAuth(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractToken(c)
		if token == "" {
			return c.Next()
		}

		principal, err := svc.Authenticate(c.Context(), token)
		if err != nil {
			return c.Next()
		}

		c.Locals(string(principalKey), principal)
		return c.Next()
	}
}

// RequireScope returns a handler that 403s unless the authenticated
// principal carries scope. It must run after RequireAuth.
func RequireScope(scope string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal := FromContext(c)
		if principal == nil {
			return writeAppError(c, apperrors.ErrAuthenticationRequired)
		}
		if !principal.HasScope(scope) {
			return writeAppError(c, apperrors.ErrForbidden)
		}
		return c.Next()
	}
}

// FromContext retrieves the Principal set by RequireAuth, or nil if
// authentication has not run.
func FromContext(c *fiber.Ctx) *Principal {
	p, ok := c.Locals(string(principalKey)).(Principal)
	if !ok {
		return nil
	}
	return &p
}

// extractToken reads the bearer credential from X-API-Key — both the
// bootstrap token and the fbk_live_<id>_<secret> format arrive there,
// never in Authorization.
func extractToken(c *fiber.Ctx) string {
	return c.Get("X-API-Key")
}

func writeAppError(c *fiber.Ctx, err error) error {
	if appErr, ok := apperrors.IsAppError(err); ok {
		return c.Status(appErr.HTTPStatus).JSON(fiber.Map{
			"code":    appErr.Code,
			"message": appErr.Message,
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"code":    "INTERNAL_ERROR",
		"message": "internal server error",
	})
}
