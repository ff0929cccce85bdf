package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/faxbot/faxbot/internal/errors"
)

// AdminKeysHandler implements API key lifecycle management, gated on
// keys:manage (or the implicit bootstrap admin).
type AdminKeysHandler struct {
	deps *Deps
}

func NewAdminKeysHandler(deps *Deps) *AdminKeysHandler {
	return &AdminKeysHandler{deps: deps}
}

type createAPIKeyRequest struct {
	Name      string     `json:"name" validate:"required,min=1,max=200"`
	Owner     string     `json:"owner"`
	Note      string     `json:"note"`
	Scopes    []string   `json:"scopes" validate:"required,min=1"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// Create mints a new API key and returns its bearer token exactly
// once — the token is never retrievable again after this response.
//
// @Summary Create an API key
// @Tags admin
// @Accept json
// @Produce json
// @Param request body createAPIKeyRequest true "Key parameters"
// @Success 201 {object} map[string]interface{}
// @Router /admin/api-keys [post]
func (h *AdminKeysHandler) Create(c *fiber.Ctx) error {
	var req createAPIKeyRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, apperrors.WithDetails(apperrors.ErrValidationFailed, "malformed request body"))
	}
	if fieldErrs := validateStruct(req); fieldErrs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"code":   apperrors.ErrValidationFailed.Code,
			"fields": fieldErrs,
		})
	}

	token, key, err := h.deps.APIKeys.Create(c.Context(), req.Name, req.Owner, req.Note, req.Scopes, req.ExpiresAt)
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token":   token,
		"api_key": key,
	})
}

// List returns every non-secret API key record.
//
// @Summary List API keys
// @Tags admin
// @Produce json
// @Success 200 {array} models.APIKey
// @Router /admin/api-keys [get]
func (h *AdminKeysHandler) List(c *fiber.Ctx) error {
	keys, err := h.deps.APIKeys.List(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(keys)
}

// Revoke permanently disables a key.
//
// @Summary Revoke an API key
// @Tags admin
// @Param id path string true "Key id"
// @Success 204
// @Router /admin/api-keys/{id} [delete]
func (h *AdminKeysHandler) Revoke(c *fiber.Ctx) error {
	keyID := c.Params("id")
	if err := h.deps.APIKeys.Revoke(c.Context(), keyID); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Rotate replaces a key's secret and returns the new bearer token.
//
// @Summary Rotate an API key's secret
// @Tags admin
// @Produce json
// @Param id path string true "Key id"
// @Success 200 {object} map[string]string
// @Router /admin/api-keys/{id}/rotate [post]
func (h *AdminKeysHandler) Rotate(c *fiber.Ctx) error {
	keyID := c.Params("id")
	token, err := h.deps.APIKeys.Rotate(c.Context(), keyID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"token": token})
}
