package handlers

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/faxbot/faxbot/internal/errors"
	"github.com/faxbot/faxbot/internal/inbound"
	"github.com/faxbot/faxbot/internal/logger"
	"github.com/faxbot/faxbot/internal/models"
)

// SinchHandler serves Sinch's two webhook routes: the outbound status
// callback and the inbound fax-received notification.
type SinchHandler struct {
	deps *Deps
}

func NewSinchHandler(deps *Deps) *SinchHandler {
	return &SinchHandler{deps: deps}
}

// Callback applies a Sinch outbound status update to the originating
// job.
//
// @Summary Sinch outbound status callback
// @Tags webhooks
// @Accept json
// @Router /sinch-callback [post]
func (h *SinchHandler) Callback(c *fiber.Ctx) error {
	if h.deps.Sinch == nil {
		return writeError(c, apperrors.NewValidationError("sinch backend not configured"))
	}

	body := c.Body()
	r := newVerificationRequest(c)

	if _, err := h.deps.Webhooks.Handle(c.Context(), models.BackendSinch, h.deps.Sinch, r, body); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

// Inbound accepts a Sinch fax-received notification.
//
// @Summary Sinch inbound fax notification
// @Tags webhooks
// @Accept json
// @Router /sinch-inbound [post]
func (h *SinchHandler) Inbound(c *fiber.Ctx) error {
	if h.deps.Sinch == nil {
		return writeError(c, apperrors.NewValidationError("sinch backend not configured"))
	}

	body := c.Body()
	r := newVerificationRequest(c)

	if err := h.deps.Sinch.VerifyCallback(r, body); err != nil {
		logger.LogWebhookEvent(c.Context(), models.BackendSinch, "inbound", "", false, err)
		return writeError(c, err)
	}

	parsed, err := h.deps.Sinch.ParseInbound(body)
	if err != nil {
		return writeError(c, err)
	}

	fresh, err := h.deps.Dedup.TryInsert(c.Context(), parsed.ProviderSID, "inbound_received")
	if err != nil {
		return writeError(c, err)
	}
	if !fresh {
		return c.SendStatus(fiber.StatusOK)
	}

	data, err := h.deps.Sinch.FetchMedia(c.Context(), parsed.MediaURL)
	if err != nil {
		return writeError(c, err)
	}

	_, err = h.deps.Inbound.Ingest(c.Context(), inbound.Delivery{
		Backend:     models.BackendSinch,
		ProviderSID: parsed.ProviderSID,
		FromNumber:  parsed.FromNumber,
		ToNumber:    parsed.ToNumber,
		Pages:       parsed.Pages,
		Data:        data,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}
