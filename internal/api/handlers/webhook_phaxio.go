package handlers

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/faxbot/faxbot/internal/errors"
	"github.com/faxbot/faxbot/internal/inbound"
	"github.com/faxbot/faxbot/internal/logger"
	"github.com/faxbot/faxbot/internal/models"
)

// PhaxioHandler serves Phaxio's two webhook routes: the outbound
// status callback and the inbound fax-received notification.
type PhaxioHandler struct {
	deps *Deps
}

func NewPhaxioHandler(deps *Deps) *PhaxioHandler {
	return &PhaxioHandler{deps: deps}
}

// Callback applies a Phaxio outbound status update to the originating
// job.
//
// @Summary Phaxio outbound status callback
// @Tags webhooks
// @Accept json
// @Router /phaxio-callback [post]
func (h *PhaxioHandler) Callback(c *fiber.Ctx) error {
	if h.deps.Phaxio == nil {
		return writeError(c, apperrors.NewValidationError("phaxio backend not configured"))
	}

	body := c.Body()
	r := newVerificationRequest(c)

	if _, err := h.deps.Webhooks.Handle(c.Context(), models.BackendPhaxio, h.deps.Phaxio, r, body); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

// Inbound accepts a Phaxio fax-received notification: verifies the
// signature, fetches the fax media, and routes it into the inbound
// pipeline.
//
// @Summary Phaxio inbound fax notification
// @Tags webhooks
// @Accept json
// @Router /phaxio-inbound [post]
func (h *PhaxioHandler) Inbound(c *fiber.Ctx) error {
	if h.deps.Phaxio == nil {
		return writeError(c, apperrors.NewValidationError("phaxio backend not configured"))
	}

	body := c.Body()
	r := newVerificationRequest(c)

	if err := h.deps.Phaxio.VerifyCallback(r, body); err != nil {
		logger.LogWebhookEvent(c.Context(), models.BackendPhaxio, "inbound", "", false, err)
		return writeError(c, err)
	}

	parsed, err := h.deps.Phaxio.ParseInbound(body)
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

	data, err := h.deps.Phaxio.FetchMedia(c.Context(), parsed.MediaURL)
	if err != nil {
		return writeError(c, err)
	}

	_, err = h.deps.Inbound.Ingest(c.Context(), inbound.Delivery{
		Backend:     models.BackendPhaxio,
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
