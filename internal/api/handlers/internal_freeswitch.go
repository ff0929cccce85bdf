package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/faxbot/faxbot/internal/models"
)

// InternalFreeswitchHandler serves the trusted, co-located callback a
// FreeSWITCH/Asterisk dialplan posts after an outbound SIP fax attempt
// completes. It is a callback on an already-dispatched job, so it
// reuses the same webhook.Ingress path as the cloud providers rather
// than a bespoke handler.
type InternalFreeswitchHandler struct {
	deps *Deps
}

func NewInternalFreeswitchHandler(deps *Deps) *InternalFreeswitchHandler {
	return &InternalFreeswitchHandler{deps: deps}
}

// OutboundResult applies a PBX outbound result to the originating job.
//
// @Summary Internal PBX outbound result hook
// @Tags internal
// @Accept json
// @Param X-Internal-Secret header string true "Shared secret"
// @Router /_internal/freeswitch/outbound_result [post]
func (h *InternalFreeswitchHandler) OutboundResult(c *fiber.Ctx) error {
	body := c.Body()
	r := newVerificationRequest(c)

	if _, err := h.deps.Webhooks.Handle(c.Context(), models.BackendSIP, h.deps.SIP, r, body); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}
