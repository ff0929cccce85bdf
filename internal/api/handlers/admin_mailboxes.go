package handlers

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/faxbot/faxbot/internal/errors"
	"github.com/faxbot/faxbot/internal/models"
)

// AdminMailboxesHandler manages inbound routing: the mailboxes inbound
// faxes are filed under, and the number-to-mailbox rules that assign
// them. Gated on keys:manage, the same scope that guards API key
// administration, since both shape how the system routes and exposes
// data rather than acting on it.
type AdminMailboxesHandler struct {
	deps *Deps
}

func NewAdminMailboxesHandler(deps *Deps) *AdminMailboxesHandler {
	return &AdminMailboxesHandler{deps: deps}
}

// ListMailboxes returns every configured mailbox.
//
// @Summary List mailboxes
// @Tags admin
// @Produce json
// @Success 200 {array} models.Mailbox
// @Router /admin/mailboxes [get]
func (h *AdminMailboxesHandler) ListMailboxes(c *fiber.Ctx) error {
	mailboxes, err := h.deps.Mailboxes.List(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(mailboxes)
}

type createMailboxRequest struct {
	Label string `json:"label" validate:"required,min=1,max=64"`
	Note  string `json:"note"`
}

// CreateMailbox registers a new mailbox label.
//
// @Summary Create a mailbox
// @Tags admin
// @Accept json
// @Produce json
// @Param request body createMailboxRequest true "Mailbox"
// @Success 201 {object} models.Mailbox
// @Router /admin/mailboxes [post]
func (h *AdminMailboxesHandler) CreateMailbox(c *fiber.Ctx) error {
	var req createMailboxRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, apperrors.WithDetails(apperrors.ErrValidationFailed, "malformed request body"))
	}
	if fieldErrs := validateStruct(req); fieldErrs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"code":   apperrors.ErrValidationFailed.Code,
			"fields": fieldErrs,
		})
	}

	mailbox := &models.Mailbox{Label: req.Label, Note: req.Note}
	if err := h.deps.Mailboxes.Create(c.Context(), mailbox); err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(mailbox)
}

type createInboundRuleRequest struct {
	ToNumber     string `json:"to_number" validate:"required"`
	MailboxLabel string `json:"mailbox_label" validate:"required"`
}

// CreateInboundRule maps a destination number to a mailbox.
//
// @Summary Create an inbound routing rule
// @Tags admin
// @Accept json
// @Produce json
// @Param request body createInboundRuleRequest true "Routing rule"
// @Success 201 {object} models.InboundRule
// @Router /admin/inbound-rules [post]
func (h *AdminMailboxesHandler) CreateInboundRule(c *fiber.Ctx) error {
	var req createInboundRuleRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, apperrors.WithDetails(apperrors.ErrValidationFailed, "malformed request body"))
	}
	if fieldErrs := validateStruct(req); fieldErrs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"code":   apperrors.ErrValidationFailed.Code,
			"fields": fieldErrs,
		})
	}

	rule := &models.InboundRule{ToNumber: req.ToNumber, MailboxLabel: req.MailboxLabel}
	if err := h.deps.Mailboxes.CreateRule(c.Context(), rule); err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(rule)
}

// ListInboundRules returns every routing rule.
//
// @Summary List inbound routing rules
// @Tags admin
// @Produce json
// @Success 200 {array} models.InboundRule
// @Router /admin/inbound-rules [get]
func (h *AdminMailboxesHandler) ListInboundRules(c *fiber.Ctx) error {
	rules, err := h.deps.Mailboxes.ListRules(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(rules)
}

// DeleteInboundRule removes the routing rule for a number, falling
// the destination back to the default mailbox.
//
// @Summary Delete an inbound routing rule
// @Tags admin
// @Param to_number path string true "Destination number"
// @Success 204
// @Router /admin/inbound-rules/{to_number} [delete]
func (h *AdminMailboxesHandler) DeleteInboundRule(c *fiber.Ctx) error {
	toNumber := c.Params("to_number")
	if err := h.deps.Mailboxes.DeleteRule(c.Context(), toNumber); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
