package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/faxbot/faxbot/internal/database"
	apperrors "github.com/faxbot/faxbot/internal/errors"
	"github.com/faxbot/faxbot/internal/models"
)

// InboundHandler serves the received-fax listing, detail, and
// tokenized PDF endpoints.
type InboundHandler struct {
	deps *Deps
}

func NewInboundHandler(deps *Deps) *InboundHandler {
	return &InboundHandler{deps: deps}
}

// List returns paginated inbound records, optionally filtered.
//
// @Summary List inbound faxes
// @Tags inbound
// @Produce json
// @Param to_number query string false "Destination number"
// @Param status query string false "received or failed"
// @Param mailbox query string false "Mailbox label"
// @Param since query string false "RFC3339 timestamp lower bound"
// @Param page query int false "Page number"
// @Param per_page query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Router /inbound [get]
func (h *InboundHandler) List(c *fiber.Ctx) error {
	filter := database.ListFilter{
		ToNumber: c.Query("to_number"),
		Status:   c.Query("status"),
		Mailbox:  c.Query("mailbox"),
		Page:     c.QueryInt("page", 1),
		PerPage:  c.QueryInt("per_page", 50),
	}

	if since := c.Query("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			return writeError(c, apperrors.WithDetails(apperrors.ErrValidationFailed, "since must be RFC3339"))
		}
		filter.Since = &t
	}

	records, total, err := h.deps.InboundRepo.List(c.Context(), filter)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(fiber.Map{
		"records":  records,
		"total":    total,
		"page":     filter.Page,
		"per_page": filter.PerPage,
	})
}

// Get returns a single inbound record.
//
// @Summary Get an inbound fax
// @Tags inbound
// @Produce json
// @Param id path string true "Inbound record id"
// @Success 200 {object} models.InboundFax
// @Failure 404 {object} map[string]string
// @Router /inbound/{id} [get]
func (h *InboundHandler) Get(c *fiber.Ctx) error {
	rec, err := h.lookup(c)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(rec)
}

// GetPDF serves an inbound fax's PDF either under a valid artifact
// token or to a principal holding inbound:read.
//
// @Summary Download an inbound fax PDF
// @Tags inbound
// @Produce application/pdf
// @Param id path string true "Inbound record id"
// @Param token query string false "Artifact token"
// @Success 200 {file} byte
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /inbound/{id}/pdf [get]
func (h *InboundHandler) GetPDF(c *fiber.Ctx) error {
	rec, err := h.lookup(c)
	if err != nil {
		return writeError(c, err)
	}

	if token := c.Query("token"); token != "" {
		if err := verifyArtifactToken(token, rec.ID, "inbound", rec.PDFToken); err != nil {
			return writeError(c, err)
		}
	} else {
		principal := requirePrincipal(c)
		if principal == nil || !principal.HasScope(models.ScopeInboundRead) {
			return writeError(c, apperrors.ErrForbidden)
		}
	}

	if rec.PDFPath == "" {
		return writeError(c, apperrors.ErrArtifactNotFound)
	}
	return streamArtifact(c, h.deps.Store, rec.PDFPath)
}

func (h *InboundHandler) lookup(c *fiber.Ctx) (*models.InboundFax, error) {
	id := c.Params("id")
	rec, err := h.deps.InboundRepo.GetByID(c.Context(), id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, apperrors.ErrInboundNotFound
	}
	return rec, nil
}
