package handlers

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/faxbot/faxbot/internal/crypto"
	apperrors "github.com/faxbot/faxbot/internal/errors"
	"github.com/faxbot/faxbot/internal/inbound"
	"github.com/faxbot/faxbot/internal/logger"
	"github.com/faxbot/faxbot/internal/models"
)

// InternalAsteriskHandler serves the trusted, co-located notification
// an Asterisk dialplan posts after ReceiveFAX writes a TIFF to disk.
// Unlike the PBX outbound-result hook, this is a brand new inbound
// fax with no existing job to update, so it drives the inbound
// pipeline directly instead of going through webhook.Ingress.
type InternalAsteriskHandler struct {
	deps *Deps
}

func NewInternalAsteriskHandler(deps *Deps) *InternalAsteriskHandler {
	return &InternalAsteriskHandler{deps: deps}
}

type asteriskInboundRequest struct {
	TIFFPath   string `json:"tiff_path"`
	ToNumber   string `json:"to_number"`
	FromNumber string `json:"from_number"`
	FaxStatus  string `json:"faxstatus"`
	FaxPages   int    `json:"faxpages"`
	UniqueID   string `json:"uniqueid"`
}

// Inbound converts a received TIFF to PDF and files it into the
// inbound pipeline.
//
// @Summary Internal Asterisk inbound fax hook
// @Tags internal
// @Accept json
// @Param X-Internal-Secret header string true "Shared secret"
// @Router /_internal/asterisk/inbound [post]
func (h *InternalAsteriskHandler) Inbound(c *fiber.Ctx) error {
	if !crypto.ConstantTimeEqual(c.Get("X-Internal-Secret"), h.deps.Cfg.Internal.AsteriskInboundSecret) {
		return writeError(c, apperrors.ErrInternalAuthFailed)
	}

	var req asteriskInboundRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, apperrors.WithDetails(apperrors.ErrValidationFailed, "malformed request body"))
	}
	if err := validateSpoolPath(req.TIFFPath); err != nil {
		return writeError(c, err)
	}

	if req.FaxStatus != "" && !strings.EqualFold(req.FaxStatus, "SUCCESS") {
		logger.LogProviderEvent(c.Context(), models.BackendSIP, req.UniqueID, "inbound_receive", false, req.FaxStatus)
		return c.SendStatus(fiber.StatusOK)
	}

	outPath := filepath.Join(os.TempDir(), "faxbot-inbound-"+uuid.NewString()+".pdf")
	defer os.Remove(outPath)

	if err := h.deps.Proc.TIFFToPDF(c.Context(), req.TIFFPath, outPath); err != nil {
		return writeError(c, err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return writeError(c, apperrors.Wrap(err, apperrors.ErrStorageIO))
	}

	var pages *int
	if req.FaxPages > 0 {
		pages = &req.FaxPages
	}

	_, err = h.deps.Inbound.Ingest(c.Context(), inbound.Delivery{
		Backend:     models.BackendSIP,
		ProviderSID: req.UniqueID,
		FromNumber:  req.FromNumber,
		ToNumber:    req.ToNumber,
		Pages:       pages,
		Data:        data,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

// validateSpoolPath rejects anything but a clean absolute path. The
// spool directory lives on the PBX host, not under a configured
// storage root, so this is a standalone traversal check rather than
// the storage adapter's root-relative join.
func validateSpoolPath(path string) error {
	if path == "" {
		return apperrors.WithDetails(apperrors.ErrValidationFailed, "tiff_path is required")
	}
	if !filepath.IsAbs(path) {
		return apperrors.ErrPathTraversal
	}
	if filepath.Clean(path) != path {
		return apperrors.ErrPathTraversal
	}
	if strings.Contains(path, "..") {
		return apperrors.ErrPathTraversal
	}
	return nil
}
