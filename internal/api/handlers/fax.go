package handlers

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/faxbot/faxbot/internal/apikeys"
	"github.com/faxbot/faxbot/internal/crypto"
	apperrors "github.com/faxbot/faxbot/internal/errors"
	"github.com/faxbot/faxbot/internal/jobs"
	"github.com/faxbot/faxbot/internal/storage"
)

// FaxHandler serves the outbound job endpoints: submit, status, and
// tokenized PDF retrieval.
type FaxHandler struct {
	deps *Deps
}

func NewFaxHandler(deps *Deps) *FaxHandler {
	return &FaxHandler{deps: deps}
}

// Submit accepts a multipart outbound fax request.
//
// @Summary Submit a fax
// @Tags fax
// @Accept multipart/form-data
// @Produce json
// @Param to formData string true "Destination number"
// @Param file formData file true "PDF or plain-text document"
// @Success 200 {object} models.Job
// @Failure 400 {object} map[string]string
// @Failure 413 {object} map[string]string
// @Failure 415 {object} map[string]string
// @Router /fax [post]
func (h *FaxHandler) Submit(c *fiber.Ctx) error {
	to := c.FormValue("to")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return writeError(c, apperrors.WithDetails(apperrors.ErrValidationFailed, "file field is required"))
	}

	f, err := fileHeader.Open()
	if err != nil {
		return writeError(c, apperrors.WithDetails(apperrors.ErrValidationFailed, "could not open uploaded file"))
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return writeError(c, apperrors.WithDetails(apperrors.ErrValidationFailed, "could not read uploaded file"))
	}

	contentType := fileHeader.Header.Get("Content-Type")

	job, err := h.deps.Jobs.Submit(c.Context(), jobs.SubmitInput{
		ToNumber:    to,
		FileName:    fileHeader.Filename,
		ContentType: contentType,
		Data:        data,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(job)
}

// Get returns a job's current state.
//
// @Summary Get fax job status
// @Tags fax
// @Produce json
// @Param id path string true "Job id"
// @Success 200 {object} models.Job
// @Failure 404 {object} map[string]string
// @Router /fax/{id} [get]
func (h *FaxHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")

	job, err := h.deps.JobRepo.GetByID(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	if job == nil {
		return writeError(c, apperrors.ErrJobNotFound)
	}

	return c.JSON(job)
}

// GetPDF serves a job's converted PDF under a tokenized URL. No bearer
// auth is accepted here — the token itself is the credential.
//
// @Summary Download a fax PDF by token
// @Tags fax
// @Produce application/pdf
// @Param id path string true "Job id"
// @Param token query string true "Artifact token"
// @Success 200 {file} byte
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /fax/{id}/pdf [get]
func (h *FaxHandler) GetPDF(c *fiber.Ctx) error {
	id := c.Params("id")
	token := c.Query("token")

	job, err := h.deps.JobRepo.GetByID(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	if job == nil {
		return writeError(c, apperrors.ErrJobNotFound)
	}

	if err := verifyArtifactToken(token, id, "outbound", job.PDFToken); err != nil {
		return writeError(c, err)
	}
	if job.PDFPath == "" {
		return writeError(c, apperrors.ErrArtifactNotFound)
	}

	return streamArtifact(c, h.deps.Store, job.PDFPath)
}

// verifyArtifactToken validates a request token against both its own
// signed claims and the stored token value, so revoking a token in the
// database (clearing the column) takes effect even before expiry.
func verifyArtifactToken(token, recordID, kind, stored string) error {
	if token == "" || stored == "" {
		return apperrors.ErrInvalidArtifactToken
	}
	if !crypto.ConstantTimeEqual(token, stored) {
		return apperrors.ErrInvalidArtifactToken
	}

	claims, err := crypto.ParseArtifactToken(token)
	if err != nil {
		return apperrors.WithDetails(apperrors.ErrInvalidArtifactToken, "token expired or malformed")
	}
	if claims.RecordID != recordID || claims.Kind != kind {
		return apperrors.ErrInvalidArtifactToken
	}
	return nil
}

func streamArtifact(c *fiber.Ctx, store storage.Provider, path string) error {
	rc, err := store.Open(c.Context(), path)
	if err != nil {
		return writeError(c, apperrors.WithDetails(apperrors.ErrArtifactNotFound, "artifact no longer available"))
	}
	defer rc.Close()

	noStoreHeaders(c)
	c.Set("Content-Type", "application/pdf")
	return c.SendStream(rc)
}

// requirePrincipal is a small helper shared by handlers that need the
// authenticated principal outside of a scope-gated middleware chain
// (e.g. to branch on whether a request also carries a valid token).
func requirePrincipal(c *fiber.Ctx) *apikeys.Principal {
	return apikeys.FromContext(c)
}
