// Package jobs implements the outbound fax submission pipeline: file
// validation, document conversion, tokenized-URL minting, and
// dispatch to the configured provider backend.
package jobs

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/faxbot/faxbot/config"
	"github.com/faxbot/faxbot/internal/audit"
	"github.com/faxbot/faxbot/internal/crypto"
	"github.com/faxbot/faxbot/internal/database"
	"github.com/faxbot/faxbot/internal/docproc"
	apperrors "github.com/faxbot/faxbot/internal/errors"
	"github.com/faxbot/faxbot/internal/logger"
	"github.com/faxbot/faxbot/internal/models"
	"github.com/faxbot/faxbot/internal/provider"
	"github.com/faxbot/faxbot/internal/storage"
)

// destinationPattern is a permissive E.164-ish check: an optional
// leading +, 8-15 digits. Exact carrier validation is the provider's
// job; this only rejects obviously malformed input.
var destinationPattern = regexp.MustCompile(`^\+?[1-9]\d{7,14}$`)

// Service orchestrates outbound fax submission: validating the
// request, converting and storing the source document, dispatching to
// the active provider backend, and recording the resulting job state.
type Service struct {
	repo      *database.JobRepository
	store     storage.Provider
	proc      *docproc.Processor
	providers *provider.Registry
	cfg       *config.Config
	audit     *audit.Recorder
}

func NewService(repo *database.JobRepository, store storage.Provider, proc *docproc.Processor, providers *provider.Registry, cfg *config.Config, rec *audit.Recorder) *Service {
	return &Service{repo: repo, store: store, proc: proc, providers: providers, cfg: cfg, audit: rec}
}

// SubmitInput carries the raw request for a new outbound fax.
type SubmitInput struct {
	ToNumber    string
	FileName    string
	ContentType string
	Data        []byte
}

// Submit validates the request, persists and converts the document,
// mints a retrieval token where the active backend needs one, and
// dispatches to the provider. It returns the job in whatever state the
// pipeline reached — queued jobs never reach this return path; it's
// in_progress or FAILED, or SUCCESS for the disabled backend, which
// completes without a callback.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*models.Job, error) {
	if err := validateDestination(in.ToNumber); err != nil {
		return nil, err
	}
	if err := validateSize(len(in.Data), s.cfg.Fax.MaxFileSizeMB); err != nil {
		return nil, err
	}
	isText, err := validateContentType(in.ContentType, in.FileName)
	if err != nil {
		return nil, err
	}

	backend := s.providers.ActiveName()
	job := &models.Job{
		ID:       uuid.NewString(),
		ToNumber: in.ToNumber,
		Status:   models.JobStatusQueued,
		Backend:  backend,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	pdfPath := fmt.Sprintf("jobs/%s/fax.pdf", job.ID)
	if err := s.materializePDF(ctx, job.ID, in.Data, isText, pdfPath); err != nil {
		_ = s.repo.MarkFailed(ctx, job.ID, "document conversion failed")
		s.audit.Record(ctx, "", "job.failed", "Job", job.ID, "document conversion failed")
		job.Status = models.JobStatusFailed
		return job, nil
	}

	var tiffPath string
	if backend == provider.BackendSIP {
		tiffPath = fmt.Sprintf("jobs/%s/fax.tiff", job.ID)
		if err := s.convertToTIFF(ctx, pdfPath, tiffPath); err != nil {
			_ = s.repo.MarkFailed(ctx, job.ID, "tiff conversion failed")
			s.audit.Record(ctx, "", "job.failed", "Job", job.ID, "tiff conversion failed")
			job.Status = models.JobStatusFailed
			return job, nil
		}
	}

	pages, err := s.countPages(ctx, pdfPath)
	if err != nil {
		logger.LogProviderEvent(ctx, backend, job.ID, "count_pages", false, err.Error())
	}

	if err := s.repo.SetArtifactPaths(ctx, job.ID, pdfPath, tiffPath, pages); err != nil {
		return nil, fmt.Errorf("failed to persist artifact paths: %w", err)
	}

	sendReq := provider.SendRequest{
		JobID:    job.ID,
		ToNumber: in.ToNumber,
		PDFPath:  pdfPath,
		TIFFPath: tiffPath,
	}

	if backend == provider.BackendPhaxio {
		token, expiresAt, url, err := s.mintArtifactURL(job.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to mint artifact token: %w", err)
		}
		if err := s.repo.SetArtifactToken(ctx, job.ID, token, url, expiresAt); err != nil {
			return nil, fmt.Errorf("failed to persist artifact token: %w", err)
		}
		sendReq.PDFURL = url
	}

	active, err := s.providers.Active()
	if err != nil {
		return nil, fmt.Errorf("no active provider: %w", err)
	}

	result, sendErr := active.Send(ctx, sendReq)
	if sendErr != nil {
		logger.LogProviderEvent(ctx, backend, job.ID, "send", false, sendErr.Error())
		if err := s.repo.UpdateAfterSend(ctx, job.ID, "", models.JobStatusFailed, sanitizeProviderError(sendErr)); err != nil {
			return nil, fmt.Errorf("failed to record send failure: %w", err)
		}
		s.audit.Record(ctx, "", "job.failed", "Job", job.ID, backend+" send failed")
		job.Status = models.JobStatusFailed
		return job, nil
	}

	logger.LogProviderEvent(ctx, backend, job.ID, "send", true, "")
	if err := s.repo.UpdateAfterSend(ctx, job.ID, result.ProviderSID, models.JobStatusInProgress, ""); err != nil {
		return nil, fmt.Errorf("failed to record send result: %w", err)
	}
	s.audit.Record(ctx, "", "job.dispatched", "Job", job.ID, backend)

	job.Status = models.JobStatusInProgress
	job.ProviderSID = result.ProviderSID

	// The disabled backend has no callback to wait for: it completes at once.
	if backend == provider.BackendDisabled {
		if _, err := s.repo.CompleteFromCallback(ctx, result.ProviderSID, models.JobStatusSuccess, nil, ""); err != nil {
			return nil, fmt.Errorf("failed to record disabled-backend completion: %w", err)
		}
		s.audit.Record(ctx, "", "job."+models.JobStatusSuccess, "Job", job.ID, backend)
		job.Status = models.JobStatusSuccess
	}
	return job, nil
}

func (s *Service) materializePDF(ctx context.Context, jobID string, data []byte, isText bool, pdfPath string) error {
	if !isText {
		return s.store.Put(ctx, pdfPath, bytes.NewReader(data), int64(len(data)), "application/pdf")
	}

	tmpOut := fmt.Sprintf("/tmp/faxbot-%s.pdf", jobID)
	if err := s.proc.TextToPDF(ctx, string(data), tmpOut); err != nil {
		return err
	}

	f, err := openAndRemove(tmpOut)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	return s.store.Put(ctx, pdfPath, f, info.Size(), "application/pdf")
}

func (s *Service) convertToTIFF(ctx context.Context, pdfPath, tiffPath string) error {
	localPDF := fmt.Sprintf("/tmp/faxbot-src-%s.pdf", uuid.NewString())
	localTIFF := fmt.Sprintf("/tmp/faxbot-out-%s.tiff", uuid.NewString())

	if err := downloadToLocal(ctx, s.store, pdfPath, localPDF); err != nil {
		return err
	}
	defer removeQuiet(localPDF)

	if err := s.proc.PDFToTIFF(ctx, localPDF, localTIFF); err != nil {
		return err
	}
	defer removeQuiet(localTIFF)

	f, err := openAndRemove(localTIFF)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	return s.store.Put(ctx, tiffPath, f, info.Size(), "image/tiff")
}

func (s *Service) countPages(ctx context.Context, pdfPath string) (*int, error) {
	localPDF := fmt.Sprintf("/tmp/faxbot-count-%s.pdf", uuid.NewString())
	if err := downloadToLocal(ctx, s.store, pdfPath, localPDF); err != nil {
		return nil, err
	}
	defer removeQuiet(localPDF)

	n, err := s.proc.CountPages(ctx, localPDF)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *Service) mintArtifactURL(jobID string) (token string, expiresAt time.Time, url string, err error) {
	ttl := s.cfg.Fax.PDFTokenTTL
	token, expiresAt, err = crypto.MintArtifactToken(jobID, "outbound", ttl)
	if err != nil {
		return "", time.Time{}, "", err
	}
	url = fmt.Sprintf("%s/fax/%s/pdf?token=%s", s.cfg.Server.PublicAPIURL, jobID, token)
	return token, expiresAt, url, nil
}

func validateDestination(to string) error {
	if !destinationPattern.MatchString(to) {
		return apperrors.ErrInvalidDestination
	}
	return nil
}

func validateSize(size int, maxMB int) error {
	limit := maxMB * 1024 * 1024
	if size > limit {
		return apperrors.ErrFileTooLarge
	}
	return nil
}

// validateContentType reports whether the upload is plain text (true)
// or PDF (false); anything else is rejected.
func validateContentType(contentType, fileName string) (bool, error) {
	switch contentType {
	case "application/pdf":
		return false, nil
	case "text/plain":
		return true, nil
	}
	return false, apperrors.ErrUnsupportedMediaType
}

// sanitizeProviderError strips raw provider error text down to a
// caller-safe message: never echo provider internals back verbatim.
func sanitizeProviderError(err error) string {
	if appErr, ok := apperrors.IsAppError(err); ok {
		return appErr.Message
	}
	return "provider send failed"
}
