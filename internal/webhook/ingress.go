// Package webhook handles inbound provider callbacks: signature
// verification, idempotent dedup, and applying the resulting terminal
// state to the originating job.
package webhook

import (
	"context"
	"fmt"
	"net/http"

	"github.com/faxbot/faxbot/internal/audit"
	"github.com/faxbot/faxbot/internal/database"
	apperrors "github.com/faxbot/faxbot/internal/errors"
	"github.com/faxbot/faxbot/internal/logger"
	"github.com/faxbot/faxbot/internal/models"
	"github.com/faxbot/faxbot/internal/provider"
)

// Ingress applies a verified provider callback to job state.
type Ingress struct {
	jobs  *database.JobRepository
	dedup *database.DedupRepository
	audit *audit.Recorder
}

func NewIngress(jobs *database.JobRepository, dedup *database.DedupRepository, rec *audit.Recorder) *Ingress {
	return &Ingress{jobs: jobs, dedup: dedup, audit: rec}
}

// Handle verifies, deduplicates, and applies one callback delivery. A
// duplicate delivery for a (providerSID, eventType) pair we've already
// seen is reported via deduped=true rather than an error — callers
// should still respond 200 so the provider stops retrying.
func (ing *Ingress) Handle(ctx context.Context, backend string, p provider.Provider, r *http.Request, body []byte) (deduped bool, err error) {
	if err := p.VerifyCallback(r, body); err != nil {
		logger.LogWebhookEvent(ctx, backend, "", "", false, err)
		return false, err
	}

	event, err := p.ParseCallback(body)
	if err != nil {
		logger.LogWebhookEvent(ctx, backend, "", "", false, err)
		return false, err
	}

	fresh, err := ing.dedup.TryInsert(ctx, event.ProviderSID, event.EventType)
	if err != nil {
		return false, fmt.Errorf("failed to record dedup entry: %w", err)
	}
	if !fresh {
		logger.LogWebhookEvent(ctx, backend, event.EventType, event.ProviderSID, true, nil)
		return true, nil
	}

	status := normalizeStatus(event.Status)
	affected, err := ing.jobs.CompleteFromCallback(ctx, event.ProviderSID, status, event.Pages, event.Error)
	if err != nil {
		return false, fmt.Errorf("failed to apply callback to job: %w", err)
	}

	logger.LogWebhookEvent(ctx, backend, event.EventType, event.ProviderSID, false, nil)

	if affected == 0 {
		// Either the SID is unknown, or the job already reached a
		// terminal state — the absorbing-state guard in
		// CompleteFromCallback's WHERE clause makes this a no-op
		// rather than an error so a late/duplicate delivery can never
		// regress a terminal job.
		return false, nil
	}

	ing.audit.Record(ctx, "", "job."+status, "Job", event.ProviderSID, backend+" callback: "+event.Status)

	return false, nil
}

func normalizeStatus(providerStatus string) string {
	switch providerStatus {
	case "SUCCESS", "success", "delivered", "completed":
		return models.JobStatusSuccess
	case "FAILED", "failed", "error":
		return models.JobStatusFailed
	default:
		return models.JobStatusFailed
	}
}

// ErrUnknownBackend is returned when a webhook route is invoked for a
// backend that has no registered provider.
var ErrUnknownBackend = apperrors.WithDetails(apperrors.ErrValidationFailed, "unknown webhook backend")
