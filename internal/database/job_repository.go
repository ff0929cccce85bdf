package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/faxbot/faxbot/internal/models"
)

// JobRepository handles persistence for outbound fax jobs.
type JobRepository struct {
	db *bun.DB
}

func NewJobRepository(db *bun.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create inserts a new job row.
func (r *JobRepository) Create(ctx context.Context, job *models.Job) error {
	_, err := r.db.NewInsert().Model(job).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// GetByID returns a job by its opaque id, or nil if not found.
func (r *JobRepository) GetByID(ctx context.Context, id string) (*models.Job, error) {
	job := new(models.Job)
	err := r.db.NewSelect().Model(job).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// UpdateAfterSend records the result of a provider.Send() call: moving the
// job to in_progress with its provider_sid, or to FAILED with a sanitized
// error. It only matches queued jobs; MarkFailed covers failures before
// dispatch.
func (r *JobRepository) UpdateAfterSend(ctx context.Context, id string, providerSID string, newStatus string, sendErr string) error {
	_, err := r.db.NewUpdate().
		Model((*models.Job)(nil)).
		Set("provider_sid = ?", providerSID).
		Set("status = ?", newStatus).
		Set("error = ?", sendErr).
		Set("updated_at = ?", time.Now()).
		Where("id = ? AND status = ?", id, models.JobStatusQueued).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update job after send: %w", err)
	}
	return nil
}

// CompleteFromCallback applies a terminal webhook/PBX event. The WHERE
// clause only matches non-terminal jobs so a late duplicate delivery (after
// dedup already let one slip through, or a race) cannot un-terminate a job.
func (r *JobRepository) CompleteFromCallback(ctx context.Context, providerSID string, status string, pages *int, errMsg string) (int64, error) {
	q := r.db.NewUpdate().
		Model((*models.Job)(nil)).
		Set("status = ?", status).
		Set("updated_at = ?", time.Now()).
		Where("provider_sid = ? AND status = ?", providerSID, models.JobStatusInProgress)

	if pages != nil {
		q = q.Set("pages = ?", *pages)
	}
	if errMsg != "" {
		q = q.Set("error = ?", errMsg)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to complete job from callback: %w", err)
	}
	return res.RowsAffected()
}

// SetArtifactPaths records converted artifact storage references and page
// count ahead of dispatch.
func (r *JobRepository) SetArtifactPaths(ctx context.Context, id, pdfPath, tiffPath string, pages *int) error {
	q := r.db.NewUpdate().
		Model((*models.Job)(nil)).
		Set("pdf_path = ?", pdfPath).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id)

	if tiffPath != "" {
		q = q.Set("tiff_path = ?", tiffPath)
	}
	if pages != nil {
		q = q.Set("pages = ?", *pages)
	}

	_, err := q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to set artifact paths: %w", err)
	}
	return nil
}

// SetArtifactToken records the tokenized URL fields minted for a
// URL-fetch-class provider.
func (r *JobRepository) SetArtifactToken(ctx context.Context, id, token, pdfURL string, expiresAt time.Time) error {
	_, err := r.db.NewUpdate().
		Model((*models.Job)(nil)).
		Set("pdf_token = ?", token).
		Set("pdf_url = ?", pdfURL).
		Set("pdf_token_expires_at = ?", expiresAt).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to set artifact token: %w", err)
	}
	return nil
}

// MarkFailed transitions a job straight to FAILED (e.g. conversion failure
// before any provider contact).
func (r *JobRepository) MarkFailed(ctx context.Context, id, reason string) error {
	_, err := r.db.NewUpdate().
		Model((*models.Job)(nil)).
		Set("status = ?", models.JobStatusFailed).
		Set("error = ?", reason).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark job failed: %w", err)
	}
	return nil
}

// ListExpiredArtifactTokens returns jobs whose artifact retrieval token
// expired before the given time — jobs have no retention_until column;
// the retention sweeper only purges inbound records, job metadata is
// kept indefinitely.
func (r *JobRepository) ListExpiredArtifactTokens(ctx context.Context, before time.Time, limit int) ([]models.Job, error) {
	var jobs []models.Job
	err := r.db.NewSelect().
		Model(&jobs).
		Where("pdf_token_expires_at IS NOT NULL AND pdf_token_expires_at < ?", before).
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs with expired tokens: %w", err)
	}
	return jobs, nil
}
