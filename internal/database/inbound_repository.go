package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/faxbot/faxbot/internal/models"
)

// InboundRepository handles persistence for received faxes.
type InboundRepository struct {
	db *bun.DB
}

func NewInboundRepository(db *bun.DB) *InboundRepository {
	return &InboundRepository{db: db}
}

func (r *InboundRepository) Create(ctx context.Context, rec *models.InboundFax) error {
	_, err := r.db.NewInsert().Model(rec).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create inbound record: %w", err)
	}
	return nil
}

func (r *InboundRepository) GetByID(ctx context.Context, id string) (*models.InboundFax, error) {
	rec := new(models.InboundFax)
	err := r.db.NewSelect().Model(rec).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get inbound record: %w", err)
	}
	return rec, nil
}

// ListFilter narrows a GET /inbound listing query.
type ListFilter struct {
	ToNumber string
	Status   string
	Mailbox  string
	Since    *time.Time
	Page     int
	PerPage  int
}

// List returns inbound records matching filter, paginated, newest first.
func (r *InboundRepository) List(ctx context.Context, filter ListFilter) ([]models.InboundFax, int, error) {
	conditions := []string{}
	args := []interface{}{}

	if filter.ToNumber != "" {
		conditions = append(conditions, "to_number = ?")
		args = append(args, filter.ToNumber)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Mailbox != "" {
		conditions = append(conditions, "mailbox_label = ?")
		args = append(args, filter.Mailbox)
	}
	if filter.Since != nil {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, *filter.Since)
	}

	where := ""
	if len(conditions) > 0 {
		where = strings.Join(conditions, " AND ")
	}

	countQuery := r.db.NewSelect().Model((*models.InboundFax)(nil))
	if where != "" {
		countQuery = countQuery.Where(where, args...)
	}
	total, err := countQuery.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count inbound records: %w", err)
	}

	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 50
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	var records []models.InboundFax
	listQuery := r.db.NewSelect().Model(&records)
	if where != "" {
		listQuery = listQuery.Where(where, args...)
	}
	err = listQuery.
		OrderExpr("created_at DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Scan(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list inbound records: %w", err)
	}

	return records, total, nil
}

// MarkFailed records an ingress failure with a short sanitized error.
func (r *InboundRepository) MarkFailed(ctx context.Context, id, reason string) error {
	_, err := r.db.NewUpdate().
		Model((*models.InboundFax)(nil)).
		Set("status = ?", models.InboundStatusFailed).
		Set("error = ?", reason).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark inbound record failed: %w", err)
	}
	return nil
}

// SetArtifactToken stores the minted download token and expiry.
func (r *InboundRepository) SetArtifactToken(ctx context.Context, id, token string, expiresAt time.Time) error {
	_, err := r.db.NewUpdate().
		Model((*models.InboundFax)(nil)).
		Set("pdf_token = ?", token).
		Set("pdf_token_expires_at = ?", expiresAt).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to set inbound artifact token: %w", err)
	}
	return nil
}

// ListExpiredRetention returns records whose retention_until has passed
// and whose artifact is still stored, for the retention sweep to delete
// artifacts for.
func (r *InboundRepository) ListExpiredRetention(ctx context.Context, now time.Time, limit int) ([]models.InboundFax, error) {
	var records []models.InboundFax
	err := r.db.NewSelect().
		Model(&records).
		Where("retention_until IS NOT NULL AND retention_until < ?", now).
		Where("pdf_path <> ''").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list retention-expired records: %w", err)
	}
	return records, nil
}

// ClearArtifactPaths blanks storage references after the retention sweep
// deletes the underlying blobs, leaving the metadata row intact.
func (r *InboundRepository) ClearArtifactPaths(ctx context.Context, id string) error {
	_, err := r.db.NewUpdate().
		Model((*models.InboundFax)(nil)).
		Set("pdf_path = ''").
		Set("tiff_path = ''").
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear inbound artifact paths: %w", err)
	}
	return nil
}
