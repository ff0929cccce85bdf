package database

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/faxbot/faxbot/internal/models"
)

// AuditRepository persists audit_logs rows. Entries are insert-only —
// nothing ever updates or deletes an audit row short of the operator
// truncating the table directly.
type AuditRepository struct {
	db *bun.DB
}

func NewAuditRepository(db *bun.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Insert records one audit event. Details is opaque JSON and may be
// empty.
func (r *AuditRepository) Insert(ctx context.Context, entry *models.AuditLog) error {
	if _, err := r.db.NewInsert().Model(entry).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}
	return nil
}
