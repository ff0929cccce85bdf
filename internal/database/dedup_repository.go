package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/faxbot/faxbot/internal/models"
)

// DedupRepository backs webhook idempotency: a unique index on
// (provider_sid, event_type) lets a duplicate delivery be detected with a
// single insert rather than a separate read-then-write race.
type DedupRepository struct {
	db *bun.DB
}

func NewDedupRepository(db *bun.DB) *DedupRepository {
	return &DedupRepository{db: db}
}

// TryInsert attempts to record a (providerSID, eventType) pair as seen.
// It returns (true, nil) the first time the pair is observed, and
// (false, nil) on every subsequent duplicate — the caller should treat
// the latter as "already processed" and respond 200 without reapplying
// the event.
func (r *DedupRepository) TryInsert(ctx context.Context, providerSID, eventType string) (bool, error) {
	entry := &models.CallbackDedupEntry{
		ProviderSID: providerSID,
		EventType:   eventType,
	}

	_, err := r.db.NewInsert().Model(entry).Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert dedup entry: %w", err)
	}
	return true, nil
}

// PurgeOlderThan deletes dedup rows older than the retention window
// (default 48h per spec), bounding table growth since entries serve no
// purpose once a duplicate redelivery is no longer plausible.
func (r *DedupRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := r.db.NewDelete().
		Model((*models.CallbackDedupEntry)(nil)).
		Where("seen_at < ?", cutoff).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to purge dedup entries: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read purge row count: %w", err)
	}
	return int(affected), nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	// Fallback for drivers that don't expose SQLState: pgdriver/lib/pq both
	// surface the constraint text in the error string.
	return strings.Contains(err.Error(), "duplicate key value violates unique constraint") ||
		strings.Contains(err.Error(), "23505")
}
