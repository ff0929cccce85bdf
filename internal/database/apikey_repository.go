package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/faxbot/faxbot/internal/models"
)

// APIKeyRepository handles persistence for administrative API keys.
type APIKeyRepository struct {
	db *bun.DB
}

func NewAPIKeyRepository(db *bun.DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

func (r *APIKeyRepository) Create(ctx context.Context, key *models.APIKey) error {
	_, err := r.db.NewInsert().Model(key).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create API key: %w", err)
	}
	return nil
}

func (r *APIKeyRepository) GetByKeyID(ctx context.Context, keyID string) (*models.APIKey, error) {
	key := new(models.APIKey)
	err := r.db.NewSelect().Model(key).Where("key_id = ?", keyID).Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get API key: %w", err)
	}
	return key, nil
}

func (r *APIKeyRepository) List(ctx context.Context) ([]models.APIKey, error) {
	var keys []models.APIKey
	err := r.db.NewSelect().Model(&keys).OrderExpr("created_at DESC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list API keys: %w", err)
	}
	return keys, nil
}

// Revoke sets revoked_at, making the key permanently unusable.
func (r *APIKeyRepository) Revoke(ctx context.Context, keyID string) error {
	_, err := r.db.NewUpdate().
		Model((*models.APIKey)(nil)).
		Set("revoked_at = ?", time.Now()).
		Where("key_id = ?", keyID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to revoke API key: %w", err)
	}
	return nil
}

// Rotate replaces key_hash with a freshly derived hash, invalidating the
// previous secret while preserving scopes/name/owner.
func (r *APIKeyRepository) Rotate(ctx context.Context, keyID, newHash string) error {
	_, err := r.db.NewUpdate().
		Model((*models.APIKey)(nil)).
		Set("key_hash = ?", newHash).
		Where("key_id = ?", keyID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to rotate API key: %w", err)
	}
	return nil
}

// TouchLastUsed records a successful authentication. Callers invoke this
// best-effort, off the request's critical path.
func (r *APIKeyRepository) TouchLastUsed(ctx context.Context, keyID string) error {
	_, err := r.db.NewUpdate().
		Model((*models.APIKey)(nil)).
		Set("last_used_at = ?", time.Now()).
		Where("key_id = ?", keyID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to touch last_used_at: %w", err)
	}
	return nil
}
