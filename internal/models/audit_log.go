package models

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// AuditLog records a security/audit event. ActorKeyID is the API key id
// responsible for the action, empty for unauthenticated failures.
type AuditLog struct {
	bun.BaseModel `bun:"table:audit_logs,alias:al"`

	ID         int64     `bun:"id,pk,autoincrement" json:"id"`
	ActorKeyID string    `bun:"actor_key_id" json:"actor_key_id,omitempty"`
	Action     string    `bun:"action,notnull" json:"action"` // e.g. "auth.denied", "job.dispatched", "job.failed"
	Entity     string    `bun:"entity,notnull" json:"entity"` // e.g. "Job", "APIKey"
	EntityID   string    `bun:"entity_id" json:"entity_id,omitempty"`
	Details    string    `bun:"details,type:jsonb,nullzero" json:"details,omitempty"`
	IPAddress  string    `bun:"ip_address,nullzero" json:"ip_address,omitempty"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// BeforeAppendModel sets CreatedAt on insert.
func (al *AuditLog) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok {
		al.CreatedAt = time.Now()
	}
	return nil
}
