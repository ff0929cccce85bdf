package models

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Recognized scopes.
const (
	ScopeFaxSend          = "fax:send"
	ScopeFaxRead          = "fax:read"
	ScopeInboundList      = "inbound:list"
	ScopeInboundRead      = "inbound:read"
	ScopeKeysManage       = "keys:manage"
	ScopeAdminPluginsRead = "admin:plugins:read"
	ScopeAdminPluginsWrite = "admin:plugins:write"
)

// AllScopes lists every scope recognized by the system, used by the
// bootstrap (admin) principal which implicitly holds all of them.
var AllScopes = []string{
	ScopeFaxSend,
	ScopeFaxRead,
	ScopeInboundList,
	ScopeInboundRead,
	ScopeKeysManage,
	ScopeAdminPluginsRead,
	ScopeAdminPluginsWrite,
}

// APIKey is an administratively managed bearer credential.
type APIKey struct {
	bun.BaseModel `bun:"table:api_keys,alias:ak"`

	KeyID       string     `bun:"key_id,pk" json:"key_id"`
	KeyHash     string     `bun:"key_hash,notnull" json:"-"`
	Name        string     `bun:"name" json:"name,omitempty"`
	Owner       string     `bun:"owner" json:"owner,omitempty"`
	Scopes      []string   `bun:"scopes,array" json:"scopes"`
	Note        string     `bun:"note" json:"note,omitempty"`
	CreatedAt   time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	LastUsedAt  *time.Time `bun:"last_used_at" json:"last_used_at,omitempty"`
	ExpiresAt   *time.Time `bun:"expires_at" json:"expires_at,omitempty"`
	RevokedAt   *time.Time `bun:"revoked_at" json:"revoked_at,omitempty"`
}

// Valid reports whether the key is currently usable: not revoked and not
// expired.
func (k *APIKey) Valid(now time.Time) bool {
	if k.RevokedAt != nil {
		return false
	}
	if k.ExpiresAt != nil && !k.ExpiresAt.After(now) {
		return false
	}
	return true
}

// HasScope reports whether the key carries scope.
func (k *APIKey) HasScope(scope string) bool {
	for _, s := range k.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// BeforeAppendModel sets CreatedAt on insert.
func (k *APIKey) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok {
		k.CreatedAt = time.Now()
	}
	return nil
}

// CallbackDedupEntry records that a (provider_sid, event_type) webhook event
// has already been processed, guarding at-most-once state mutation.
type CallbackDedupEntry struct {
	bun.BaseModel `bun:"table:callback_dedup,alias:cd"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	ProviderSID string    `bun:"provider_sid,notnull" json:"provider_sid"`
	EventType   string    `bun:"event_type,notnull" json:"event_type"`
	SeenAt      time.Time `bun:"seen_at,nullzero,notnull,default:current_timestamp" json:"seen_at"`
}

func (d *CallbackDedupEntry) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok {
		d.SeenAt = time.Now()
	}
	return nil
}
