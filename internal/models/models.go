package models

import (
	"github.com/uptrace/bun"
)

// RegisterModels registers every entity with bun so relations and table
// names resolve correctly.
func RegisterModels(db *bun.DB) {
	db.RegisterModel(
		(*Job)(nil),
		(*InboundFax)(nil),
		(*Mailbox)(nil),
		(*InboundRule)(nil),
		(*APIKey)(nil),
		(*CallbackDedupEntry)(nil),
		(*AuditLog)(nil),
	)
}

// GetAllModels returns every model for auto-migration, in creation order.
func GetAllModels() []interface{} {
	return []interface{}{
		(*Mailbox)(nil),
		(*InboundRule)(nil),
		(*APIKey)(nil),
		(*Job)(nil),
		(*InboundFax)(nil),
		(*CallbackDedupEntry)(nil),
		(*AuditLog)(nil),
	}
}
