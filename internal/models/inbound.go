package models

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Inbound status values.
const (
	InboundStatusReceived = "received"
	InboundStatusFailed   = "failed"
)

// InboundFax is one received fax and its artifact.
type InboundFax struct {
	bun.BaseModel `bun:"table:inbound_faxes,alias:ib"`

	ID               string     `bun:"id,pk" json:"id"`
	FromNumber       string     `bun:"from_number" json:"from_number,omitempty"`
	ToNumber         string     `bun:"to_number" json:"to_number,omitempty"`
	Status           string     `bun:"status,notnull" json:"status"`
	Backend          string     `bun:"backend,notnull" json:"backend"`
	ProviderSID      string     `bun:"provider_sid" json:"provider_sid,omitempty"`
	Pages            *int       `bun:"pages" json:"pages,omitempty"`
	SizeBytes        *int64     `bun:"size_bytes" json:"size_bytes,omitempty"`
	SHA256           string     `bun:"sha256" json:"sha256,omitempty"`
	PDFPath          string     `bun:"pdf_path" json:"-"`
	TIFFPath         string     `bun:"tiff_path" json:"-"`
	MailboxLabel     string     `bun:"mailbox_label" json:"mailbox_label,omitempty"`
	PDFToken         string     `bun:"pdf_token" json:"-"`
	PDFTokenExpires  *time.Time `bun:"pdf_token_expires_at" json:"-"`
	RetentionUntil   *time.Time `bun:"retention_until" json:"retention_until,omitempty"`
	Error            string     `bun:"error" json:"error,omitempty"`
	CreatedAt        time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	ReceivedAt        *time.Time `bun:"received_at" json:"received_at,omitempty"`
	UpdatedAt        time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// BeforeAppendModel keeps timestamps current on insert/update.
func (ib *InboundFax) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.InsertQuery:
		now := time.Now()
		ib.CreatedAt = now
		ib.UpdatedAt = now
	case *bun.UpdateQuery:
		ib.UpdatedAt = time.Now()
	}
	return nil
}

// Mailbox is a named delivery bucket for inbound faxes.
type Mailbox struct {
	bun.BaseModel `bun:"table:mailboxes,alias:mb"`

	Label     string    `bun:"label,pk" json:"label"`
	Note      string    `bun:"note" json:"note,omitempty"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

func (m *Mailbox) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok {
		m.CreatedAt = time.Now()
	}
	return nil
}

// InboundRule maps a destination number to a mailbox label. One active rule
// per to_number (enforced by a unique index).
type InboundRule struct {
	bun.BaseModel `bun:"table:inbound_rules,alias:ir"`

	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	ToNumber     string    `bun:"to_number,unique,notnull" json:"to_number"`
	MailboxLabel string    `bun:"mailbox_label,notnull" json:"mailbox_label"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

func (r *InboundRule) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok {
		r.CreatedAt = time.Now()
	}
	return nil
}
