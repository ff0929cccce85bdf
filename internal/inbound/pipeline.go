// Package inbound implements the receiving side of fax ingestion:
// routing an inbound delivery (cloud fetch, direct upload, or an
// internal PBX hook) to a mailbox, persisting the artifact, and
// minting a retrieval token.
package inbound

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/faxbot/faxbot/config"
	"github.com/faxbot/faxbot/internal/crypto"
	"github.com/faxbot/faxbot/internal/database"
	"github.com/faxbot/faxbot/internal/logger"
	"github.com/faxbot/faxbot/internal/models"
	"github.com/faxbot/faxbot/internal/storage"
)

const defaultMailbox = "default"

// Delivery is a backend-agnostic inbound fax, already fetched/received
// and ready to be persisted.
type Delivery struct {
	Backend     string
	ProviderSID string
	FromNumber  string
	ToNumber    string
	Pages       *int
	Data        []byte
}

// Pipeline persists an inbound delivery, routes it to a mailbox, and
// mints its retrieval token.
type Pipeline struct {
	repo     *database.InboundRepository
	mailbox  *database.MailboxRepository
	store    storage.Provider
	cfg      *config.Config
}

func NewPipeline(repo *database.InboundRepository, mailbox *database.MailboxRepository, store storage.Provider, cfg *config.Config) *Pipeline {
	return &Pipeline{repo: repo, mailbox: mailbox, store: store, cfg: cfg}
}

// Ingest routes, stores, and registers one inbound delivery.
func (p *Pipeline) Ingest(ctx context.Context, d Delivery) (*models.InboundFax, error) {
	mailboxLabel := p.routeToMailbox(ctx, d.ToNumber)

	id := uuid.NewString()
	pdfPath := fmt.Sprintf("inbound/%s/fax.pdf", id)

	sum := sha256.Sum256(d.Data)
	sizeBytes := int64(len(d.Data))
	now := time.Now()
	retentionUntil := now.AddDate(0, 0, p.cfg.Inbound.RetentionDays)

	rec := &models.InboundFax{
		ID:             id,
		FromNumber:     d.FromNumber,
		ToNumber:       d.ToNumber,
		Status:         models.InboundStatusReceived,
		Backend:        d.Backend,
		ProviderSID:    d.ProviderSID,
		Pages:          d.Pages,
		SizeBytes:      &sizeBytes,
		SHA256:         hex.EncodeToString(sum[:]),
		PDFPath:        pdfPath,
		MailboxLabel:   mailboxLabel,
		RetentionUntil: &retentionUntil,
		ReceivedAt:     &now,
	}

	if err := p.store.Put(ctx, pdfPath, bytes.NewReader(d.Data), sizeBytes, "application/pdf"); err != nil {
		return nil, fmt.Errorf("failed to store inbound artifact: %w", err)
	}

	if err := p.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to create inbound record: %w", err)
	}

	token, expiresAt, err := crypto.MintArtifactToken(id, "inbound", p.cfg.Inbound.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to mint artifact token: %w", err)
	}
	if err := p.repo.SetArtifactToken(ctx, id, token, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to persist artifact token: %w", err)
	}
	rec.PDFToken = token
	rec.PDFTokenExpires = &expiresAt

	logger.LogProviderEvent(ctx, d.Backend, id, "inbound_received", true, "")

	return rec, nil
}

// routeToMailbox resolves the destination number to a mailbox label,
// falling back to the default mailbox when no rule matches.
func (p *Pipeline) routeToMailbox(ctx context.Context, toNumber string) string {
	rule, err := p.mailbox.RuleForNumber(ctx, toNumber)
	if err != nil || rule == nil {
		return defaultMailbox
	}
	return rule.MailboxLabel
}
