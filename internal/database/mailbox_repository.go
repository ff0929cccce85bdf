package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/faxbot/faxbot/internal/models"
)

// MailboxRepository handles persistence for inbound routing mailboxes and
// the rules that assign numbers to them.
type MailboxRepository struct {
	db *bun.DB
}

func NewMailboxRepository(db *bun.DB) *MailboxRepository {
	return &MailboxRepository{db: db}
}

func (r *MailboxRepository) Create(ctx context.Context, mailbox *models.Mailbox) error {
	_, err := r.db.NewInsert().Model(mailbox).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create mailbox: %w", err)
	}
	return nil
}

func (r *MailboxRepository) GetByLabel(ctx context.Context, label string) (*models.Mailbox, error) {
	mailbox := new(models.Mailbox)
	err := r.db.NewSelect().Model(mailbox).Where("label = ?", label).Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get mailbox: %w", err)
	}
	return mailbox, nil
}

func (r *MailboxRepository) List(ctx context.Context) ([]models.Mailbox, error) {
	var mailboxes []models.Mailbox
	err := r.db.NewSelect().Model(&mailboxes).OrderExpr("label ASC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list mailboxes: %w", err)
	}
	return mailboxes, nil
}

func (r *MailboxRepository) CreateRule(ctx context.Context, rule *models.InboundRule) error {
	_, err := r.db.NewInsert().Model(rule).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create inbound rule: %w", err)
	}
	return nil
}

// RuleForNumber returns the routing rule for an incoming destination
// number, or nil if no rule matches (caller falls back to the default
// mailbox).
func (r *MailboxRepository) RuleForNumber(ctx context.Context, toNumber string) (*models.InboundRule, error) {
	rule := new(models.InboundRule)
	err := r.db.NewSelect().Model(rule).Where("to_number = ?", toNumber).Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get inbound rule: %w", err)
	}
	return rule, nil
}

func (r *MailboxRepository) ListRules(ctx context.Context) ([]models.InboundRule, error) {
	var rules []models.InboundRule
	err := r.db.NewSelect().Model(&rules).OrderExpr("to_number ASC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list inbound rules: %w", err)
	}
	return rules, nil
}

func (r *MailboxRepository) DeleteRule(ctx context.Context, toNumber string) error {
	_, err := r.db.NewDelete().
		Model((*models.InboundRule)(nil)).
		Where("to_number = ?", toNumber).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete inbound rule: %w", err)
	}
	return nil
}
