package database

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/faxbot/faxbot/internal/logger"
)

// Migration tracks an applied versioned migration, for operators who run
// explicit migrations instead of relying on AutoMigrate.
type Migration struct {
	bun.BaseModel `bun:"table:migrations,alias:m"`

	ID        int64  `bun:"id,pk,autoincrement"`
	Name      string `bun:"name,unique,notnull"`
	AppliedAt string `bun:"applied_at,notnull,default:current_timestamp"`
}

type MigrationFunc func(ctx context.Context, db *bun.DB) error

type MigrationItem struct {
	Name string
	Up   MigrationFunc
}

// GetMigrations returns every migration in apply order, kept in lockstep
// with the models in internal/models.
func GetMigrations() []MigrationItem {
	return []MigrationItem{
		{Name: "001_create_mailboxes_table", Up: createMailboxesTable},
		{Name: "002_create_inbound_rules_table", Up: createInboundRulesTable},
		{Name: "003_create_api_keys_table", Up: createAPIKeysTable},
		{Name: "004_create_fax_jobs_table", Up: createFaxJobsTable},
		{Name: "005_create_inbound_faxes_table", Up: createInboundFaxesTable},
		{Name: "006_create_callback_dedup_table", Up: createCallbackDedupTable},
		{Name: "007_create_audit_logs_table", Up: createAuditLogsTable},
		{Name: "008_create_indexes", Up: createIndexes},
	}
}

// RunMigrations executes every pending migration, recording each as applied.
func RunMigrations(ctx context.Context) error {
	if err := createMigrationsTable(ctx, DB); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, migration := range GetMigrations() {
		exists, err := DB.NewSelect().
			Model((*Migration)(nil)).
			Where("name = ?", migration.Name).
			Exists(ctx)
		if err != nil {
			return fmt.Errorf("failed to check migration %s: %w", migration.Name, err)
		}

		if exists {
			logger.Printf("Migration %s already applied, skipping", migration.Name)
			continue
		}

		logger.Printf("Running migration: %s", migration.Name)
		if err := migration.Up(ctx, DB); err != nil {
			return fmt.Errorf("failed to run migration %s: %w", migration.Name, err)
		}

		record := &Migration{Name: migration.Name}
		if _, err := DB.NewInsert().Model(record).Exec(ctx); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", migration.Name, err)
		}

		logger.Printf("Migration %s completed successfully", migration.Name)
	}

	logger.Println("All migrations completed successfully")
	return nil
}

func createMigrationsTable(ctx context.Context, db *bun.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS migrations (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) UNIQUE NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

func createMailboxesTable(ctx context.Context, db *bun.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS mailboxes (
			label VARCHAR(255) PRIMARY KEY,
			note TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

func createInboundRulesTable(ctx context.Context, db *bun.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS inbound_rules (
			id SERIAL PRIMARY KEY,
			to_number VARCHAR(64) UNIQUE NOT NULL,
			mailbox_label VARCHAR(255) NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

func createAPIKeysTable(ctx context.Context, db *bun.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS api_keys (
			key_id VARCHAR(64) PRIMARY KEY,
			key_hash TEXT NOT NULL,
			name VARCHAR(255),
			owner VARCHAR(255),
			scopes TEXT[],
			note TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			last_used_at TIMESTAMP,
			expires_at TIMESTAMP,
			revoked_at TIMESTAMP
		)
	`)
	return err
}

func createFaxJobsTable(ctx context.Context, db *bun.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS fax_jobs (
			id VARCHAR(64) PRIMARY KEY,
			to_number VARCHAR(64) NOT NULL,
			status VARCHAR(32) NOT NULL,
			backend VARCHAR(32) NOT NULL,
			provider_sid VARCHAR(255),
			pages INTEGER,
			error TEXT,
			pdf_path TEXT,
			tiff_path TEXT,
			pdf_url TEXT,
			pdf_token VARCHAR(255),
			pdf_token_expires_at TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

func createInboundFaxesTable(ctx context.Context, db *bun.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS inbound_faxes (
			id VARCHAR(64) PRIMARY KEY,
			from_number VARCHAR(64),
			to_number VARCHAR(64),
			status VARCHAR(32) NOT NULL,
			backend VARCHAR(32) NOT NULL,
			provider_sid VARCHAR(255),
			pages INTEGER,
			size_bytes BIGINT,
			sha256 VARCHAR(64),
			pdf_path TEXT,
			tiff_path TEXT,
			mailbox_label VARCHAR(255),
			pdf_token VARCHAR(255),
			pdf_token_expires_at TIMESTAMP,
			retention_until TIMESTAMP,
			error TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			received_at TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

func createCallbackDedupTable(ctx context.Context, db *bun.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS callback_dedup (
			id SERIAL PRIMARY KEY,
			provider_sid VARCHAR(255) NOT NULL,
			event_type VARCHAR(64) NOT NULL,
			seen_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(provider_sid, event_type)
		)
	`)
	return err
}

func createAuditLogsTable(ctx context.Context, db *bun.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS audit_logs (
			id SERIAL PRIMARY KEY,
			actor_key_id VARCHAR(64),
			action VARCHAR(64) NOT NULL,
			entity VARCHAR(64) NOT NULL,
			entity_id VARCHAR(64),
			details JSONB,
			ip_address INET,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

func createIndexes(ctx context.Context, db *bun.DB) error {
	indexes := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_api_keys_key_id ON api_keys(key_id)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_inbound_rules_to_number ON inbound_rules(to_number)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_callback_dedup_sid_event ON callback_dedup(provider_sid, event_type)",
		"CREATE INDEX IF NOT EXISTS idx_fax_jobs_status ON fax_jobs(status)",
		"CREATE INDEX IF NOT EXISTS idx_fax_jobs_created_at ON fax_jobs(created_at)",
		"CREATE INDEX IF NOT EXISTS idx_inbound_faxes_to_number ON inbound_faxes(to_number)",
		"CREATE INDEX IF NOT EXISTS idx_inbound_faxes_status ON inbound_faxes(status)",
		"CREATE INDEX IF NOT EXISTS idx_inbound_faxes_mailbox_label ON inbound_faxes(mailbox_label)",
		"CREATE INDEX IF NOT EXISTS idx_inbound_faxes_retention_until ON inbound_faxes(retention_until)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_entity ON audit_logs(entity)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_created_at ON audit_logs(created_at)",
	}

	for _, indexSQL := range indexes {
		if _, err := db.ExecContext(ctx, indexSQL); err != nil {
			return err
		}
	}

	return nil
}
