package database

import (
	"context"

	"github.com/faxbot/faxbot/internal/logger"
	"github.com/faxbot/faxbot/internal/models"
)

// AutoMigrate creates every table from its bun model if it does not already
// exist. It is an alternative to the versioned migrations in migrations.go;
// cmd/faxbotd runs RunMigrations at boot and does not call AutoMigrate.
func AutoMigrate(ctx context.Context) error {
	logger.Println("Starting auto-migration...")

	models.RegisterModels(DB)

	for _, model := range models.GetAllModels() {
		if _, err := DB.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}

	logger.Println("Auto-migration completed successfully")
	return nil
}

// DropAllTables removes every managed table. Development/test use only.
func DropAllTables(ctx context.Context) error {
	logger.Println("Dropping all tables...")

	allModels := models.GetAllModels()
	for i := len(allModels) - 1; i >= 0; i-- {
		if _, err := DB.NewDropTable().Model(allModels[i]).IfExists().Cascade().Exec(ctx); err != nil {
			return err
		}
	}

	logger.Println("All tables dropped successfully")
	return nil
}

// ResetDatabase drops and recreates every table. Development/test use only.
func ResetDatabase(ctx context.Context) error {
	if err := DropAllTables(ctx); err != nil {
		return err
	}
	return AutoMigrate(ctx)
}
