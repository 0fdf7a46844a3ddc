package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"release-tracker-api/internal/domain"
)

// Models lists every persisted domain model in dependency order
func Models() []interface{} {
	return []interface{}{
		&domain.Role{},
		&domain.User{},
		&domain.Platform{},
		&domain.Channel{},
		&domain.ReleaseType{},
		&domain.Release{},
		&domain.TaskType{},
		&domain.TaskTypeApprover{},
		&domain.FeatureType{},
		&domain.FeatureTypeTaskType{},
		&domain.Feature{},
		&domain.Task{},
		&domain.AttachmentLink{},
		&domain.TaskComment{},
		&domain.ChangeLog{},
	}
}

// AutoMigrate creates or updates tables, indexes and foreign keys for all models
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to run auto-migration: %w", err)
	}
	return nil
}

// SafeAutoMigrate migrates one model at a time, logging which tables were created
func SafeAutoMigrate(db *gorm.DB, logger *zap.Logger) error {
	migrator := db.Migrator()
	models := Models()

	logger.Info("Starting auto-migration", zap.Int("total_models", len(models)))

	for _, m := range models {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(m); err != nil {
			return fmt.Errorf("failed to parse model %T: %w", m, err)
		}
		table := stmt.Schema.Table
		existed := migrator.HasTable(m)

		if err := db.AutoMigrate(m); err != nil {
			logger.Error("Failed to migrate table",
				zap.String("table", table),
				zap.Bool("table_existed", existed),
				zap.Error(err),
			)
			return fmt.Errorf("failed to migrate table %s: %w", table, err)
		}

		logger.Debug("Migrated table",
			zap.String("table", table),
			zap.Bool("was_existing", existed),
		)
	}

	logger.Info("Auto-migration completed", zap.Int("tables_migrated", len(models)))
	return nil
}
