package database

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/mealmatch/backend/internal/models"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Models lists every persisted model, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.HouseholdRecord{},
		&models.Account{},
		&models.Recipe{},
	}
}

// RunMigrations brings the schema up to date. SQLite databases are
// auto-migrated from the models; Postgres runs the embedded SQL files once each.
func RunMigrations(db *gorm.DB, logger *zap.Logger) error {
	if db.Dialector.Name() == "sqlite" {
		logger.Info("using gorm auto-migration for sqlite")
		return db.AutoMigrate(Models()...)
	}
	return runSQLMigrations(db, migrationFiles, logger)
}

func runSQLMigrations(db *gorm.DB, files fs.FS, logger *zap.Logger) error {
	names, err := fs.Glob(files, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}
	sort.Strings(names)

	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, path := range names {
		name := strings.TrimPrefix(path, "migrations/")

		var count int64
		if err := db.Table("migrations").Where("name = ?", name).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if count > 0 {
			logger.Debug("skipping applied migration", zap.String("name", name))
			continue
		}

		content, err := fs.ReadFile(files, path)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", name, err)
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(string(content)).Error; err != nil {
				return fmt.Errorf("failed to execute migration %s: %w", name, err)
			}
			if err := tx.Exec("INSERT INTO migrations (name) VALUES (?)", name).Error; err != nil {
				return fmt.Errorf("failed to record migration %s: %w", name, err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		logger.Info("applied migration", zap.String("name", name))
	}

	return nil
}

// PendingMigrations lists the embedded SQL migrations not yet applied.
// SQLite databases are auto-migrated and never have pending files.
func PendingMigrations(db *gorm.DB) ([]string, error) {
	if db.Dialector.Name() == "sqlite" {
		return nil, nil
	}
	return pendingMigrations(db, migrationFiles)
}

func pendingMigrations(db *gorm.DB, files fs.FS) ([]string, error) {
	names, err := fs.Glob(files, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}
	sort.Strings(names)

	applied := map[string]bool{}
	if db.Migrator().HasTable("migrations") {
		var done []string
		if err := db.Table("migrations").Pluck("name", &done).Error; err != nil {
			return nil, fmt.Errorf("failed to read applied migrations: %w", err)
		}
		for _, name := range done {
			applied[name] = true
		}
	}

	var pending []string
	for _, path := range names {
		if name := strings.TrimPrefix(path, "migrations/"); !applied[name] {
			pending = append(pending, name)
		}
	}
	return pending, nil
}
