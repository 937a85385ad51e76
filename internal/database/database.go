package database

import (
	"fmt"

	"github.com/ummachristians-netizen/umma-christians/internal/config"
	"github.com/ummachristians-netizen/umma-christians/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens a MySQL connection and optionally runs auto-migration.
func Connect(cfg *config.AppConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:               cfg.DSN,
		DefaultStringSize: 191,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(resolveLogLevel(cfg)),
	})
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := Migrate(db); err != nil {
			return nil, fmt.Errorf("migration failed: %w", err)
		}
	}
	return db, nil
}

func resolveLogLevel(cfg *config.AppConfig) logger.LogLevel {
	if cfg.IsDev() {
		return logger.Info
	}
	return logger.Warn
}

// Migrate creates or updates the tables for every SQL-backed model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Program{},
		&models.Event{},
		&models.ActivityLog{},
		&models.SiteConfig{},
		&models.OfficeUser{},
	); err != nil {
		return err
	}

	if db.Dialector.Name() == "mysql" {
		if err := db.Exec("ALTER TABLE `events` MODIFY COLUMN `description` LONGTEXT NULL").Error; err != nil {
			return err
		}
	}
	return nil
}
