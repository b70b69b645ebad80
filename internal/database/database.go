package database

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gatherhub/moderation-service/internal/config"
	"github.com/gatherhub/moderation-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Connect(cfg *config.Config) error {
	var err error
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// Unique-constraint races on event_reporters must surface as
		// gorm.ErrDuplicatedKey so the service can compensate.
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	slog.Info("database connected")
	return nil
}

// Migrate runs AutoMigrate for all moderation models.
func Migrate() error {
	return DB.AutoMigrate(
		&models.Report{},
		&models.EventReporter{},
		&models.ReportEscalation{},
		&models.BlockedReporter{},
		&models.Setting{},
		&models.ModerationEvent{},
	)
}

func Ping() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
