package infra

import (
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"tokora/internal/config"
	"tokora/internal/models/db_models"
)

func InitPostgresql(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.PostgresURL), &gorm.Config{})
	if err != nil {
		logger.Error("Error connecting to database", zap.Error(err))
		return nil, err
	}

	if err := db.AutoMigrate(
		&db_models.User{},
		&db_models.Transaction{},
		&db_models.Ticket{},
	); err != nil {
		logger.Error("Error running migrations", zap.Error(err))
		return nil, err
	}

	return db, nil
}

func ClosePostgresql(db *gorm.DB, logger *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("Error getting database instance", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Error("Error closing database connection", zap.Error(err))
	}
}
