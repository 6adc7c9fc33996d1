package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rubrica/rubrica-api/internal/models"
)

// ConnectPostgres opens the grading database from the provided DSN. Query
// logging stays at warn level; request-scoped logging is handled by the
// service layer.
func ConnectPostgres(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn must not be empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return db, nil
}

// Migrate creates or updates the rubric, assignee, and assessment tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Rubric{}, &models.Assignee{}, &models.Assessment{}); err != nil {
		return fmt.Errorf("failed to migrate grading schema: %w", err)
	}
	return nil
}
