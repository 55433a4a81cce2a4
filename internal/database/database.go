package database

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/filmlog/auditor/internal/models"
)

// Open bootstraps a SQLite database using the provided filesystem path.
func Open(dbPath string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	return db, nil
}

// Migrate creates or updates the two engine relations: the append-only audit
// log and the critical alerts table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.AuditEvent{}, &models.CriticalAlert{}); err != nil {
		return fmt.Errorf("migrate audit schema: %w", err)
	}
	return nil
}
