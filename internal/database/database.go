package database

import (
	"github.com/oddsline/settlement-api/internal/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewDatabase opens the run-history database and migrates its schema.
func NewDatabase(path string) (*gorm.DB, error) {
	if path == "" {
		path = "settlement.db"
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&store.Run{}, &store.RunEvent{}); err != nil {
		return nil, err
	}

	return db, nil
}
