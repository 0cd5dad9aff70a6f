package database

import (
	"fmt"

	"github.com/Ryoga-88/ClassNotebook/config"
	"github.com/Ryoga-88/ClassNotebook/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open establishes a connection to the database
func Open(cfg config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPass, cfg.DBName, cfg.DBPort)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// Migrate automatically migrates the database schema
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Room{},
		&models.RoomAccess{},
		&models.Message{},
		&models.FileRecord{},
	)
}
