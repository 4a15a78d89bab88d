package database

import (
	"errors"
	"log"

	"github.com/campus-engage/engage-api/internal/auth"
	"github.com/campus-engage/engage-api/internal/config"
	"github.com/campus-engage/engage-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func Connect(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto Migrate
	err = db.AutoMigrate(
		&models.User{},
		&models.Quiz{},
		&models.Question{},
		&models.Completion{},
		&models.Gift{},
		&models.Receipt{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate: %v", err)
	}

	return db
}

// EnsureRootUser provisions the admin account from config on first start.
func EnsureRootUser(db *gorm.DB, cfg *config.Config, authHandler *auth.AuthHandler) error {
	if cfg.RootUserEmail == "" {
		return nil
	}

	var existing models.User
	err := db.Where("email = ?", cfg.RootUserEmail).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := authHandler.HashPassword(cfg.RootUserPassword)
	if err != nil {
		return err
	}

	root := models.User{
		Email:          cfg.RootUserEmail,
		FullName:       cfg.RootUserFullName,
		Role:           models.RoleAdmin,
		HashedPassword: hashed,
	}
	return db.Create(&root).Error
}
