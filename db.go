package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"statrater/migrations"
	"statrater/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var db *gorm.DB

func initDB() {
	var err error
	dsn := appConfig.DSN
	if dsn == "" {
		log.Fatal("DB_DSN is not set. This project requires a Postgres DSN in DB_DSN.")
	}
	db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect postgres database:", err)
	}
	// Schema migrations are controlled by DB_AUTO_MIGRATE (default true). Permission errors are logged and ignored.
	shouldMigrate := appConfig.AutoMigrate
	// roles first so the users FK can be applied safely
	if shouldMigrate {
		if err := db.AutoMigrate(&models.Role{}); err != nil {
			log.Printf("migration warning (roles): %v", err)
		}
	}
	seedRoles()

	if shouldMigrate {
		// Migrate models individually so a failure on one doesn't block others
		for _, m := range []struct {
			name  string
			model any
		}{
			{"users", &models.User{}},
			{"presets", &models.Preset{}},
			{"ratings", &models.Rating{}},
			{"refresh_tokens", &models.RefreshToken{}},
		} {
			if err := db.AutoMigrate(m.model); err != nil {
				log.Printf("migration warning (%s): %v", m.name, err)
			}
		}
		if err := migrations.Up(context.Background(), dsn); err != nil {
			log.Printf("migration warning (sql): %v", err)
		}
	}
	seedDB()
}

func seedRoles() {
	if err := models.EnsureRoles(db); err != nil {
		log.Printf("seed roles: %v", err)
	}
}

func seedDB() {
	seedRoles()

	// Check if admin user exists
	var count int64
	db.Model(&models.User{}).Where("username = ?", "admin").Count(&count)
	if count == 0 {
		if _, err := models.CreateUser(db, "admin", "admin123", models.RoleAdministrator, ""); err != nil {
			log.Printf("failed to seed admin user: %v", err)
		} else {
			log.Println("Seeded admin user: username=admin, password=admin123")
		}
	}
	ensureUploadBase()
}

// ensureUploadBase creates the base uploads directory.
func ensureUploadBase() {
	base := uploadBaseDir()
	if err := os.MkdirAll(base, 0755); err != nil {
		log.Printf("failed to create upload base dir %s: %v", base, err)
	}
}

// uploadBaseDir returns the base directory for screenshots (UPLOAD_BASE).
func uploadBaseDir() string {
	if v := os.Getenv("UPLOAD_BASE"); v != "" {
		return v
	}
	if appConfig.UploadBase != "" {
		return appConfig.UploadBase
	}
	return "uploads"
}

// userUploadDir is where screenshots of one user are kept.
func userUploadDir(userID uint) string {
	return filepath.Join(uploadBaseDir(), strconv.FormatUint(uint64(userID), 10))
}
