package config

import (
	"fmt"
	"log"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// ConnectDatabase opens the database named by cfg.DatabaseURL.
// postgres:// and postgresql:// URLs select PostgreSQL; anything else is a
// SQLite path, optionally prefixed with sqlite://.
func ConnectDatabase(cfg *Config) error {
	databaseURL := cfg.GetDatabaseURL()
	if databaseURL == "" {
		return fmt.Errorf("failed to connect to database: DATABASE_URL is empty")
	}

	dialector := Dialector(databaseURL)

	var err error
	DB, err = gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if dialector.Name() == "sqlite" {
		// SQLite allows one writer; serialize through a single connection
		sqlDB, err := DB.DB()
		if err != nil {
			return fmt.Errorf("failed to get database instance: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	log.Printf("Database connection established successfully (%s)", dialector.Name())
	return nil
}

// Dialector returns the gorm dialector for a database URL
func Dialector(databaseURL string) gorm.Dialector {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		return postgres.Open(databaseURL)
	}
	return sqlite.Open(sqliteDSN(strings.TrimPrefix(databaseURL, "sqlite://")))
}

func sqliteDSN(path string) string {
	if strings.Contains(path, "_busy_timeout") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_busy_timeout=5000"
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}

// SetDB sets the database instance (primarily for testing)
func SetDB(db *gorm.DB) {
	DB = db
}
