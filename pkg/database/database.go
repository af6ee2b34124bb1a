package database

import (
	"fmt"
	"log"
	"time"

	"github.com/Eursukkul/gym-reservation/config"
	"github.com/Eursukkul/gym-reservation/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the database selected by cfg.DBDriver and migrates the schema.
func Open(cfg *config.Config) *gorm.DB {
	switch cfg.DBDriver {
	case "sqlite":
		return NewSQLiteDB(cfg.SQLitePath)
	case "postgres", "":
		return NewPostgresDB(cfg.DSN())
	default:
		log.Fatalf("unsupported DB_DRIVER %q", cfg.DBDriver)
		return nil
	}
}

func NewPostgresDB(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(1 * time.Minute)

	if err := Migrate(db); err != nil {
		log.Fatalf("failed to auto-migrate: %v", err)
	}
	return db
}

// NewSQLiteDB opens a single-connection SQLite database. The one connection keeps in-memory
// databases alive and serializes writers.
func NewSQLiteDB(path string) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to open sqlite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		log.Fatalf("failed to auto-migrate: %v", err)
	}
	return db
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.TimeSlot{}, &models.Reservation{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
