package database

import (
	"fmt"
	"log"

	"github.com/sangkips/pharmacy-pos/internal/config"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Supported values of DB_DRIVER
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
)

func gormConfig(debug bool) *gorm.Config {
	level := logger.Warn
	if debug {
		level = logger.Info
	}
	return &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	}
}

// NewGormDB opens the SQL backend selected by cfg.Driver.
func NewGormDB(cfg *config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	switch cfg.Driver {
	case DriverPostgres, "":
		return NewPostgresDB(cfg, debug)
	case DriverSQLite:
		return NewSQLiteDB(cfg.SQLitePath, debug)
	default:
		return nil, fmt.Errorf("unsupported SQL driver %q", cfg.Driver)
	}
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
		&entity.User{},
		&entity.Medicine{},
		&entity.Invoice{},
		&entity.InvoiceItem{},
		&entity.StockMovement{},
		&entity.IdempotencyKey{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}
