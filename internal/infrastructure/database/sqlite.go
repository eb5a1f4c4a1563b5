package database

import (
	"fmt"
	"log"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// NewSQLiteDB opens a SQLite database file (or ":memory:"). SQLite allows a
// single writer, so the pool is pinned to one connection; this also keeps an
// in-memory database alive for the life of the handle.
func NewSQLiteDB(path string, debug bool) (*gorm.DB, error) {
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig(debug))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	log.Printf("Successfully opened SQLite database at %s", path)
	return db, nil
}
