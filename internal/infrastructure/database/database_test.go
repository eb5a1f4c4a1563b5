package database

import (
	"testing"

	"github.com/sangkips/pharmacy-pos/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGormDB_SQLiteMigrates(t *testing.T) {
	db, err := NewGormDB(&config.DatabaseConfig{Driver: DriverSQLite, SQLitePath: ":memory:"}, false)
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	for _, table := range []string{"medicines", "invoices", "invoice_items", "stock_movements", "users", "idempotency_keys"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestNewGormDB_UnknownDriver(t *testing.T) {
	_, err := NewGormDB(&config.DatabaseConfig{Driver: "oracle"}, false)
	assert.Error(t, err)
}
