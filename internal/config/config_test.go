package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := load(viper.New())

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.True(t, cfg.Auth.Enabled)
	assert.Equal(t, 0.0, cfg.Pharmacy.DefaultGSTRate)
	assert.Equal(t, 10, cfg.Pharmacy.LowStockThreshold)
	assert.Equal(t, "none", cfg.Printer.Type)
	assert.Equal(t, 32, cfg.Printer.Width)
	assert.Equal(t, 12*time.Hour, cfg.JWT.ExpiryHours)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowedOrigins)
	assert.Empty(t, cfg.Email.AlertTo)
}

func TestLoad_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("DB_DRIVER", "SQLite")
	v.Set("GST_DEFAULT_RATE", 12)
	v.Set("AUTH_ENABLED", false)
	v.Set("LOW_STOCK_ALERT_EMAILS", "a@x.com, b@x.com,")
	v.Set("CORS_EXPOSED_HEADERS", "X-Till-ID")

	cfg := load(v)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 12.0, cfg.Pharmacy.DefaultGSTRate)
	assert.False(t, cfg.Auth.Enabled)
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, cfg.Email.AlertTo)
	assert.Equal(t, []string{"X-Till-ID"}, cfg.CORS.ExposedHeaders)
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{Host: "h", User: "u", Password: "p", Name: "n", Port: "1", SSLMode: "disable", Timezone: "UTC"}
	assert.Equal(t, "host=h user=u password=p dbname=n port=1 sslmode=disable TimeZone=UTC", c.DSN())
}
