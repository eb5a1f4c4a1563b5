package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Auth      AuthConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Pharmacy  PharmacyConfig
	Printer   PrinterConfig
	Email     EmailConfig
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
}

// DatabaseConfig selects the storage backend. Driver is one of
// postgres, sqlite or mongo.
type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       string
	Name       string
	User       string
	Password   string
	SSLMode    string
	Timezone   string
	SQLitePath string
	MongoURI   string
	MongoDB    string
}

type JWTConfig struct {
	Secret             string
	ExpiryHours        time.Duration
	RefreshExpiryHours time.Duration
}

type AuthConfig struct {
	Enabled       bool
	AdminEmail    string
	AdminPassword string
	AdminName     string
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	ExposedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

// PharmacyConfig carries store details printed on receipts and the
// pricing defaults.
type PharmacyConfig struct {
	Name              string
	Address           string
	Phone             string
	GSTIN             string
	DefaultGSTRate    float64
	LowStockThreshold int
}

type PrinterConfig struct {
	Type    string
	USBPath string
	Address string
	Width   int
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromEmail    string
	AlertTo      []string
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}

	return load(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "pharmacy-pos")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_DEBUG", true)

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "pharmacy")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_TIMEZONE", "Asia/Kolkata")
	v.SetDefault("DB_SQLITE_PATH", "pharmacy.db")
	v.SetDefault("MONGODB_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGODB_DATABASE", "pharmacy")

	v.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	v.SetDefault("JWT_EXPIRY_HOURS", 12)
	v.SetDefault("JWT_REFRESH_EXPIRY_HOURS", 168)

	v.SetDefault("AUTH_ENABLED", true)
	v.SetDefault("ADMIN_EMAIL", "admin@pharmacy.local")
	v.SetDefault("ADMIN_PASSWORD", "")
	v.SetDefault("ADMIN_NAME", "Administrator")

	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("CORS_ALLOWED_METHODS", "")
	v.SetDefault("CORS_ALLOWED_HEADERS", "")
	v.SetDefault("CORS_EXPOSED_HEADERS", "")
	v.SetDefault("RATE_LIMIT_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_DURATION", 60)

	v.SetDefault("PHARMACY_NAME", "Pharmacy")
	v.SetDefault("PHARMACY_ADDRESS", "")
	v.SetDefault("PHARMACY_PHONE", "")
	v.SetDefault("PHARMACY_GSTIN", "")
	v.SetDefault("GST_DEFAULT_RATE", 0)
	v.SetDefault("LOW_STOCK_THRESHOLD", 10)

	v.SetDefault("PRINTER_TYPE", "none")
	v.SetDefault("PRINTER_USB_PATH", "/dev/usb/lp0")
	v.SetDefault("PRINTER_ADDRESS", "")
	v.SetDefault("PRINTER_WIDTH", 32)

	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_FROM_NAME", "Pharmacy POS")
	v.SetDefault("SMTP_FROM_EMAIL", "")
	v.SetDefault("LOW_STOCK_ALERT_EMAILS", "")
}

func load(v *viper.Viper) *Config {
	setDefaults(v)

	return &Config{
		App: AppConfig{
			Name:  v.GetString("APP_NAME"),
			Env:   v.GetString("APP_ENV"),
			Port:  v.GetString("APP_PORT"),
			Debug: v.GetBool("APP_DEBUG"),
		},
		Database: DatabaseConfig{
			Driver:     strings.ToLower(v.GetString("DB_DRIVER")),
			Host:       v.GetString("DB_HOST"),
			Port:       v.GetString("DB_PORT"),
			Name:       v.GetString("DB_NAME"),
			User:       v.GetString("DB_USER"),
			Password:   v.GetString("DB_PASSWORD"),
			SSLMode:    v.GetString("DB_SSL_MODE"),
			Timezone:   v.GetString("DB_TIMEZONE"),
			SQLitePath: v.GetString("DB_SQLITE_PATH"),
			MongoURI:   v.GetString("MONGODB_URI"),
			MongoDB:    v.GetString("MONGODB_DATABASE"),
		},
		JWT: JWTConfig{
			Secret:             v.GetString("JWT_SECRET"),
			ExpiryHours:        time.Duration(v.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
			RefreshExpiryHours: time.Duration(v.GetInt("JWT_REFRESH_EXPIRY_HOURS")) * time.Hour,
		},
		Auth: AuthConfig{
			Enabled:       v.GetBool("AUTH_ENABLED"),
			AdminEmail:    v.GetString("ADMIN_EMAIL"),
			AdminPassword: v.GetString("ADMIN_PASSWORD"),
			AdminName:     v.GetString("ADMIN_NAME"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
			AllowedMethods: splitList(v.GetString("CORS_ALLOWED_METHODS")),
			AllowedHeaders: splitList(v.GetString("CORS_ALLOWED_HEADERS")),
			ExposedHeaders: splitList(v.GetString("CORS_EXPOSED_HEADERS")),
		},
		RateLimit: RateLimitConfig{
			Requests: v.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: v.GetInt("RATE_LIMIT_DURATION"),
		},
		Pharmacy: PharmacyConfig{
			Name:              v.GetString("PHARMACY_NAME"),
			Address:           v.GetString("PHARMACY_ADDRESS"),
			Phone:             v.GetString("PHARMACY_PHONE"),
			GSTIN:             v.GetString("PHARMACY_GSTIN"),
			DefaultGSTRate:    v.GetFloat64("GST_DEFAULT_RATE"),
			LowStockThreshold: v.GetInt("LOW_STOCK_THRESHOLD"),
		},
		Printer: PrinterConfig{
			Type:    strings.ToLower(v.GetString("PRINTER_TYPE")),
			USBPath: v.GetString("PRINTER_USB_PATH"),
			Address: v.GetString("PRINTER_ADDRESS"),
			Width:   v.GetInt("PRINTER_WIDTH"),
		},
		Email: EmailConfig{
			SMTPHost:     v.GetString("SMTP_HOST"),
			SMTPPort:     v.GetInt("SMTP_PORT"),
			SMTPUsername: v.GetString("SMTP_USERNAME"),
			SMTPPassword: v.GetString("SMTP_PASSWORD"),
			FromName:     v.GetString("SMTP_FROM_NAME"),
			FromEmail:    v.GetString("SMTP_FROM_EMAIL"),
			AlertTo:      splitList(v.GetString("LOW_STOCK_ALERT_EMAILS")),
		},
	}
}

// splitList parses a comma separated env value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}
