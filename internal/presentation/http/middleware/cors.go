package middleware

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sangkips/pharmacy-pos/internal/config"
)

var (
	defaultCORSOrigins = []string{
		"http://localhost:3000",
		"http://localhost:3001",
		"http://127.0.0.1:3000",
	}
	defaultCORSMethods = []string{
		http.MethodGet, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions,
	}
	defaultCORSHeaders = []string{"Accept", "Authorization", "Content-Type", "Origin"}

	// Headers the POS frontend has to send or read for sales and receipts
	// to work, whatever the operator configures.
	requiredCORSHeaders = []string{IdempotencyKeyHeader, "X-Request-ID"}
	requiredExposed     = []string{
		"Content-Length",
		"Content-Type",
		"X-Request-ID",
		IdempotencyReplayedHeader,
		"X-RateLimit-Limit",
		"X-RateLimit-Remaining",
		"Retry-After",
	}
)

// CORSMiddleware creates a CORS middleware from configuration. Empty lists
// fall back to local development defaults.
func CORSMiddleware(cfg *config.CORSConfig) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowOrigins:     orDefault(cfg.AllowedOrigins, defaultCORSOrigins),
		AllowMethods:     orDefault(cfg.AllowedMethods, defaultCORSMethods),
		AllowHeaders:     withRequired(orDefault(cfg.AllowedHeaders, defaultCORSHeaders), requiredCORSHeaders),
		ExposeHeaders:    withRequired(cfg.ExposedHeaders, requiredExposed),
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	return cors.New(corsConfig)
}

func orDefault(values, fallback []string) []string {
	if len(values) == 0 {
		return fallback
	}
	return values
}

// withRequired appends each required header not already in headers.
// Header names compare case-insensitively.
func withRequired(headers, required []string) []string {
	out := append([]string(nil), headers...)
	seen := make(map[string]bool, len(out))
	for _, h := range out {
		seen[http.CanonicalHeaderKey(h)] = true
	}
	for _, h := range required {
		if !seen[http.CanonicalHeaderKey(h)] {
			out = append(out, h)
			seen[http.CanonicalHeaderKey(h)] = true
		}
	}
	return out
}
