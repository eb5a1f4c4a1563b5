package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/pharmacy-pos/internal/config"
	"github.com/stretchr/testify/assert"
)

func newCORSRouter(cfg *config.CORSConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware(cfg))
	r.POST("/api/v1/invoices", func(c *gin.Context) {
		c.Header(IdempotencyReplayedHeader, "true")
		c.Status(http.StatusCreated)
	})
	return r
}

func TestCORS_PreflightAllowsIdempotencyKey(t *testing.T) {
	r := newCORSRouter(&config.CORSConfig{})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/invoices", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type, Idempotency-Key")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, strings.ToLower(w.Header().Get("Access-Control-Allow-Headers")), "idempotency-key")
}

func TestCORS_ExposesReplayHeader(t *testing.T) {
	cases := []struct {
		name string
		cfg  config.CORSConfig
	}{
		{"defaults", config.CORSConfig{}},
		{"configured", config.CORSConfig{
			AllowedOrigins: []string{"https://pos.example.com"},
			AllowedHeaders: []string{"Content-Type"},
			ExposedHeaders: []string{"X-Till-ID"},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newCORSRouter(&tc.cfg)
			origin := "http://localhost:3000"
			if len(tc.cfg.AllowedOrigins) > 0 {
				origin = tc.cfg.AllowedOrigins[0]
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices", nil)
			req.Header.Set("Origin", origin)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusCreated, w.Code)
			exposed := strings.ToLower(w.Header().Get("Access-Control-Expose-Headers"))
			assert.Contains(t, exposed, "x-idempotency-replayed")
			assert.Contains(t, exposed, "x-request-id")
			for _, h := range tc.cfg.ExposedHeaders {
				assert.Contains(t, exposed, strings.ToLower(h))
			}
		})
	}
}

func TestWithRequired(t *testing.T) {
	got := withRequired([]string{"content-type", "idempotency-key"}, []string{"Idempotency-Key", "X-Request-ID"})
	assert.Equal(t, []string{"content-type", "idempotency-key", "X-Request-ID"}, got)

	assert.Equal(t, []string{"X-Request-ID"}, withRequired(nil, []string{"X-Request-ID"}))
}
