package utils

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateInvoiceNumber returns INV-<unix millis>-<4 hex chars>. The suffix
// keeps two sales in the same millisecond apart.
func GenerateInvoiceNumber(now time.Time) string {
	suffix := strings.ToUpper(uuid.New().String()[:4])
	return "INV-" + strconv.FormatInt(now.UnixMilli(), 10) + "-" + suffix
}

// NormalizeInvoiceNumber trims a client supplied number and falls back to a
// generated one when it is blank.
func NormalizeInvoiceNumber(s string, now time.Time) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return GenerateInvoiceNumber(now)
	}
	return s
}
