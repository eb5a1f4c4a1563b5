package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
)

// EmailConfig holds SMTP configuration
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromEmail    string
	AlertTo      []string
}

// LowStockItem is one row of a low stock alert.
type LowStockItem struct {
	Name         string
	BatchNumber  string
	Quantity     int
	MinimumLevel int
}

// EmailService sends operational emails (low stock alerts)
type EmailService struct {
	config EmailConfig
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailService creates a new email service
func NewEmailService(config EmailConfig) *EmailService {
	return &EmailService{config: config, send: smtp.SendMail}
}

// Enabled reports whether SMTP and at least one recipient are configured.
func (s *EmailService) Enabled() bool {
	return s.config.SMTPHost != "" && len(s.config.AlertTo) > 0
}

// SendLowStockAlert mails the given medicines to the alert recipients.
func (s *EmailService) SendLowStockAlert(pharmacyName string, items []LowStockItem) error {
	if !s.Enabled() || len(items) == 0 {
		return nil
	}

	html, err := renderLowStock(pharmacyName, items)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	subject := fmt.Sprintf("Low stock: %d item(s) - %s", len(items), pharmacyName)
	msg := s.buildHTMLEmail(s.config.AlertTo, subject, html)

	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)
	var auth smtp.Auth
	if s.config.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
	}
	if err := s.send(addr, auth, s.config.FromEmail, s.config.AlertTo, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *EmailService) buildHTMLEmail(to []string, subject, htmlBody string) []byte {
	headers := fmt.Sprintf(
		"From: %s <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=\"UTF-8\"\r\n"+
			"\r\n",
		s.config.FromName,
		s.config.FromEmail,
		strings.Join(to, ", "),
		subject,
	)
	return []byte(headers + htmlBody)
}

var lowStockTmpl = template.Must(template.New("low_stock").Parse(lowStockTemplate))

func renderLowStock(pharmacyName string, items []LowStockItem) (string, error) {
	data := struct {
		PharmacyName string
		Items        []LowStockItem
	}{pharmacyName, items}

	var buf bytes.Buffer
	if err := lowStockTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const lowStockTemplate = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>Low stock alert</title></head>
<body style="font-family: 'Segoe UI', Tahoma, sans-serif; background-color: #f4f7fa; padding: 24px;">
  <h2 style="color: #1a1a2e;">{{.PharmacyName}}: low stock</h2>
  <p style="color: #4a5568;">The following medicines are at or below their minimum stock level.</p>
  <table style="border-collapse: collapse; background: #ffffff;">
    <tr>
      <th style="padding: 8px; border: 1px solid #e2e8f0;">Medicine</th>
      <th style="padding: 8px; border: 1px solid #e2e8f0;">Batch</th>
      <th style="padding: 8px; border: 1px solid #e2e8f0;">In stock</th>
      <th style="padding: 8px; border: 1px solid #e2e8f0;">Minimum</th>
    </tr>
    {{range .Items}}
    <tr>
      <td style="padding: 8px; border: 1px solid #e2e8f0;">{{.Name}}</td>
      <td style="padding: 8px; border: 1px solid #e2e8f0;">{{.BatchNumber}}</td>
      <td style="padding: 8px; border: 1px solid #e2e8f0;">{{.Quantity}}</td>
      <td style="padding: 8px; border: 1px solid #e2e8f0;">{{.MinimumLevel}}</td>
    </tr>
    {{end}}
  </table>
</body>
</html>
`
