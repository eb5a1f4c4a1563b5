package service

import (
	"context"

	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos/pkg/email"
)

// EmailLowStockNotifier sends low-stock alerts over SMTP
type EmailLowStockNotifier struct {
	email        *email.EmailService
	pharmacyName string
}

// NewEmailLowStockNotifier returns nil when SMTP is not configured, which
// disables alerting.
func NewEmailLowStockNotifier(svc *email.EmailService, pharmacyName string) LowStockNotifier {
	if svc == nil || !svc.Enabled() {
		return nil
	}
	return &EmailLowStockNotifier{email: svc, pharmacyName: pharmacyName}
}

func (n *EmailLowStockNotifier) NotifyLowStock(_ context.Context, medicines []entity.Medicine) error {
	items := make([]email.LowStockItem, 0, len(medicines))
	for _, m := range medicines {
		items = append(items, email.LowStockItem{
			Name:         m.Name,
			BatchNumber:  m.BatchNumber,
			Quantity:     m.Quantity,
			MinimumLevel: m.MinimumStockLevel,
		})
	}
	return n.email.SendLowStockAlert(n.pharmacyName, items)
}
