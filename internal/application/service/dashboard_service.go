package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos/internal/domain/enum"
	"github.com/sangkips/pharmacy-pos/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos/pkg/money"
)

const (
	recentActivityInvoices = 5
	recentActivityAlerts   = 3
	recentActivityLimit    = 8
	topSellingDashboard    = 5
	salesTrendMonths       = 6
)

// DashboardService provides dashboard statistics
type DashboardService struct {
	invoiceRepo       repository.InvoiceRepository
	medicineRepo      repository.MedicineRepository
	lowStockThreshold int
	now               func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	invoiceRepo repository.InvoiceRepository,
	medicineRepo repository.MedicineRepository,
	lowStockThreshold int,
) *DashboardService {
	if lowStockThreshold <= 0 {
		lowStockThreshold = 10
	}
	return &DashboardService{
		invoiceRepo:       invoiceRepo,
		medicineRepo:      medicineRepo,
		lowStockThreshold: lowStockThreshold,
		now:               time.Now,
	}
}

// DashboardStats represents dashboard statistics
type DashboardStats struct {
	TotalSales          float64             `json:"total_sales"`
	TotalInvoices       int                 `json:"total_invoices"`
	TotalMedicines      int                 `json:"total_medicines"`
	LowStockItems       int                 `json:"low_stock_items"`
	TodaySales          float64             `json:"today_sales"`
	MonthSales          float64             `json:"month_sales"`
	PendingInvoices     int                 `json:"pending_invoices"`
	TotalCustomers      int                 `json:"total_customers"`
	RecentActivity      []ActivityItem      `json:"recent_activity"`
	TopSellingMedicines []MedicineSales     `json:"top_selling_medicines"`
	SalesTrend          []MonthlySalesPoint `json:"sales_trend"`
}

// ActivityItem is a sale or a low-stock alert in the activity feed
type ActivityItem struct {
	ID          uuid.UUID `json:"id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Amount      *float64  `json:"amount,omitempty"`
	Time        time.Time `json:"time"`
}

// MonthlySalesPoint represents one month of the sales trend
type MonthlySalesPoint struct {
	Month string  `json:"month"`
	Sales float64 `json:"sales"`
}

// GetDashboardStats returns dashboard statistics
func (s *DashboardService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	invoices, err := s.invoiceRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	medicines, err := s.medicineRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	today := startOfDay(now)
	month := startOfMonth(now)

	stats := &DashboardStats{
		TotalInvoices:  len(invoices),
		TotalMedicines: len(medicines),
		RecentActivity: []ActivityItem{},
	}

	var total, todaySales, monthSales int64
	customers := make(map[string]struct{})
	for _, inv := range invoices {
		total += inv.TotalAmount
		if !inv.CreatedAt.Before(today) {
			todaySales += inv.TotalAmount
		}
		if !inv.CreatedAt.Before(month) {
			monthSales += inv.TotalAmount
		}
		if inv.Status != enum.InvoiceStatusPaid {
			stats.PendingInvoices++
		}
		customers[inv.CustomerName] = struct{}{}
	}
	stats.TotalSales = money.ToFloat(total)
	stats.TodaySales = money.ToFloat(todaySales)
	stats.MonthSales = money.ToFloat(monthSales)
	stats.TotalCustomers = len(customers)

	var lowStock []entity.Medicine
	for _, m := range medicines {
		if m.Quantity <= s.lowStockThreshold {
			lowStock = append(lowStock, m)
		}
	}
	stats.LowStockItems = len(lowStock)

	// invoices are newest first
	for i := 0; i < len(invoices) && i < recentActivityInvoices; i++ {
		inv := invoices[i]
		amount := money.ToFloat(inv.TotalAmount)
		stats.RecentActivity = append(stats.RecentActivity, ActivityItem{
			ID:          inv.ID,
			Type:        "sale",
			Description: fmt.Sprintf("Invoice %s - %s", inv.InvoiceNumber, inv.CustomerName),
			Amount:      &amount,
			Time:        inv.CreatedAt,
		})
	}
	for i := 0; i < len(lowStock) && i < recentActivityAlerts; i++ {
		m := lowStock[i]
		stats.RecentActivity = append(stats.RecentActivity, ActivityItem{
			ID:          m.ID,
			Type:        "stock",
			Description: fmt.Sprintf("Low stock alert: %s (%d left)", m.Name, m.Quantity),
			Time:        now,
		})
	}
	if len(stats.RecentActivity) > recentActivityLimit {
		stats.RecentActivity = stats.RecentActivity[:recentActivityLimit]
	}

	stats.TopSellingMedicines = topSelling(invoices, topSellingDashboard)
	stats.SalesTrend = salesTrend(invoices, month, salesTrendMonths)

	return stats, nil
}

// salesTrend totals sales per calendar month for the n months ending with
// the month starting at current, oldest first.
func salesTrend(invoices []entity.Invoice, current time.Time, n int) []MonthlySalesPoint {
	points := make([]MonthlySalesPoint, n)
	sums := make([]int64, n)
	first := current.AddDate(0, -(n - 1), 0)

	for _, inv := range invoices {
		created := inv.CreatedAt.In(current.Location())
		if created.Before(first) {
			continue
		}
		idx := (created.Year()-first.Year())*12 + int(created.Month()-first.Month())
		if idx >= 0 && idx < n {
			sums[idx] += inv.TotalAmount
		}
	}

	for i := 0; i < n; i++ {
		points[i] = MonthlySalesPoint{
			Month: first.AddDate(0, i, 0).Format("Jan"),
			Sales: money.ToFloat(sums[i]),
		}
	}
	return points
}
