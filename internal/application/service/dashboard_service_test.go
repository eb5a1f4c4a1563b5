package service

import (
	"context"
	"testing"
	"time"

	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos/internal/domain/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDashboardStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.addMedicine(t, "Amoxicillin", "AMX-1", 100, 10)
	b := env.addMedicine(t, "Cetirizine", "CET-1", 4, 2)
	env.addMedicine(t, "Dolo", "DOLO-1", 50, 1)

	first, err := env.invoices.CreateInvoice(ctx, invoiceInput(sale(a.ID, 2), sale(b.ID, 1)))
	require.NoError(t, err)
	_, err = env.invoices.UpdateStatus(ctx, first.ID, "Paid")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		in := invoiceInput(sale(a.ID, 1))
		if i%2 == 0 {
			in.CustomerName = "Asha"
		}
		_, err := env.invoices.CreateInvoice(ctx, in)
		require.NoError(t, err)
	}

	svc := NewDashboardService(env.invoiceRepo, env.medicineRepo, 10)
	stats, err := svc.GetDashboardStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 6, stats.TotalInvoices)
	assert.Equal(t, 3, stats.TotalMedicines)
	assert.Equal(t, 1, stats.LowStockItems)
	assert.Equal(t, 72.0, stats.TotalSales)
	assert.Equal(t, 72.0, stats.TodaySales)
	assert.Equal(t, 72.0, stats.MonthSales)
	assert.Equal(t, 5, stats.PendingInvoices)
	assert.Equal(t, 2, stats.TotalCustomers)

	require.Len(t, stats.RecentActivity, 6)
	assert.Equal(t, "sale", stats.RecentActivity[0].Type)
	assert.Equal(t, "stock", stats.RecentActivity[5].Type)
	assert.Contains(t, stats.RecentActivity[5].Description, "Cetirizine (3 left)")

	require.NotEmpty(t, stats.TopSellingMedicines)
	assert.Equal(t, "Amoxicillin", stats.TopSellingMedicines[0].Name)
	assert.Equal(t, 7, stats.TopSellingMedicines[0].Quantity)

	require.Len(t, stats.SalesTrend, 6)
	assert.Equal(t, time.Now().Format("Jan"), stats.SalesTrend[5].Month)
	assert.Equal(t, 72.0, stats.SalesTrend[5].Sales)
}

func TestSalesTrend_BucketsByMonth(t *testing.T) {
	loc := time.UTC
	current := time.Date(2026, time.March, 1, 0, 0, 0, 0, loc)
	invoices := []entity.Invoice{
		{TotalAmount: 1000, CreatedAt: time.Date(2026, time.March, 10, 0, 0, 0, 0, loc)},
		{TotalAmount: 500, CreatedAt: time.Date(2025, time.December, 31, 23, 0, 0, 0, loc)},
		{TotalAmount: 700, CreatedAt: time.Date(2025, time.October, 1, 0, 0, 0, 0, loc)},
		{TotalAmount: 900, CreatedAt: time.Date(2025, time.September, 30, 0, 0, 0, 0, loc)},
		{TotalAmount: 100, Status: enum.InvoiceStatusPaid, CreatedAt: time.Date(2025, time.October, 2, 0, 0, 0, 0, loc)},
	}

	points := salesTrend(invoices, current, 6)
	require.Len(t, points, 6)
	assert.Equal(t, "Oct", points[0].Month)
	assert.Equal(t, 8.0, points[0].Sales)
	assert.Equal(t, "Dec", points[2].Month)
	assert.Equal(t, 5.0, points[2].Sales)
	assert.Equal(t, "Mar", points[5].Month)
	assert.Equal(t, 10.0, points[5].Sales)
}
