package service

import (
	"context"
	"sort"
	"time"

	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos/pkg/apperror"
	"github.com/sangkips/pharmacy-pos/pkg/money"
)

// Report types accepted by GetReport
const (
	ReportSales        = "sales"
	ReportInventory    = "inventory"
	ReportLowStock     = "low-stock"
	ReportExpiringSoon = "expiring-soon"
	ReportDashboard    = "dashboard"
)

const (
	criticalStockLevel = 5
	expiringSoonWindow = 90 * 24 * time.Hour
	recentInvoiceCount = 5
	topSalesReportSize = 10
)

// ReportService computes reports in process over the full invoice and
// medicine sets, so every storage backend yields the same numbers.
type ReportService struct {
	invoiceRepo       repository.InvoiceRepository
	medicineRepo      repository.MedicineRepository
	lowStockThreshold int
	now               func() time.Time
}

// NewReportService creates a new report service
func NewReportService(
	invoiceRepo repository.InvoiceRepository,
	medicineRepo repository.MedicineRepository,
	lowStockThreshold int,
) *ReportService {
	if lowStockThreshold <= 0 {
		lowStockThreshold = 10
	}
	return &ReportService{
		invoiceRepo:       invoiceRepo,
		medicineRepo:      medicineRepo,
		lowStockThreshold: lowStockThreshold,
		now:               time.Now,
	}
}

// DateRange bounds invoice creation time to [Start, End). Either end may be
// nil.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

func (r DateRange) contains(t time.Time) bool {
	if r.Start != nil && t.Before(*r.Start) {
		return false
	}
	if r.End != nil && !t.Before(*r.End) {
		return false
	}
	return true
}

// GetReport dispatches on the report type
func (s *ReportService) GetReport(ctx context.Context, reportType string, dates DateRange) (interface{}, error) {
	switch reportType {
	case ReportSales:
		return s.SalesReport(ctx, dates)
	case ReportInventory:
		return s.InventoryReport(ctx)
	case ReportLowStock:
		return s.LowStockReport(ctx)
	case ReportExpiringSoon:
		return s.ExpiringSoonReport(ctx)
	case ReportDashboard:
		return s.DashboardReport(ctx, dates)
	default:
		return nil, apperror.NewBadRequestError("Invalid report type. Use: sales, inventory, low-stock, expiring-soon, or dashboard")
	}
}

// DailySales is one day's takings in the sales report
type DailySales struct {
	Sales float64 `json:"sales"`
	Count int     `json:"count"`
}

// MedicineSales aggregates sold quantity and revenue per medicine name
type MedicineSales struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`

	revenue int64
}

// SalesReport represents the sales report
type SalesReport struct {
	TotalSales           float64               `json:"total_sales"`
	TotalInvoices        int                   `json:"total_invoices"`
	TotalTax             float64               `json:"total_tax"`
	TotalDiscount        float64               `json:"total_discount"`
	AverageSale          float64               `json:"average_sale"`
	SalesByPaymentMethod map[string]float64    `json:"sales_by_payment_method"`
	SalesByStatus        map[string]int        `json:"sales_by_status"`
	DailySales           map[string]DailySales `json:"daily_sales"`
	TopSellingMedicines  []MedicineSales       `json:"top_selling_medicines"`
}

// SalesReport summarises invoices created within the date range
func (s *ReportService) SalesReport(ctx context.Context, dates DateRange) (*SalesReport, error) {
	invoices, err := s.invoices(ctx, dates)
	if err != nil {
		return nil, err
	}

	var total, tax, discount int64
	byMethod := make(map[string]int64)
	daily := make(map[string]*struct {
		sales int64
		count int
	})
	report := &SalesReport{
		TotalInvoices:        len(invoices),
		SalesByPaymentMethod: make(map[string]float64),
		SalesByStatus:        make(map[string]int),
		DailySales:           make(map[string]DailySales),
	}

	for _, inv := range invoices {
		total += inv.TotalAmount
		tax += inv.TotalTax
		discount += inv.Discount
		byMethod[string(inv.PaymentMethod)] += inv.TotalAmount
		report.SalesByStatus[inv.Status.String()]++

		day := inv.CreatedAt.In(s.location()).Format("2006-01-02")
		d, ok := daily[day]
		if !ok {
			d = &struct {
				sales int64
				count int
			}{}
			daily[day] = d
		}
		d.sales += inv.TotalAmount
		d.count++
	}

	report.TotalSales = money.ToFloat(total)
	report.TotalTax = money.ToFloat(tax)
	report.TotalDiscount = money.ToFloat(discount)
	report.AverageSale = money.ToFloat(money.Average(total, int64(len(invoices))))
	for method, amount := range byMethod {
		report.SalesByPaymentMethod[method] = money.ToFloat(amount)
	}
	for day, d := range daily {
		report.DailySales[day] = DailySales{Sales: money.ToFloat(d.sales), Count: d.count}
	}
	report.TopSellingMedicines = topSelling(invoices, topSalesReportSize)

	return report, nil
}

// StockBreakdown groups stock count, value and quantity
type StockBreakdown struct {
	Count    int     `json:"count"`
	Value    float64 `json:"value"`
	Quantity int     `json:"quantity,omitempty"`

	value int64
}

// InventoryReport represents the inventory valuation report
type InventoryReport struct {
	TotalMedicines        int                        `json:"total_medicines"`
	TotalValue            float64                    `json:"total_value"`
	TotalQuantity         int                        `json:"total_quantity"`
	AveragePrice          float64                    `json:"average_price"`
	CategoryBreakdown     map[string]*StockBreakdown `json:"category_breakdown"`
	ManufacturerBreakdown map[string]*StockBreakdown `json:"manufacturer_breakdown"`
}

// InventoryReport values current stock by category and manufacturer
func (s *ReportService) InventoryReport(ctx context.Context) (*InventoryReport, error) {
	medicines, err := s.medicineRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	report := &InventoryReport{
		TotalMedicines:        len(medicines),
		CategoryBreakdown:     make(map[string]*StockBreakdown),
		ManufacturerBreakdown: make(map[string]*StockBreakdown),
	}

	var totalValue int64
	for i := range medicines {
		m := &medicines[i]
		value := m.StockValue()
		totalValue += value
		report.TotalQuantity += m.Quantity

		cat := m.Category
		if cat == "" {
			cat = "Uncategorized"
		}
		addBreakdown(report.CategoryBreakdown, cat, value, m.Quantity)

		mfr := m.Manufacturer
		if mfr == "" {
			mfr = "Unknown"
		}
		addBreakdown(report.ManufacturerBreakdown, mfr, value, 0)
	}

	report.TotalValue = money.ToFloat(totalValue)
	report.AveragePrice = money.ToFloat(money.Average(totalValue, int64(report.TotalQuantity)))
	for _, b := range report.CategoryBreakdown {
		b.Value = money.ToFloat(b.value)
	}
	for _, b := range report.ManufacturerBreakdown {
		b.Value = money.ToFloat(b.value)
	}

	return report, nil
}

func addBreakdown(m map[string]*StockBreakdown, key string, value int64, qty int) {
	b, ok := m[key]
	if !ok {
		b = &StockBreakdown{}
		m[key] = b
	}
	b.Count++
	b.value += value
	b.Quantity += qty
}

// LowStockReport buckets medicines at or below the low-stock threshold
type LowStockReport struct {
	LowStockCount      int               `json:"low_stock_count"`
	OutOfStockCount    int               `json:"out_of_stock_count"`
	CriticalStockCount int               `json:"critical_stock_count"`
	LowStockItems      int               `json:"low_stock_items"`
	Medicines          []entity.Medicine `json:"medicines"`
	OutOfStock         []entity.Medicine `json:"out_of_stock"`
	CriticalStock      []entity.Medicine `json:"critical_stock"`
	LowStock           []entity.Medicine `json:"low_stock"`
}

// LowStockReport lists medicines with quantity at or below the threshold,
// lowest first: out of stock (0), critical (1-5) and low (6 up to the
// threshold).
func (s *ReportService) LowStockReport(ctx context.Context) (*LowStockReport, error) {
	medicines, err := s.lowStock(ctx)
	if err != nil {
		return nil, err
	}

	report := &LowStockReport{
		Medicines:     medicines,
		OutOfStock:    []entity.Medicine{},
		CriticalStock: []entity.Medicine{},
		LowStock:      []entity.Medicine{},
	}
	for _, m := range medicines {
		switch {
		case m.Quantity <= 0:
			report.OutOfStock = append(report.OutOfStock, m)
		case m.Quantity <= criticalStockLevel:
			report.CriticalStock = append(report.CriticalStock, m)
		default:
			report.LowStock = append(report.LowStock, m)
		}
	}
	report.LowStockCount = len(medicines)
	report.OutOfStockCount = len(report.OutOfStock)
	report.CriticalStockCount = len(report.CriticalStock)
	report.LowStockItems = len(report.LowStock)

	return report, nil
}

// ExpiringSoonReport buckets medicines by time to expiry
type ExpiringSoonReport struct {
	ExpiredCount           int               `json:"expired_count"`
	ExpiredValue           float64           `json:"expired_value"`
	ExpiringIn1MonthCount  int               `json:"expiring_in_1_month_count"`
	ExpiringIn3MonthsCount int               `json:"expiring_in_3_months_count"`
	ExpiringIn6MonthsCount int               `json:"expiring_in_6_months_count"`
	Expired                []entity.Medicine `json:"expired"`
	ExpiringIn1Month       []entity.Medicine `json:"expiring_in_1_month"`
	ExpiringIn3Months      []entity.Medicine `json:"expiring_in_3_months"`
	ExpiringIn6Months      []entity.Medicine `json:"expiring_in_6_months"`
}

// ExpiringSoonReport lists expired medicines and those expiring within one,
// three and six months, soonest first.
func (s *ReportService) ExpiringSoonReport(ctx context.Context) (*ExpiringSoonReport, error) {
	medicines, err := s.medicineRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(medicines, func(i, j int) bool {
		return medicines[i].ExpiryDate.Before(medicines[j].ExpiryDate)
	})

	now := s.now()
	oneMonth := now.AddDate(0, 1, 0)
	threeMonths := now.AddDate(0, 3, 0)
	sixMonths := now.AddDate(0, 6, 0)

	report := &ExpiringSoonReport{
		Expired:           []entity.Medicine{},
		ExpiringIn1Month:  []entity.Medicine{},
		ExpiringIn3Months: []entity.Medicine{},
		ExpiringIn6Months: []entity.Medicine{},
	}

	var expiredValue int64
	for _, m := range medicines {
		switch {
		case m.ExpiryDate.Before(now):
			report.Expired = append(report.Expired, m)
			expiredValue += m.StockValue()
		case m.ExpiryDate.Before(oneMonth):
			report.ExpiringIn1Month = append(report.ExpiringIn1Month, m)
		case m.ExpiryDate.Before(threeMonths):
			report.ExpiringIn3Months = append(report.ExpiringIn3Months, m)
		case m.ExpiryDate.Before(sixMonths):
			report.ExpiringIn6Months = append(report.ExpiringIn6Months, m)
		}
	}

	report.ExpiredCount = len(report.Expired)
	report.ExpiredValue = money.ToFloat(expiredValue)
	report.ExpiringIn1MonthCount = len(report.ExpiringIn1Month)
	report.ExpiringIn3MonthsCount = len(report.ExpiringIn3Months)
	report.ExpiringIn6MonthsCount = len(report.ExpiringIn6Months)

	return report, nil
}

// DashboardReport is the compact summary behind the reports page header
type DashboardReport struct {
	TodaySales        float64          `json:"today_sales"`
	TodayInvoices     int              `json:"today_invoices"`
	MonthSales        float64          `json:"month_sales"`
	MonthInvoices     int              `json:"month_invoices"`
	TotalSales        float64          `json:"total_sales"`
	TotalInvoices     int              `json:"total_invoices"`
	TotalMedicines    int              `json:"total_medicines"`
	LowStockCount     int              `json:"low_stock_count"`
	ExpiredCount      int              `json:"expired_count"`
	ExpiringSoonCount int              `json:"expiring_soon_count"`
	RecentInvoices    []entity.Invoice `json:"recent_invoices"`
}

// DashboardReport summarises today, this month and the date range
func (s *ReportService) DashboardReport(ctx context.Context, dates DateRange) (*DashboardReport, error) {
	all, err := s.invoiceRepo.ListAll(ctx)
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
	report := &DashboardReport{
		TotalMedicines: len(medicines),
		RecentInvoices: []entity.Invoice{},
	}

	var todaySales, monthSales, totalSales int64
	for _, inv := range all {
		if !inv.CreatedAt.Before(today) {
			todaySales += inv.TotalAmount
			report.TodayInvoices++
		}
		if !inv.CreatedAt.Before(month) {
			monthSales += inv.TotalAmount
			report.MonthInvoices++
		}
		if dates.contains(inv.CreatedAt) {
			totalSales += inv.TotalAmount
			report.TotalInvoices++
		}
	}
	report.TodaySales = money.ToFloat(todaySales)
	report.MonthSales = money.ToFloat(monthSales)
	report.TotalSales = money.ToFloat(totalSales)

	soon := now.Add(expiringSoonWindow)
	for i := range medicines {
		m := &medicines[i]
		if m.Quantity <= s.lowStockThreshold {
			report.LowStockCount++
		}
		switch {
		case m.ExpiryDate.Before(now):
			report.ExpiredCount++
		case !m.ExpiryDate.After(soon):
			report.ExpiringSoonCount++
		}
	}

	// ListAll is newest first
	if len(all) > recentInvoiceCount {
		all = all[:recentInvoiceCount]
	}
	report.RecentInvoices = append(report.RecentInvoices, all...)

	return report, nil
}

func (s *ReportService) invoices(ctx context.Context, dates DateRange) ([]entity.Invoice, error) {
	all, err := s.invoiceRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entity.Invoice, 0, len(all))
	for _, inv := range all {
		if dates.contains(inv.CreatedAt) {
			out = append(out, inv)
		}
	}
	return out, nil
}

// lowStock returns medicines at or below the global threshold, ascending
func (s *ReportService) lowStock(ctx context.Context) ([]entity.Medicine, error) {
	return lowStockMedicines(ctx, s.medicineRepo, s.lowStockThreshold)
}

func (s *ReportService) location() *time.Location {
	return s.now().Location()
}

func lowStockMedicines(ctx context.Context, repo repository.MedicineRepository, threshold int) ([]entity.Medicine, error) {
	medicines, err := repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entity.Medicine, 0)
	for _, m := range medicines {
		if m.Quantity <= threshold {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Quantity < out[j].Quantity })
	return out, nil
}

// topSelling ranks medicines by revenue across invoice lines
func topSelling(invoices []entity.Invoice, n int) []MedicineSales {
	byName := make(map[string]*MedicineSales)
	var order []string
	for _, inv := range invoices {
		for _, item := range inv.Items {
			name := item.MedicineName
			if name == "" {
				name = "Unknown"
			}
			ms, ok := byName[name]
			if !ok {
				ms = &MedicineSales{Name: name}
				byName[name] = ms
				order = append(order, name)
			}
			ms.Quantity += item.Quantity
			ms.revenue += item.Subtotal
		}
	}

	out := make([]MedicineSales, 0, len(order))
	for _, name := range order {
		ms := byName[name]
		ms.Revenue = money.ToFloat(ms.revenue)
		out = append(out, *ms)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].revenue > out[j].revenue })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}
