package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos/pkg/pagination"
)

// MedicineRepository defines the interface for medicine data operations
type MedicineRepository interface {
	Create(ctx context.Context, medicine *entity.Medicine) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Medicine, error)
	GetByBatchNumber(ctx context.Context, batchNumber string) (*entity.Medicine, error)
	// UpdateDetails writes every field except quantity. Stock only moves
	// through the atomic methods below.
	UpdateDetails(ctx context.Context, medicine *entity.Medicine) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *MedicineFilterParams) ([]entity.Medicine, int64, error)
	ListAll(ctx context.Context) ([]entity.Medicine, error)
	// ListLowStock returns medicines at or below their own minimum stock
	// level, lowest quantity first.
	ListLowStock(ctx context.Context, limit int) ([]entity.Medicine, error)
	// AtomicDecrementQuantity decrements stock only if sufficient.
	// Returns (true, nil) on success, (false, nil) if stock is insufficient
	// or the medicine is gone, (false, err) on error.
	AtomicDecrementQuantity(ctx context.Context, id uuid.UUID, amount int) (bool, error)
	// IncrementQuantity adds stock. Returns ErrNotFound if the medicine no
	// longer exists.
	IncrementQuantity(ctx context.Context, id uuid.UUID, amount int) error
}

// MedicineFilterParams contains filtering parameters for medicine queries
type MedicineFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	Category   string
	LowStock   bool
	SortBy     string
	SortOrder  string
}

// MedicineSortColumns whitelists sortable fields
var MedicineSortColumns = map[string]string{
	"name":          "name",
	"manufacturer":  "manufacturer",
	"batch_number":  "batch_number",
	"expiry_date":   "expiry_date",
	"quantity":      "quantity",
	"price":         "price",
	"created_at":    "created_at",
	"category":      "category",
	"minimum_stock": "minimum_stock_level",
}

// SortColumn resolves sort_by against the whitelist, defaulting to name.
func (p *MedicineFilterParams) SortColumn() (string, bool) {
	col, ok := MedicineSortColumns[p.SortBy]
	if !ok {
		col = "name"
	}
	desc := p.SortOrder == "desc"
	return col, desc
}
