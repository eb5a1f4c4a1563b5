package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos/pkg/pagination"
)

// StockMovementRepository stores the append-only stock ledger
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	ListByMedicine(ctx context.Context, medicineID uuid.UUID, params *pagination.PaginationParams) ([]entity.StockMovement, int64, error)
}
