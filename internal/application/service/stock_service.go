package service

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos/internal/domain/enum"
	"github.com/sangkips/pharmacy-pos/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos/pkg/apperror"
	"github.com/sangkips/pharmacy-pos/pkg/pagination"
)

// StockService owns every quantity change that is not part of a sale and
// keeps the movement ledger.
type StockService struct {
	medicineRepo repository.MedicineRepository
	movementRepo repository.StockMovementRepository
}

// NewStockService creates a new stock service
func NewStockService(
	medicineRepo repository.MedicineRepository,
	movementRepo repository.StockMovementRepository,
) *StockService {
	return &StockService{
		medicineRepo: medicineRepo,
		movementRepo: movementRepo,
	}
}

// RestockInput represents a manual stock receipt
type RestockInput struct {
	Quantity  int
	Reference string
}

// Restock adds stock to a medicine and records a restock movement.
func (s *StockService) Restock(ctx context.Context, medicineID uuid.UUID, input *RestockInput) (*entity.Medicine, error) {
	if input.Quantity <= 0 {
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "quantity", Message: "Quantity must be greater than 0"},
		})
	}

	medicine, err := s.medicineRepo.GetByID(ctx, medicineID)
	if err != nil {
		return nil, err
	}
	if medicine == nil {
		return nil, apperror.NewNotFoundError("Medicine")
	}

	if err := s.medicineRepo.IncrementQuantity(ctx, medicineID, input.Quantity); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NewNotFoundError("Medicine")
		}
		return nil, err
	}

	s.record(ctx, medicine, enum.MovementRestock, input.Quantity, input.Reference, nil)

	return s.medicineRepo.GetByID(ctx, medicineID)
}

// ListMovements returns the ledger for one medicine, newest first. The
// ledger outlives the medicine, so no existence check is made.
func (s *StockService) ListMovements(ctx context.Context, medicineID uuid.UUID, params *pagination.PaginationParams) ([]entity.StockMovement, int64, error) {
	if params == nil {
		params = pagination.DefaultPagination()
	}
	return s.movementRepo.ListByMedicine(ctx, medicineID, params)
}

// record appends a movement. It never fails the caller: the quantity change
// it describes has already happened.
func (s *StockService) record(ctx context.Context, medicine *entity.Medicine, typ enum.MovementType, delta int, reference string, invoiceID *uuid.UUID) {
	movement := &entity.StockMovement{
		MedicineID:    medicine.ID,
		MedicineName:  medicine.Name,
		Type:          typ,
		QuantityDelta: delta,
		Reference:     reference,
		InvoiceID:     invoiceID,
	}

	if current, err := s.medicineRepo.GetByID(ctx, medicine.ID); err == nil && current != nil {
		after := current.Quantity
		movement.QuantityAfter = &after
	}

	if err := s.movementRepo.Create(ctx, movement); err != nil {
		log.Printf("Warning: failed to record %s movement for medicine %s: %v", typ, medicine.ID, err)
	}
}
