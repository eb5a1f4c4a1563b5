package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos/internal/domain/enum"
	"github.com/sangkips/pharmacy-pos/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos/pkg/apperror"
	"github.com/sangkips/pharmacy-pos/pkg/money"
)

// DefaultLowStockLimit caps GET /medicines/low-stock when no limit is given
const DefaultLowStockLimit = 10

// MedicineService handles medicine catalogue and stock-level operations
type MedicineService struct {
	medicineRepo repository.MedicineRepository
	stock        *StockService
}

// NewMedicineService creates a new medicine service
func NewMedicineService(medicineRepo repository.MedicineRepository, stock *StockService) *MedicineService {
	return &MedicineService{
		medicineRepo: medicineRepo,
		stock:        stock,
	}
}

// CreateMedicineInput represents the create medicine input
type CreateMedicineInput struct {
	Name              string
	Manufacturer      string
	Category          string
	BatchNumber       string
	ExpiryDate        time.Time
	Quantity          int
	Price             float64
	GSTRate           float64
	MinimumStockLevel *int
	Description       *string
}

// UpdateMedicineInput represents a partial medicine update. Nil fields are
// left unchanged.
type UpdateMedicineInput struct {
	Name              *string
	Manufacturer      *string
	Category          *string
	BatchNumber       *string
	ExpiryDate        *time.Time
	Quantity          *int
	Price             *float64
	GSTRate           *float64
	MinimumStockLevel *int
	Description       *string
}

// CreateMedicine creates a new medicine
func (s *MedicineService) CreateMedicine(ctx context.Context, input *CreateMedicineInput) (*entity.Medicine, error) {
	return s.create(ctx, input, enum.MovementAdjustment, "initial stock")
}

func (s *MedicineService) create(ctx context.Context, input *CreateMedicineInput, movement enum.MovementType, reference string) (*entity.Medicine, error) {
	minLevel := entity.DefaultMinimumStockLevel
	if input.MinimumStockLevel != nil {
		minLevel = *input.MinimumStockLevel
	}

	medicine := &entity.Medicine{
		Name:              strings.TrimSpace(input.Name),
		Manufacturer:      strings.TrimSpace(input.Manufacturer),
		Category:          strings.TrimSpace(input.Category),
		BatchNumber:       strings.TrimSpace(input.BatchNumber),
		ExpiryDate:        input.ExpiryDate,
		Quantity:          input.Quantity,
		GSTRate:           input.GSTRate,
		MinimumStockLevel: minLevel,
		Description:       input.Description,
	}

	if errs := validateMedicine(medicine, input.Price); len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}
	medicine.Price = money.FromFloat(input.Price)

	existing, err := s.medicineRepo.GetByBatchNumber(ctx, medicine.BatchNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, duplicateBatchError(medicine.BatchNumber)
	}

	if err := s.medicineRepo.Create(ctx, medicine); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, duplicateBatchError(medicine.BatchNumber)
		}
		return nil, err
	}

	if medicine.Quantity > 0 {
		s.stock.record(ctx, medicine, movement, medicine.Quantity, reference, nil)
	}

	return medicine, nil
}

// GetMedicine retrieves a medicine by ID
func (s *MedicineService) GetMedicine(ctx context.Context, id uuid.UUID) (*entity.Medicine, error) {
	medicine, err := s.medicineRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if medicine == nil {
		return nil, apperror.NewNotFoundError("Medicine")
	}
	return medicine, nil
}

// ListMedicines lists medicines with search, filters and pagination
func (s *MedicineService) ListMedicines(ctx context.Context, params *repository.MedicineFilterParams) ([]entity.Medicine, int64, error) {
	return s.medicineRepo.List(ctx, params)
}

// ListLowStock returns medicines at or below their minimum stock level
func (s *MedicineService) ListLowStock(ctx context.Context, limit int) ([]entity.Medicine, error) {
	if limit <= 0 {
		limit = DefaultLowStockLimit
	}
	return s.medicineRepo.ListLowStock(ctx, limit)
}

// UpdateMedicine applies a partial update. A quantity change is applied as a
// delta through the atomic stock methods and recorded as an adjustment, so
// it cannot overwrite a concurrent sale.
func (s *MedicineService) UpdateMedicine(ctx context.Context, id uuid.UUID, input *UpdateMedicineInput) (*entity.Medicine, error) {
	medicine, err := s.medicineRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if medicine == nil {
		return nil, apperror.NewNotFoundError("Medicine")
	}

	oldBatch := medicine.BatchNumber
	priceInput := money.ToFloat(medicine.Price)

	if input.Name != nil {
		medicine.Name = strings.TrimSpace(*input.Name)
	}
	if input.Manufacturer != nil {
		medicine.Manufacturer = strings.TrimSpace(*input.Manufacturer)
	}
	if input.Category != nil {
		medicine.Category = strings.TrimSpace(*input.Category)
	}
	if input.BatchNumber != nil {
		medicine.BatchNumber = strings.TrimSpace(*input.BatchNumber)
	}
	if input.ExpiryDate != nil {
		medicine.ExpiryDate = *input.ExpiryDate
	}
	if input.Price != nil {
		priceInput = *input.Price
	}
	if input.GSTRate != nil {
		medicine.GSTRate = *input.GSTRate
	}
	if input.MinimumStockLevel != nil {
		medicine.MinimumStockLevel = *input.MinimumStockLevel
	}
	if input.Description != nil {
		medicine.Description = input.Description
	}

	errs := validateMedicine(medicine, priceInput)
	if input.Quantity != nil && *input.Quantity < 0 {
		errs = append(errs, apperror.FieldError{Field: "quantity", Message: "Quantity cannot be negative"})
	}
	if len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}

	if medicine.BatchNumber != oldBatch {
		existing, err := s.medicineRepo.GetByBatchNumber(ctx, medicine.BatchNumber)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != medicine.ID {
			return nil, duplicateBatchError(medicine.BatchNumber)
		}
	}

	medicine.Price = money.FromFloat(priceInput)

	// Stock moves first: a rejected decrement leaves the record untouched.
	delta := 0
	if input.Quantity != nil {
		delta, err = s.adjustQuantity(ctx, medicine, *input.Quantity)
		if err != nil {
			return nil, err
		}
	}

	if err := s.medicineRepo.UpdateDetails(ctx, medicine); err != nil {
		s.revertAdjustment(ctx, medicine, delta)
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, duplicateBatchError(medicine.BatchNumber)
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperror.NewNotFoundError("Medicine")
		}
		return nil, err
	}

	return s.GetMedicine(ctx, id)
}

// adjustQuantity moves stock to target by applying the difference from the
// quantity last read. It returns the delta applied.
func (s *MedicineService) adjustQuantity(ctx context.Context, medicine *entity.Medicine, target int) (int, error) {
	delta := target - medicine.Quantity
	switch {
	case delta == 0:
		return 0, nil
	case delta > 0:
		if err := s.medicineRepo.IncrementQuantity(ctx, medicine.ID, delta); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return 0, apperror.NewNotFoundError("Medicine")
			}
			return 0, err
		}
	default:
		ok, err := s.medicineRepo.AtomicDecrementQuantity(ctx, medicine.ID, -delta)
		if err != nil {
			return 0, err
		}
		if !ok {
			available := 0
			if current, err := s.medicineRepo.GetByID(ctx, medicine.ID); err == nil && current != nil {
				available = current.Quantity
			}
			return 0, apperror.NewInsufficientStockError(medicine.Name, available)
		}
	}

	s.stock.record(ctx, medicine, enum.MovementAdjustment, delta, "manual adjustment", nil)
	return delta, nil
}

// revertAdjustment undoes a delta applied by adjustQuantity after the detail
// update failed. Failures are logged; the ledger still shows both moves.
func (s *MedicineService) revertAdjustment(ctx context.Context, medicine *entity.Medicine, delta int) {
	if delta == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)

	var err error
	if delta > 0 {
		var ok bool
		ok, err = s.medicineRepo.AtomicDecrementQuantity(ctx, medicine.ID, delta)
		if err == nil && !ok {
			err = fmt.Errorf("stock already below %d", delta)
		}
	} else {
		err = s.medicineRepo.IncrementQuantity(ctx, medicine.ID, -delta)
	}
	if err != nil {
		log.Printf("Warning: failed to revert stock adjustment of %d for medicine %s: %v", delta, medicine.ID, err)
		return
	}
	s.stock.record(ctx, medicine, enum.MovementCompensation, -delta, "update rejected", nil)
}

// DeleteMedicine removes a medicine. Past invoice lines keep their snapshot.
func (s *MedicineService) DeleteMedicine(ctx context.Context, id uuid.UUID) error {
	medicine, err := s.medicineRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if medicine == nil {
		return apperror.NewNotFoundError("Medicine")
	}

	if err := s.medicineRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NewNotFoundError("Medicine")
		}
		return err
	}
	return nil
}

func validateMedicine(m *entity.Medicine, price float64) []apperror.FieldError {
	var errs []apperror.FieldError
	if m.Name == "" {
		errs = append(errs, apperror.FieldError{Field: "name", Message: "Name is required"})
	}
	if m.Manufacturer == "" {
		errs = append(errs, apperror.FieldError{Field: "manufacturer", Message: "Manufacturer is required"})
	}
	if m.BatchNumber == "" {
		errs = append(errs, apperror.FieldError{Field: "batch_number", Message: "Batch number is required"})
	}
	if m.ExpiryDate.IsZero() {
		errs = append(errs, apperror.FieldError{Field: "expiry_date", Message: "Expiry date is required"})
	}
	if m.Quantity < 0 {
		errs = append(errs, apperror.FieldError{Field: "quantity", Message: "Quantity cannot be negative"})
	}
	if !validAmount(price) {
		errs = append(errs, apperror.FieldError{Field: "price", Message: "Price cannot be negative"})
	}
	if !validRate(m.GSTRate) {
		errs = append(errs, apperror.FieldError{Field: "gst_rate", Message: "GST rate must be between 0 and 100"})
	}
	if m.MinimumStockLevel < 0 {
		errs = append(errs, apperror.FieldError{Field: "minimum_stock_level", Message: "Minimum stock level cannot be negative"})
	}
	return errs
}

func duplicateBatchError(batch string) error {
	return apperror.NewDuplicateError(fmt.Sprintf("Medicine with batch number %s already exists", batch))
}
