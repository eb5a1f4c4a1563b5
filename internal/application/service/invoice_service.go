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
	"github.com/sangkips/pharmacy-pos/pkg/utils"
)

const maxDoctorNameLength = 30

// LowStockNotifier is told about medicines that a sale left at or below
// their minimum stock level.
type LowStockNotifier interface {
	NotifyLowStock(ctx context.Context, medicines []entity.Medicine) error
}

// InvoiceService handles sales: invoice creation with stock decrement,
// status changes and cancellation.
type InvoiceService struct {
	invoiceRepo    repository.InvoiceRepository
	medicineRepo   repository.MedicineRepository
	stock          *StockService
	notifier       LowStockNotifier
	defaultGSTRate float64
	now            func() time.Time
}

// NewInvoiceService creates a new invoice service. notifier may be nil.
func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	medicineRepo repository.MedicineRepository,
	stock *StockService,
	notifier LowStockNotifier,
	defaultGSTRate float64,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:    invoiceRepo,
		medicineRepo:   medicineRepo,
		stock:          stock,
		notifier:       notifier,
		defaultGSTRate: defaultGSTRate,
		now:            time.Now,
	}
}

// InvoiceItemInput represents a requested line. Price and GSTRate override
// the medicine's own values when set.
type InvoiceItemInput struct {
	MedicineID uuid.UUID
	Quantity   int
	Price      *float64
	GSTRate    *float64
}

// CreateInvoiceInput represents the create invoice input
type CreateInvoiceInput struct {
	InvoiceNumber string
	CustomerName  string
	CustomerPhone string
	DoctorName    string
	Items         []InvoiceItemInput
	DiscountType  string
	DiscountValue float64
	GSTRate       *float64
	PaymentMethod string
	Status        string
	Notes         *string
}

// UpdateInvoiceInput represents the editable invoice header fields
type UpdateInvoiceInput struct {
	CustomerName  *string
	CustomerPhone *string
	DoctorName    *string
	PaymentMethod *string
	Status        *string
	Notes         *string
}

// decrement is a completed stock decrement that may need compensating.
type decrement struct {
	medicine *entity.Medicine
	quantity int
}

// CreateInvoice prices every line, decrements stock item by item and stores
// the invoice. If any step fails, decrements already applied are reversed.
func (s *InvoiceService) CreateInvoice(ctx context.Context, input *CreateInvoiceInput) (*entity.Invoice, error) {
	header, err := s.validateCreate(input)
	if err != nil {
		return nil, err
	}

	number := utils.NormalizeInvoiceNumber(input.InvoiceNumber, s.now())
	existing, err := s.invoiceRepo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, duplicateInvoiceError(number)
	}

	invoice := header
	invoice.ID = uuid.New()
	invoice.InvoiceNumber = number

	// Resolve and price every line before touching stock.
	medicines := make([]*entity.Medicine, len(input.Items))
	invoice.Items = make([]entity.InvoiceItem, 0, len(input.Items))
	for i, item := range input.Items {
		medicine, err := s.medicineRepo.GetByID(ctx, item.MedicineID)
		if err != nil {
			return nil, err
		}
		if medicine == nil {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("Medicine %s", item.MedicineID))
		}
		medicines[i] = medicine

		unitPrice := medicine.Price
		if item.Price != nil {
			unitPrice = money.FromFloat(*item.Price)
		}
		rate := ResolveGSTRate(item.GSTRate, input.GSTRate, medicine.GSTRate, s.defaultGSTRate)
		line := PriceLine(item.Quantity, unitPrice, rate)

		invoice.Items = append(invoice.Items, entity.InvoiceItem{
			ID:            uuid.New(),
			InvoiceID:     invoice.ID,
			MedicineID:    medicine.ID,
			Position:      i,
			MedicineName:  medicine.Name,
			BatchNumber:   medicine.BatchNumber,
			Quantity:      item.Quantity,
			Price:         unitPrice,
			GSTRate:       rate,
			TaxableAmount: line.Taxable,
			CGST:          line.CGST,
			SGST:          line.SGST,
			Subtotal:      line.Subtotal,
		})
	}

	totals, err := ComputeTotals(invoice.Items, invoice.DiscountType, invoice.DiscountValue)
	if err != nil {
		return nil, err
	}
	invoice.Subtotal = totals.Subtotal
	invoice.Discount = totals.Discount
	invoice.CGST = totals.CGST
	invoice.SGST = totals.SGST
	invoice.TotalTax = totals.TotalTax
	invoice.TotalAmount = totals.TotalAmount

	var done []decrement
	for i, item := range input.Items {
		medicine := medicines[i]

		ok, err := s.medicineRepo.AtomicDecrementQuantity(ctx, medicine.ID, item.Quantity)
		if err != nil {
			s.compensate(ctx, done, invoice)
			return nil, err
		}
		if !ok {
			current, readErr := s.medicineRepo.GetByID(ctx, medicine.ID)
			s.compensate(ctx, done, invoice)
			if readErr != nil {
				return nil, readErr
			}
			if current == nil {
				return nil, apperror.NewNotFoundError(fmt.Sprintf("Medicine %s", medicine.ID))
			}
			return nil, apperror.NewInsufficientStockError(current.Name, current.Quantity)
		}

		done = append(done, decrement{medicine: medicine, quantity: item.Quantity})
		s.stock.record(ctx, medicine, enum.MovementSale, -item.Quantity, invoice.InvoiceNumber, &invoice.ID)
	}

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		s.compensate(ctx, done, invoice)
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, duplicateInvoiceError(number)
		}
		return nil, err
	}

	s.checkLowStock(ctx, medicines)

	return s.GetInvoice(ctx, invoice.ID)
}

// compensate re-increments completed decrements in reverse order. It runs
// detached from the request context so a cancelled request still restores
// stock.
func (s *InvoiceService) compensate(ctx context.Context, done []decrement, invoice *entity.Invoice) {
	ctx = context.WithoutCancel(ctx)
	for i := len(done) - 1; i >= 0; i-- {
		d := done[i]
		if err := s.medicineRepo.IncrementQuantity(ctx, d.medicine.ID, d.quantity); err != nil {
			log.Printf("Compensation failed for medicine %s (invoice %s, qty %d): %v",
				d.medicine.ID, invoice.InvoiceNumber, d.quantity, err)
			continue
		}
		s.stock.record(ctx, d.medicine, enum.MovementCompensation, d.quantity, invoice.InvoiceNumber, nil)
	}
}

// checkLowStock notifies asynchronously about sold medicines now at or
// below their minimum level.
func (s *InvoiceService) checkLowStock(ctx context.Context, sold []*entity.Medicine) {
	if s.notifier == nil {
		return
	}

	ids := make([]uuid.UUID, 0, len(sold))
	seen := make(map[uuid.UUID]bool, len(sold))
	for _, m := range sold {
		if !seen[m.ID] {
			seen[m.ID] = true
			ids = append(ids, m.ID)
		}
	}

	ctx = context.WithoutCancel(ctx)
	go func() {
		var low []entity.Medicine
		for _, id := range ids {
			m, err := s.medicineRepo.GetByID(ctx, id)
			if err != nil || m == nil {
				continue
			}
			if m.IsLowStock() {
				low = append(low, *m)
			}
		}
		if len(low) == 0 {
			return
		}
		if err := s.notifier.NotifyLowStock(ctx, low); err != nil {
			log.Printf("Low stock alert failed: %v", err)
		}
	}()
}

// GetInvoice retrieves an invoice with its items
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	return invoice, nil
}

// ListInvoices lists invoices with search, filters and pagination
func (s *InvoiceService) ListInvoices(ctx context.Context, params *repository.InvoiceFilterParams) ([]entity.Invoice, int64, error) {
	return s.invoiceRepo.List(ctx, params)
}

// UpdateInvoice edits header fields. Items and totals never change after
// creation.
func (s *InvoiceService) UpdateInvoice(ctx context.Context, id uuid.UUID, input *UpdateInvoiceInput) (*entity.Invoice, error) {
	invoice, err := s.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	var errs []apperror.FieldError
	if input.CustomerName != nil {
		invoice.CustomerName = strings.TrimSpace(*input.CustomerName)
	}
	if input.CustomerPhone != nil {
		invoice.CustomerPhone = strings.TrimSpace(*input.CustomerPhone)
	}
	if input.DoctorName != nil {
		invoice.DoctorName = strings.TrimSpace(*input.DoctorName)
	}
	if input.PaymentMethod != nil {
		pm, ok := enum.ParsePaymentMethod(*input.PaymentMethod)
		if !ok {
			errs = append(errs, invalidPaymentMethod())
		}
		invoice.PaymentMethod = pm
	}
	if input.Status != nil {
		status, ok := enum.ParseInvoiceStatus(*input.Status)
		if !ok {
			return nil, invalidStatusError()
		}
		invoice.Status = status
	}
	if input.Notes != nil {
		invoice.Notes = input.Notes
	}

	errs = append(errs, validateHeader(invoice)...)
	if len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}

	if err := s.invoiceRepo.UpdateDetails(ctx, invoice); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NewNotFoundError("Invoice")
		}
		return nil, err
	}

	return s.GetInvoice(ctx, id)
}

// UpdateStatus sets the invoice status. Any transition is allowed and no
// stock moves.
func (s *InvoiceService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*entity.Invoice, error) {
	parsed, ok := enum.ParseInvoiceStatus(status)
	if !ok {
		return nil, invalidStatusError()
	}

	if _, err := s.GetInvoice(ctx, id); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.UpdateStatus(ctx, id, parsed); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NewNotFoundError("Invoice")
		}
		return nil, err
	}

	return s.GetInvoice(ctx, id)
}

// RestockedLine reports one line returned to stock, or skipped
type RestockedLine struct {
	MedicineID   uuid.UUID `json:"medicine_id"`
	MedicineName string    `json:"medicine_name"`
	Quantity     int       `json:"quantity"`
	Reason       string    `json:"reason,omitempty"`
}

// CancelRestockResult is returned by CancelAndRestock
type CancelRestockResult struct {
	Invoice   *entity.Invoice `json:"invoice"`
	Restocked []RestockedLine `json:"restocked"`
	Skipped   []RestockedLine `json:"skipped"`
}

// CancelAndRestock cancels an invoice and returns every line to stock. It
// runs at most once per invoice.
func (s *InvoiceService) CancelAndRestock(ctx context.Context, id uuid.UUID) (*CancelRestockResult, error) {
	invoice, err := s.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice.IsRestocked() {
		return nil, alreadyRestockedError()
	}

	marked, err := s.invoiceRepo.MarkRestocked(ctx, id, s.now())
	if err != nil {
		return nil, err
	}
	if !marked {
		return nil, alreadyRestockedError()
	}

	result := &CancelRestockResult{
		Restocked: []RestockedLine{},
		Skipped:   []RestockedLine{},
	}

	ctx = context.WithoutCancel(ctx)
	for _, item := range invoice.Items {
		line := RestockedLine{
			MedicineID:   item.MedicineID,
			MedicineName: item.MedicineName,
			Quantity:     item.Quantity,
		}

		if err := s.medicineRepo.IncrementQuantity(ctx, item.MedicineID, item.Quantity); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				line.Reason = "medicine no longer exists"
			} else {
				log.Printf("Restock failed for medicine %s (invoice %s): %v", item.MedicineID, invoice.InvoiceNumber, err)
				line.Reason = err.Error()
			}
			result.Skipped = append(result.Skipped, line)
			continue
		}

		medicine := &entity.Medicine{ID: item.MedicineID, Name: item.MedicineName}
		s.stock.record(ctx, medicine, enum.MovementCancelRestock, item.Quantity, invoice.InvoiceNumber, &invoice.ID)
		result.Restocked = append(result.Restocked, line)
	}

	result.Invoice, err = s.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteInvoice removes an invoice and its items. Stock is not restored.
func (s *InvoiceService) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetInvoice(ctx, id); err != nil {
		return err
	}

	if err := s.invoiceRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NewNotFoundError("Invoice")
		}
		return err
	}
	return nil
}

// validateCreate checks everything that does not need the database and
// returns the invoice header.
func (s *InvoiceService) validateCreate(input *CreateInvoiceInput) (*entity.Invoice, error) {
	var errs []apperror.FieldError

	invoice := &entity.Invoice{
		CustomerName:  strings.TrimSpace(input.CustomerName),
		CustomerPhone: strings.TrimSpace(input.CustomerPhone),
		DoctorName:    strings.TrimSpace(input.DoctorName),
		DiscountValue: input.DiscountValue,
		GSTRate:       input.GSTRate,
		Notes:         input.Notes,
		Status:        enum.InvoiceStatusPending,
	}

	pm, ok := enum.ParsePaymentMethod(input.PaymentMethod)
	if !ok {
		errs = append(errs, invalidPaymentMethod())
	}
	invoice.PaymentMethod = pm

	dt, ok := enum.ParseDiscountType(input.DiscountType)
	if !ok {
		errs = append(errs, apperror.FieldError{Field: "discount_type", Message: "Discount type must be amount or percentage"})
	}
	invoice.DiscountType = dt

	if input.Status != "" {
		status, ok := enum.ParseInvoiceStatus(input.Status)
		if !ok {
			return nil, invalidStatusError()
		}
		invoice.Status = status
	}

	errs = append(errs, validateHeader(invoice)...)

	if input.GSTRate != nil && !validRate(*input.GSTRate) {
		errs = append(errs, apperror.FieldError{Field: "gst_rate", Message: "GST rate must be between 0 and 100"})
	}

	if len(input.Items) == 0 {
		errs = append(errs, apperror.FieldError{Field: "items", Message: "At least one item is required"})
	}
	for i, item := range input.Items {
		field := fmt.Sprintf("items[%d]", i)
		if item.MedicineID == uuid.Nil {
			errs = append(errs, apperror.FieldError{Field: field + ".medicine_id", Message: "Medicine is required"})
		}
		if item.Quantity < 1 {
			errs = append(errs, apperror.FieldError{Field: field + ".quantity", Message: "Quantity must be at least 1"})
		}
		if item.Price != nil && !validAmount(*item.Price) {
			errs = append(errs, apperror.FieldError{Field: field + ".price", Message: "Price cannot be negative"})
		}
		if item.GSTRate != nil && !validRate(*item.GSTRate) {
			errs = append(errs, apperror.FieldError{Field: field + ".gst_rate", Message: "GST rate must be between 0 and 100"})
		}
	}

	if len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}
	return invoice, nil
}

func validateHeader(invoice *entity.Invoice) []apperror.FieldError {
	var errs []apperror.FieldError
	if invoice.CustomerName == "" {
		errs = append(errs, apperror.FieldError{Field: "customer_name", Message: "Customer name is required"})
	}
	if invoice.CustomerPhone == "" {
		errs = append(errs, apperror.FieldError{Field: "customer_phone", Message: "Customer phone is required"})
	}
	if len([]rune(invoice.DoctorName)) > maxDoctorNameLength {
		errs = append(errs, apperror.FieldError{Field: "doctor_name", Message: "Doctor name must be at most 30 characters"})
	}
	return errs
}

func invalidPaymentMethod() apperror.FieldError {
	return apperror.FieldError{Field: "payment_method", Message: "Payment method must be Cash, Card, or UPI"}
}

func invalidStatusError() error {
	return apperror.NewBadRequestError("Invalid status. Must be Pending, Paid, or Cancelled")
}

func alreadyRestockedError() error {
	return apperror.NewBadRequestError("Invoice has already been cancelled and restocked")
}

func duplicateInvoiceError(number string) error {
	return apperror.NewDuplicateError(fmt.Sprintf("Invoice number %s already exists", number))
}
