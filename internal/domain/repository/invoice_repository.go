package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos/internal/domain/enum"
	"github.com/sangkips/pharmacy-pos/pkg/pagination"
)

// InvoiceRepository defines the interface for invoice data operations
type InvoiceRepository interface {
	// Create stores the invoice and its items together.
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	GetByNumber(ctx context.Context, number string) (*entity.Invoice, error)
	// UpdateDetails writes customer, doctor, payment method, status and
	// notes. Items and totals are never rewritten.
	UpdateDetails(ctx context.Context, invoice *entity.Invoice) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status enum.InvoiceStatus) error
	// MarkRestocked sets restocked_at and status Cancelled only if the
	// invoice has not been restocked yet. Returns false when another call
	// got there first.
	MarkRestocked(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *InvoiceFilterParams) ([]entity.Invoice, int64, error)
	ListAll(ctx context.Context) ([]entity.Invoice, error)
}

// InvoiceFilterParams contains filtering parameters for invoice queries
type InvoiceFilterParams struct {
	Pagination    *pagination.PaginationParams
	Search        string
	Status        *enum.InvoiceStatus
	PaymentMethod *enum.PaymentMethod
	StartDate     *time.Time
	EndDate       *time.Time // exclusive
}
