package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/enum"
	"gorm.io/gorm"
)

// StockMovement is one signed change to a medicine's quantity. Rows are
// never updated or deleted.
type StockMovement struct {
	ID            uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	MedicineID    uuid.UUID         `gorm:"type:uuid;not null;index" json:"medicine_id"`
	MedicineName  string            `gorm:"size:255" json:"medicine_name"`
	Type          enum.MovementType `gorm:"size:30;not null;index" json:"type"`
	QuantityDelta int               `gorm:"not null" json:"quantity_delta"`
	QuantityAfter *int              `json:"quantity_after,omitempty"`
	Reference     string            `gorm:"size:255" json:"reference,omitempty"`
	InvoiceID     *uuid.UUID        `gorm:"type:uuid;index" json:"invoice_id,omitempty"`
	CreatedAt     time.Time         `gorm:"index" json:"created_at"`
}

func (s *StockMovement) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (StockMovement) TableName() string {
	return "stock_movements"
}
