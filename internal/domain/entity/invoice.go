package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/enum"
	"github.com/sangkips/pharmacy-pos/pkg/money"
	"gorm.io/gorm"
)

// Invoice is a completed sale. All amounts are in paise.
type Invoice struct {
	ID            uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceNumber string             `gorm:"size:100;uniqueIndex;not null" json:"invoice_number"`
	CustomerName  string             `gorm:"size:255;not null;index" json:"customer_name"`
	CustomerPhone string             `gorm:"size:20;not null" json:"customer_phone"`
	DoctorName    string             `gorm:"size:30" json:"doctor_name,omitempty"`
	Subtotal      int64              `gorm:"not null" json:"subtotal"`
	DiscountType  enum.DiscountType  `gorm:"size:20;not null" json:"discount_type"`
	DiscountValue float64            `json:"discount_value"`
	Discount      int64              `gorm:"not null" json:"discount"`
	GSTRate       *float64           `json:"gst_rate,omitempty"`
	CGST          int64              `gorm:"column:cgst;not null" json:"cgst"`
	SGST          int64              `gorm:"column:sgst;not null" json:"sgst"`
	TotalTax      int64              `gorm:"not null" json:"total_tax"`
	TotalAmount   int64              `gorm:"not null" json:"total_amount"`
	PaymentMethod enum.PaymentMethod `gorm:"size:20;not null" json:"payment_method"`
	Status        enum.InvoiceStatus `gorm:"not null;default:0;index" json:"status"`
	Notes         *string            `gorm:"type:text" json:"notes,omitempty"`
	RestockedAt   *time.Time         `json:"restocked_at,omitempty"`
	CreatedAt     time.Time          `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items"`
}

// BeforeCreate generates a UUID before creating a new invoice
func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

// IsRestocked reports whether cancel-and-restock already ran
func (i *Invoice) IsRestocked() bool {
	return i.RestockedAt != nil
}

func (i Invoice) MarshalJSON() ([]byte, error) {
	type Alias Invoice
	return json.Marshal(&struct {
		Alias
		Subtotal    float64 `json:"subtotal"`
		Discount    float64 `json:"discount"`
		CGST        float64 `json:"cgst"`
		SGST        float64 `json:"sgst"`
		TotalTax    float64 `json:"total_tax"`
		TotalAmount float64 `json:"total_amount"`
	}{
		Alias:       Alias(i),
		Subtotal:    money.ToFloat(i.Subtotal),
		Discount:    money.ToFloat(i.Discount),
		CGST:        money.ToFloat(i.CGST),
		SGST:        money.ToFloat(i.SGST),
		TotalTax:    money.ToFloat(i.TotalTax),
		TotalAmount: money.ToFloat(i.TotalAmount),
	})
}

// InvoiceItem is one priced line. Name, batch and price are snapshots taken
// at sale time.
type InvoiceItem struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceID     uuid.UUID `gorm:"type:uuid;not null;index" json:"invoice_id"`
	MedicineID    uuid.UUID `gorm:"type:uuid;not null;index" json:"medicine_id"`
	Position      int       `gorm:"not null" json:"-"`
	MedicineName  string    `gorm:"size:255;not null" json:"medicine_name"`
	BatchNumber   string    `gorm:"size:100" json:"batch_number"`
	Quantity      int       `gorm:"not null" json:"quantity"`
	Price         int64     `gorm:"not null" json:"price"`
	GSTRate       float64   `json:"gst_rate"`
	TaxableAmount int64     `gorm:"not null" json:"taxable_amount"`
	CGST          int64     `gorm:"column:cgst;not null" json:"cgst"`
	SGST          int64     `gorm:"column:sgst;not null" json:"sgst"`
	Subtotal      int64     `gorm:"not null" json:"subtotal"`
}

func (it *InvoiceItem) BeforeCreate(tx *gorm.DB) error {
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	return nil
}

func (InvoiceItem) TableName() string {
	return "invoice_items"
}

func (it InvoiceItem) MarshalJSON() ([]byte, error) {
	type Alias InvoiceItem
	return json.Marshal(&struct {
		Alias
		Price         float64 `json:"price"`
		TaxableAmount float64 `json:"taxable_amount"`
		CGST          float64 `json:"cgst"`
		SGST          float64 `json:"sgst"`
		Subtotal      float64 `json:"subtotal"`
	}{
		Alias:         Alias(it),
		Price:         money.ToFloat(it.Price),
		TaxableAmount: money.ToFloat(it.TaxableAmount),
		CGST:          money.ToFloat(it.CGST),
		SGST:          money.ToFloat(it.SGST),
		Subtotal:      money.ToFloat(it.Subtotal),
	})
}
