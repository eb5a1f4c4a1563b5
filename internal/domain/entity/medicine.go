package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/pkg/money"
	"gorm.io/gorm"
)

// Medicine is the stock record for one drug batch
type Medicine struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name              string    `gorm:"size:255;not null;index" json:"name"`
	Manufacturer      string    `gorm:"size:255;not null" json:"manufacturer"`
	Category          string    `gorm:"size:100;index" json:"category"`
	BatchNumber       string    `gorm:"size:100;uniqueIndex;not null" json:"batch_number"`
	ExpiryDate        time.Time `gorm:"not null;index" json:"expiry_date"`
	Quantity          int       `gorm:"not null;default:0" json:"quantity"`
	Price             int64     `gorm:"not null" json:"price"` // paise
	GSTRate           float64   `json:"gst_rate"`
	MinimumStockLevel int       `gorm:"not null" json:"minimum_stock_level"`
	Description       *string   `gorm:"type:text" json:"description,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// DefaultMinimumStockLevel applies when a medicine is created without one
const DefaultMinimumStockLevel = 10

// BeforeCreate generates a UUID before creating a new medicine
func (m *Medicine) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Medicine model
func (Medicine) TableName() string {
	return "medicines"
}

// IsLowStock reports whether quantity is at or below the minimum level
func (m *Medicine) IsLowStock() bool {
	return m.Quantity <= m.MinimumStockLevel
}

// IsExpired reports whether the batch expired before now
func (m *Medicine) IsExpired(now time.Time) bool {
	return m.ExpiryDate.Before(now)
}

// StockValue is price times quantity in paise
func (m *Medicine) StockValue() int64 {
	return money.Mul(m.Price, m.Quantity)
}

// MarshalJSON renders prices in rupees and adds derived flags
func (m Medicine) MarshalJSON() ([]byte, error) {
	type Alias Medicine
	return json.Marshal(&struct {
		Alias
		Price      float64 `json:"price"`
		ExpiryDate string  `json:"expiry_date"`
		IsLowStock bool    `json:"is_low_stock"`
		IsExpired  bool    `json:"is_expired"`
	}{
		Alias:      Alias(m),
		Price:      money.ToFloat(m.Price),
		ExpiryDate: m.ExpiryDate.Format("2006-01-02"),
		IsLowStock: m.IsLowStock(),
		IsExpired:  m.IsExpired(time.Now()),
	})
}
