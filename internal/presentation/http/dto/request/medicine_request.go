package request

// CreateMedicineRequest represents a create medicine request.
// ExpiryDate is a calendar date, YYYY-MM-DD.
type CreateMedicineRequest struct {
	Name              string  `json:"name" binding:"required,max=255"`
	Manufacturer      string  `json:"manufacturer" binding:"required,max=255"`
	Category          string  `json:"category" binding:"max=100"`
	BatchNumber       string  `json:"batch_number" binding:"required,max=100"`
	ExpiryDate        string  `json:"expiry_date" binding:"required"`
	Quantity          int     `json:"quantity" binding:"min=0"`
	Price             float64 `json:"price" binding:"min=0"`
	GSTRate           float64 `json:"gst_rate" binding:"min=0,max=100"`
	MinimumStockLevel *int    `json:"minimum_stock_level" binding:"omitempty,min=0"`
	Description       *string `json:"description"`
}

// UpdateMedicineRequest represents a partial medicine update
type UpdateMedicineRequest struct {
	Name              *string  `json:"name" binding:"omitempty,max=255"`
	Manufacturer      *string  `json:"manufacturer" binding:"omitempty,max=255"`
	Category          *string  `json:"category" binding:"omitempty,max=100"`
	BatchNumber       *string  `json:"batch_number" binding:"omitempty,max=100"`
	ExpiryDate        *string  `json:"expiry_date"`
	Quantity          *int     `json:"quantity" binding:"omitempty,min=0"`
	Price             *float64 `json:"price" binding:"omitempty,min=0"`
	GSTRate           *float64 `json:"gst_rate" binding:"omitempty,min=0,max=100"`
	MinimumStockLevel *int     `json:"minimum_stock_level" binding:"omitempty,min=0"`
	Description       *string  `json:"description"`
}

// MedicineFilterRequest represents medicine list query parameters.
// Limit is accepted as an alias of PerPage.
type MedicineFilterRequest struct {
	Search    string `form:"search"`
	Category  string `form:"category"`
	LowStock  bool   `form:"low_stock"`
	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
	Page      int    `form:"page"`
	PerPage   int    `form:"per_page"`
	Limit     int    `form:"limit"`
}

// RestockRequest represents a manual stock receipt
type RestockRequest struct {
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
	Reference string `json:"reference" binding:"max=255"`
}

// MovementFilterRequest pages through a medicine's stock ledger
type MovementFilterRequest struct {
	Page    int `form:"page"`
	PerPage int `form:"per_page"`
	Limit   int `form:"limit"`
}
