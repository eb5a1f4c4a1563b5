package request

// InvoiceItemRequest is one requested invoice line. Price and GSTRate
// default to the medicine's own values when omitted.
type InvoiceItemRequest struct {
	MedicineID string   `json:"medicine_id" binding:"required,uuid"`
	Quantity   int      `json:"quantity" binding:"required,gt=0"`
	Price      *float64 `json:"price" binding:"omitempty,min=0"`
	GSTRate    *float64 `json:"gst_rate" binding:"omitempty,min=0,max=100"`
}

// CreateInvoiceRequest represents a create invoice request
type CreateInvoiceRequest struct {
	InvoiceNumber string               `json:"invoice_number" binding:"max=50"`
	CustomerName  string               `json:"customer_name" binding:"required,max=255"`
	CustomerPhone string               `json:"customer_phone" binding:"required,max=20"`
	DoctorName    string               `json:"doctor_name"`
	Items         []InvoiceItemRequest `json:"items" binding:"required,min=1,dive"`
	DiscountType  string               `json:"discount_type" binding:"omitempty,oneof=amount percentage"`
	DiscountValue float64              `json:"discount_value" binding:"min=0"`
	GSTRate       *float64             `json:"gst_rate" binding:"omitempty,min=0,max=100"`
	PaymentMethod string               `json:"payment_method"`
	Status        string               `json:"status"`
	Notes         *string              `json:"notes"`
}

// UpdateInvoiceRequest edits invoice header fields only
type UpdateInvoiceRequest struct {
	CustomerName  *string `json:"customer_name" binding:"omitempty,max=255"`
	CustomerPhone *string `json:"customer_phone" binding:"omitempty,max=20"`
	DoctorName    *string `json:"doctor_name"`
	PaymentMethod *string `json:"payment_method"`
	Status        *string `json:"status"`
	Notes         *string `json:"notes"`
}

// UpdateInvoiceStatusRequest represents a status change
type UpdateInvoiceStatusRequest struct {
	Status string `json:"status"`
}

// InvoiceFilterRequest represents invoice list query parameters.
// Dates are YYYY-MM-DD and inclusive.
type InvoiceFilterRequest struct {
	Search        string `form:"search"`
	Status        string `form:"status"`
	PaymentMethod string `form:"payment_method"`
	StartDate     string `form:"start_date"`
	EndDate       string `form:"end_date"`
	Page          int    `form:"page"`
	PerPage       int    `form:"per_page"`
	Limit         int    `form:"limit"`
}
