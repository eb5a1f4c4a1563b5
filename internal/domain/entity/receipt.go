package entity

// ReceiptHeader holds the pharmacy details printed at the top of a receipt.
type ReceiptHeader struct {
	StoreName string `json:"store_name"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
	GSTIN     string `json:"gstin,omitempty"`
}

// ReceiptItem is a single printed line.
type ReceiptItem struct {
	Name        string  `json:"name"`
	BatchNumber string  `json:"batch_number,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	GSTRate     float64 `json:"gst_rate"`
	Total       float64 `json:"total"`
}

// Receipt is composed from an invoice at print time; it is not stored.
type Receipt struct {
	Header        ReceiptHeader `json:"header"`
	InvoiceNumber string        `json:"invoice_number"`
	Date          string        `json:"date"`
	Customer      string        `json:"customer"`
	CustomerPhone string        `json:"customer_phone,omitempty"`
	Doctor        string        `json:"doctor,omitempty"`
	Items         []ReceiptItem `json:"items"`
	Subtotal      float64       `json:"subtotal"`
	CGST          float64       `json:"cgst"`
	SGST          float64       `json:"sgst"`
	Discount      float64       `json:"discount"`
	Total         float64       `json:"total"`
	PaymentMethod string        `json:"payment_method"`
	Status        string        `json:"status"`
}
