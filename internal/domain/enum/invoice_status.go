package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// InvoiceStatus represents the lifecycle state of an invoice
type InvoiceStatus int

const (
	InvoiceStatusPending   InvoiceStatus = 0
	InvoiceStatusPaid      InvoiceStatus = 1
	InvoiceStatusCancelled InvoiceStatus = 2
)

var invoiceStatusNames = [...]string{"Pending", "Paid", "Cancelled"}

func (s InvoiceStatus) String() string {
	if !s.IsValid() {
		return fmt.Sprintf("InvoiceStatus(%d)", int(s))
	}
	return invoiceStatusNames[s]
}

func (s InvoiceStatus) IsValid() bool {
	return s >= InvoiceStatusPending && s <= InvoiceStatusCancelled
}

// ParseInvoiceStatus matches the exact display names. Case variants such as
// "paid" are rejected.
func ParseInvoiceStatus(str string) (InvoiceStatus, bool) {
	for i, name := range invoiceStatusNames {
		if name == str {
			return InvoiceStatus(i), true
		}
	}
	return InvoiceStatusPending, false
}

func (s InvoiceStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *InvoiceStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("invoice status must be a string")
	}
	parsed, ok := ParseInvoiceStatus(str)
	if !ok {
		return fmt.Errorf("invalid invoice status %q", str)
	}
	*s = parsed
	return nil
}

func (s InvoiceStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *InvoiceStatus) Scan(value interface{}) error {
	if value == nil {
		*s = InvoiceStatusPending
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = InvoiceStatus(v)
	case int32:
		*s = InvoiceStatus(v)
	case int:
		*s = InvoiceStatus(v)
	default:
		return fmt.Errorf("cannot scan %T into InvoiceStatus", value)
	}
	return nil
}
