package enum

import (
	"encoding/json"
	"fmt"
)

// PaymentMethod is how an invoice was settled
type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "Cash"
	PaymentMethodCard PaymentMethod = "Card"
	PaymentMethodUPI  PaymentMethod = "UPI"
)

func (p PaymentMethod) IsValid() bool {
	switch p {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodUPI:
		return true
	}
	return false
}

// ParsePaymentMethod defaults a blank value to Cash.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	if s == "" {
		return PaymentMethodCash, true
	}
	p := PaymentMethod(s)
	return p, p.IsValid()
}

func (p *PaymentMethod) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, ok := ParsePaymentMethod(str)
	if !ok {
		return fmt.Errorf("invalid payment method %q", str)
	}
	*p = parsed
	return nil
}
