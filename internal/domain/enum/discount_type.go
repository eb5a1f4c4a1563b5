package enum

// DiscountType selects how an invoice discount value is interpreted
type DiscountType string

const (
	DiscountTypeAmount     DiscountType = "amount"
	DiscountTypePercentage DiscountType = "percentage"
)

func (d DiscountType) IsValid() bool {
	return d == DiscountTypeAmount || d == DiscountTypePercentage
}

// ParseDiscountType defaults a blank value to amount.
func ParseDiscountType(s string) (DiscountType, bool) {
	if s == "" {
		return DiscountTypeAmount, true
	}
	d := DiscountType(s)
	return d, d.IsValid()
}
