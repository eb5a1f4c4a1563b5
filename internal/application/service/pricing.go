package service

import (
	"fmt"
	"math"

	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos/internal/domain/enum"
	"github.com/sangkips/pharmacy-pos/pkg/apperror"
	"github.com/sangkips/pharmacy-pos/pkg/money"
)

// LinePrice is the tax-exclusive breakdown of one invoice line, in paise.
type LinePrice struct {
	Taxable  int64
	CGST     int64
	SGST     int64
	Subtotal int64
}

// PriceLine computes taxable = qty x price, rounds GST to the paisa and
// splits it into CGST and SGST. The halves always sum to the line GST; an
// odd paisa goes to SGST.
func PriceLine(quantity int, unitPrice int64, gstRate float64) LinePrice {
	taxable := money.Mul(unitPrice, quantity)
	gst := money.Percent(taxable, gstRate)
	cgst := gst / 2
	return LinePrice{
		Taxable:  taxable,
		CGST:     cgst,
		SGST:     gst - cgst,
		Subtotal: taxable + gst,
	}
}

// ResolveGSTRate picks the first rate that applies: the line, the invoice,
// the medicine's own rate when set, then the configured default.
func ResolveGSTRate(lineRate, invoiceRate *float64, medicineRate, defaultRate float64) float64 {
	switch {
	case lineRate != nil:
		return *lineRate
	case invoiceRate != nil:
		return *invoiceRate
	case medicineRate > 0:
		return medicineRate
	default:
		return defaultRate
	}
}

// InvoiceTotals are the header amounts of an invoice, in paise.
type InvoiceTotals struct {
	Subtotal    int64
	Discount    int64
	CGST        int64
	SGST        int64
	TotalTax    int64
	TotalAmount int64
}

// ComputeTotals sums priced lines and applies the discount.
// total_amount = sum(line subtotal) - discount, exactly.
func ComputeTotals(items []entity.InvoiceItem, discountType enum.DiscountType, discountValue float64) (InvoiceTotals, error) {
	var t InvoiceTotals
	for _, it := range items {
		t.Subtotal += it.Subtotal
		t.CGST += it.CGST
		t.SGST += it.SGST
	}
	t.TotalTax = t.CGST + t.SGST

	if !validAmount(discountValue) {
		return t, discountError("Discount cannot be negative")
	}

	switch discountType {
	case enum.DiscountTypePercentage:
		if discountValue > 100 {
			return t, discountError("Discount percentage must be between 0 and 100")
		}
		t.Discount = money.Percent(t.Subtotal, discountValue)
	default:
		t.Discount = money.FromFloat(discountValue)
	}

	if t.Discount > t.Subtotal {
		return t, discountError(fmt.Sprintf("Discount %s exceeds subtotal %s", money.Format(t.Discount), money.Format(t.Subtotal)))
	}

	t.TotalAmount = t.Subtotal - t.Discount
	return t, nil
}

// validAmount reports whether v is a usable rupee amount. NaN and the
// infinities cannot be converted to paise.
func validAmount(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1)
}

// validRate reports whether r is a GST percentage. NaN fails both bounds.
func validRate(r float64) bool {
	return r >= 0 && r <= 100
}

func discountError(msg string) error {
	return apperror.NewValidationError([]apperror.FieldError{{Field: "discount", Message: msg}})
}
