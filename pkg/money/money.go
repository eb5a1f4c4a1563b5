// Package money converts between rupee decimals and integer paise.
//
// All stored amounts are int64 paise. Client input arrives as JSON numbers in
// rupees and is rounded half away from zero to the nearest paisa.
package money

import (
	"github.com/shopspring/decimal"
)

// FromFloat converts rupees to paise.
func FromFloat(rupees float64) int64 {
	return decimal.NewFromFloat(rupees).Shift(2).Round(0).IntPart()
}

// ToFloat converts paise to rupees for JSON output.
func ToFloat(paise int64) float64 {
	f, _ := decimal.New(paise, -2).Float64()
	return f
}

// Format renders paise as a fixed two-decimal rupee string, e.g. "123.40".
func Format(paise int64) string {
	return decimal.New(paise, -2).StringFixed(2)
}

// Percent returns rate percent of amount, rounded to the nearest paisa.
func Percent(amount int64, rate float64) int64 {
	return decimal.NewFromInt(amount).
		Mul(decimal.NewFromFloat(rate)).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}

// Mul returns unit price times quantity.
func Mul(paise int64, qty int) int64 {
	return paise * int64(qty)
}

// Average divides a total by n, rounded to the nearest paisa. Zero when n is 0.
func Average(total int64, n int64) int64 {
	if n == 0 {
		return 0
	}
	return decimal.NewFromInt(total).Div(decimal.NewFromInt(n)).Round(0).IntPart()
}
