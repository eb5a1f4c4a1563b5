package enum

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInvoiceStatus(t *testing.T) {
	for _, name := range []string{"Pending", "Paid", "Cancelled"} {
		s, ok := ParseInvoiceStatus(name)
		require.True(t, ok, name)
		assert.Equal(t, name, s.String())
	}

	for _, bad := range []string{"paid", "PAID", "Complete", "", "Canceled"} {
		_, ok := ParseInvoiceStatus(bad)
		assert.False(t, ok, bad)
	}
}

func TestInvoiceStatus_JSON(t *testing.T) {
	var s InvoiceStatus
	require.NoError(t, json.Unmarshal([]byte(`"Paid"`), &s))
	assert.Equal(t, InvoiceStatusPaid, s)

	assert.Error(t, json.Unmarshal([]byte(`"Refunded"`), &s))
	assert.Error(t, json.Unmarshal([]byte(`1`), &s))

	b, err := json.Marshal(InvoiceStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, `"Cancelled"`, string(b))
}

func TestInvoiceStatus_Scan(t *testing.T) {
	var s InvoiceStatus
	require.NoError(t, s.Scan(int64(2)))
	assert.Equal(t, InvoiceStatusCancelled, s)
	require.NoError(t, s.Scan(nil))
	assert.Equal(t, InvoiceStatusPending, s)
	assert.Error(t, s.Scan("Paid"))
}

func TestParsePaymentMethod(t *testing.T) {
	p, ok := ParsePaymentMethod("")
	assert.True(t, ok)
	assert.Equal(t, PaymentMethodCash, p)

	_, ok = ParsePaymentMethod("UPI")
	assert.True(t, ok)
	_, ok = ParsePaymentMethod("Cheque")
	assert.False(t, ok)
}

func TestParseDiscountType(t *testing.T) {
	d, ok := ParseDiscountType("")
	assert.True(t, ok)
	assert.Equal(t, DiscountTypeAmount, d)
	_, ok = ParseDiscountType("flat")
	assert.False(t, ok)
}
