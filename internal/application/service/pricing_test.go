package service

import (
	"testing"

	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos/internal/domain/enum"
	"github.com/sangkips/pharmacy-pos/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceLine_NoTax(t *testing.T) {
	p := PriceLine(3, 1000, 0)
	assert.Equal(t, LinePrice{Taxable: 3000, CGST: 0, SGST: 0, Subtotal: 3000}, p)
}

func TestPriceLine_SplitsGST(t *testing.T) {
	p := PriceLine(2, 5000, 12)
	assert.Equal(t, int64(10000), p.Taxable)
	assert.Equal(t, int64(600), p.CGST)
	assert.Equal(t, int64(600), p.SGST)
	assert.Equal(t, int64(11200), p.Subtotal)
}

func TestPriceLine_OddPaisaGoesToSGST(t *testing.T) {
	// 5% of 1.30 = 6.5 paise, rounds to 7
	p := PriceLine(1, 130, 5)
	assert.Equal(t, int64(3), p.CGST)
	assert.Equal(t, int64(4), p.SGST)
	assert.Equal(t, p.Taxable+p.CGST+p.SGST, p.Subtotal)

	for qty := 1; qty < 50; qty++ {
		for _, rate := range []float64{0, 2.5, 5, 12, 18, 28} {
			lp := PriceLine(qty, 1999, rate)
			gst := lp.Subtotal - lp.Taxable
			assert.Equal(t, gst, lp.CGST+lp.SGST)
			assert.True(t, lp.SGST-lp.CGST == 0 || lp.SGST-lp.CGST == 1)
		}
	}
}

func TestResolveGSTRate(t *testing.T) {
	line, inv := 5.0, 12.0
	assert.Equal(t, 5.0, ResolveGSTRate(&line, &inv, 18, 0))
	assert.Equal(t, 12.0, ResolveGSTRate(nil, &inv, 18, 0))
	assert.Equal(t, 18.0, ResolveGSTRate(nil, nil, 18, 3))
	assert.Equal(t, 3.0, ResolveGSTRate(nil, nil, 0, 3))
	zero := 0.0
	assert.Equal(t, 0.0, ResolveGSTRate(&zero, nil, 18, 3))
}

func items(subtotals ...int64) []entity.InvoiceItem {
	out := make([]entity.InvoiceItem, 0, len(subtotals))
	for _, s := range subtotals {
		out = append(out, entity.InvoiceItem{Subtotal: s})
	}
	return out
}

func TestComputeTotals(t *testing.T) {
	tot, err := ComputeTotals(items(3000), enum.DiscountTypeAmount, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), tot.TotalAmount)

	tot, err = ComputeTotals(items(2000, 1000), enum.DiscountTypeAmount, 5.5)
	require.NoError(t, err)
	assert.Equal(t, int64(550), tot.Discount)
	assert.Equal(t, int64(2450), tot.TotalAmount)
	assert.Equal(t, tot.Subtotal-tot.Discount, tot.TotalAmount)

	tot, err = ComputeTotals(items(3000), enum.DiscountTypePercentage, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(300), tot.Discount)
	assert.Equal(t, int64(2700), tot.TotalAmount)
}

func TestComputeTotals_RejectsBadDiscount(t *testing.T) {
	cases := []struct {
		dt enum.DiscountType
		v  float64
	}{
		{enum.DiscountTypeAmount, 31},
		{enum.DiscountTypeAmount, -1},
		{enum.DiscountTypePercentage, 101},
	}
	for _, c := range cases {
		_, err := ComputeTotals(items(3000), c.dt, c.v)
		require.Error(t, err)
		assert.Equal(t, 400, apperror.GetAppError(err).Code)
	}
}
