package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestReverseTax(t *testing.T) {
	tests := []struct {
		name      string
		total     string
		discount  string
		rate      string
		baseIncl  string
		listPrice string
		taxBase   string
		tax       string
		lineTotal string
	}{
		{"no discount round trips", "1160.00", "0", "0.16", "1000", "1000", "1000", "160", "1160"},
		{"discount netted out", "580.00", "100.00", "0.16", "500", "600", "500", "80", "580"},
		{"zero rate", "350.00", "0", "0", "350", "350", "350", "0", "350"},
		{"rounded base feeds tax", "100.00", "0", "0.16", "86.21", "86.21", "86.21", "13.79", "100"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ReverseTax(d(tc.total), d(tc.discount), d(tc.rate))
			require.NoError(t, err)

			assert.True(t, d(tc.baseIncl).Equal(got.BaseIncludingDiscount), "base incl discount: %s", got.BaseIncludingDiscount)
			assert.True(t, d(tc.listPrice).Equal(got.ListPrice), "list price: %s", got.ListPrice)
			assert.True(t, d(tc.taxBase).Equal(got.TaxBase), "tax base: %s", got.TaxBase)
			assert.True(t, d(tc.tax).Equal(got.TaxAmount), "tax: %s", got.TaxAmount)
			assert.True(t, d(tc.lineTotal).Equal(got.Total), "total: %s", got.Total)
			assert.True(t, got.TaxBase.Equal(got.BaseIncludingDiscount))
		})
	}
}

func TestReverseTax_RejectsBadInput(t *testing.T) {
	_, err := ReverseTax(d("-1"), decimal.Zero, d("0.16"))
	assert.ErrorIs(t, err, ErrNegativeAmount)

	_, err = ReverseTax(d("100"), decimal.Zero, d("1.5"))
	assert.ErrorIs(t, err, ErrInvalidRate)
}

func TestPercentOf(t *testing.T) {
	assert.True(t, d("100").Equal(PercentOf(d("1000.00"), d("10"))))
	assert.True(t, d("33.33").Equal(PercentOf(d("333.33"), d("10"))))
}

func TestDeposit(t *testing.T) {
	assert.True(t, d("450").Equal(Deposit(d("900.00"), d("0.50"))))
	assert.True(t, decimal.Zero.Equal(Deposit(d("900.00"), decimal.Zero)))
	assert.True(t, d("900").Equal(Deposit(d("900.00"), d("2"))))
	assert.True(t, d("0.01").Equal(Deposit(d("0.01"), d("0.5"))))
}
