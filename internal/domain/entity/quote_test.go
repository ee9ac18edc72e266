package entity

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newItem(t *testing.T, qty int, price string) *QuoteItem {
	t.Helper()
	item, err := NewQuoteItem(nil, "Trámite", qty, dec(price))
	require.NoError(t, err)
	return item
}

func TestQuote_DiscountPercent(t *testing.T) {
	q := &Quote{ID: uuid.New()}
	require.NoError(t, q.AddItem(newItem(t, 1, "1000.00")))
	require.NoError(t, q.SetDiscountPercent(dec("10")))

	assert.True(t, dec("1000").Equal(q.Subtotal))
	assert.True(t, dec("100").Equal(q.DiscountAmount))
	assert.True(t, dec("900").Equal(q.Total))
}

func TestQuote_RejectsInvalidLines(t *testing.T) {
	_, err := NewQuoteItem(nil, "x", 0, dec("10"))
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = NewQuoteItem(nil, "x", 1, dec("-0.01"))
	assert.ErrorIs(t, err, ErrInvalidUnitPrice)

	q := &Quote{ID: uuid.New()}
	err = q.AddItem(&QuoteItem{Quantity: -2, UnitPrice: dec("5")})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Empty(t, q.Items)
	assert.True(t, q.Total.IsZero())
}

func TestQuote_RejectsDiscountOutOfRange(t *testing.T) {
	q := &Quote{ID: uuid.New()}
	assert.ErrorIs(t, q.SetDiscountPercent(dec("100.01")), ErrInvalidDiscountPercent)
	assert.ErrorIs(t, q.SetDiscountPercent(dec("-1")), ErrInvalidDiscountPercent)
}

func TestQuote_FullDiscountNeverNegative(t *testing.T) {
	q := &Quote{ID: uuid.New()}
	require.NoError(t, q.AddItem(newItem(t, 3, "33.33")))
	require.NoError(t, q.SetDiscountPercent(dec("100")))

	assert.True(t, q.Total.IsZero())
	assert.False(t, q.Total.IsNegative())
}

// Totals after any add/update/remove sequence equal a from-scratch computation.
func TestQuote_RecomputeMatchesScratch(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	q := &Quote{ID: uuid.New(), DiscountPercent: dec("12.5")}

	for step := 0; step < 200; step++ {
		switch op := rng.Intn(3); {
		case op == 0 || len(q.Items) == 0:
			price := decimal.New(rng.Int63n(100000), -2)
			require.NoError(t, q.AddItem(newItem(t, 1+rng.Intn(5), price.String())))
		case op == 1:
			target := q.Items[rng.Intn(len(q.Items))].ID
			_, err := q.UpdateItem(target, "", 1+rng.Intn(9), decimal.New(rng.Int63n(50000), -2))
			require.NoError(t, err)
		default:
			require.NoError(t, q.RemoveItem(q.Items[rng.Intn(len(q.Items))].ID))
		}

		subtotal := decimal.Zero
		for _, it := range q.Items {
			subtotal = subtotal.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
		discount := subtotal.Mul(dec("12.5")).Div(decimal.NewFromInt(100)).Round(2)
		want := decimal.Max(decimal.Zero, subtotal.Sub(discount))

		require.True(t, subtotal.Equal(q.Subtotal), "step %d subtotal", step)
		require.True(t, want.Equal(q.Total), "step %d total %s != %s", step, q.Total, want)
		require.True(t, q.Total.Equal(q.Subtotal.Sub(q.DiscountAmount)))
	}
}

func TestQuote_ConvertedIsFrozen(t *testing.T) {
	q := &Quote{ID: uuid.New(), Status: enum.QuoteStatusConverted}
	assert.ErrorIs(t, q.AddItem(newItem(t, 1, "1")), ErrQuoteConverted)
	assert.ErrorIs(t, q.RemoveItem(uuid.New()), ErrQuoteConverted)
	assert.False(t, q.CanTransitionTo(enum.QuoteStatusDraft))
}

func TestQuote_StatusTransitions(t *testing.T) {
	q := &Quote{Status: enum.QuoteStatusDraft}
	assert.True(t, q.CanTransitionTo(enum.QuoteStatusSent))
	assert.False(t, q.CanTransitionTo(enum.QuoteStatusConverted))

	q.Status = enum.QuoteStatusRejected
	assert.False(t, q.CanTransitionTo(enum.QuoteStatusApproved))
	assert.True(t, q.CanTransitionTo(enum.QuoteStatusDraft))
}

func TestReceivable_StateMachine(t *testing.T) {
	r := NewReceivable(uuid.New(), uuid.New(), nil, "Honorarios", dec("900.00"), time.Now())
	assert.Equal(t, enum.ReceivableStatusPending, r.Status)
	assert.True(t, dec("900").Equal(r.Balance))

	r.Recalculate(dec("450"))
	assert.Equal(t, enum.ReceivableStatusPartial, r.Status)
	assert.True(t, dec("450").Equal(r.Balance))

	r.Recalculate(dec("1000"))
	assert.Equal(t, enum.ReceivableStatusPaid, r.Status)
	assert.True(t, r.Balance.IsZero())
}

func TestPayment_Validate(t *testing.T) {
	assert.ErrorIs(t, (&Payment{Amount: decimal.Zero, Method: enum.PaymentMethodCash}).Validate(), ErrInvalidPaymentAmount)
	assert.ErrorIs(t, (&Payment{Amount: dec("1"), Method: "bitcoin"}).Validate(), ErrInvalidPaymentMethod)
	assert.NoError(t, (&Payment{Amount: dec("1"), Method: enum.PaymentMethodTransfer}).Validate())
}

func TestJournalEntry_Validate(t *testing.T) {
	entry := &JournalEntry{Lines: []JournalLine{
		{Debit: dec("100"), Credit: decimal.Zero},
		{Debit: decimal.Zero, Credit: dec("100")},
	}}
	assert.NoError(t, entry.Validate())

	entry.Lines[1].Credit = dec("99.99")
	assert.ErrorIs(t, entry.Validate(), ErrUnbalancedEntry)
	assert.ErrorIs(t, (&JournalEntry{}).Validate(), ErrEmptyEntry)
}

func TestClient_FiscalData(t *testing.T) {
	c := &Client{RFC: "XAXX010101000", FiscalName: "ACME"}
	assert.False(t, c.HasFiscalData())
	assert.Equal(t, []string{"fiscal_regime", "tax_zip_code"}, c.MissingFiscalFields())

	c.FiscalRegime, c.TaxZipCode = "601", "54948"
	assert.True(t, c.HasFiscalData())
}
