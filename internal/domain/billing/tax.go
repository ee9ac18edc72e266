// Package billing holds the monetary rules shared by quotes, receivables and
// invoices. Every amount is a decimal rounded to two places at each declared
// field, the precision the tax authority validates against.
package billing

import (
	"errors"

	"github.com/shopspring/decimal"
)

const MoneyPlaces = 2

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)

	ErrNegativeAmount = errors.New("amount must not be negative")
	ErrInvalidRate    = errors.New("tax rate must be between 0 and 1")
)

// Round rounds a money amount half away from zero to two places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// TaxBreakdown is the per-field result of splitting a tax-inclusive amount.
type TaxBreakdown struct {
	BaseIncludingDiscount decimal.Decimal `json:"base_including_discount"`
	ListPrice             decimal.Decimal `json:"list_price"`
	Discount              decimal.Decimal `json:"discount"`
	TaxBase               decimal.Decimal `json:"tax_base"`
	TaxAmount             decimal.Decimal `json:"tax_amount"`
	Total                 decimal.Decimal `json:"total"`
	Rate                  decimal.Decimal `json:"rate"`
}

// ReverseTax derives the declared invoice fields from an amount that already
// includes tax and has the discount netted out. The order of rounding matters:
// the tax is computed from the rounded base, never from the raw quotient.
func ReverseTax(totalPaid, discount, rate decimal.Decimal) (TaxBreakdown, error) {
	if totalPaid.IsNegative() || discount.IsNegative() {
		return TaxBreakdown{}, ErrNegativeAmount
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(one) {
		return TaxBreakdown{}, ErrInvalidRate
	}

	baseInclDiscount := Round(totalPaid.Div(one.Add(rate)))
	discount = Round(discount)
	listPrice := Round(baseInclDiscount.Add(discount))
	taxBase := Round(listPrice.Sub(discount))
	taxAmount := Round(taxBase.Mul(rate))

	return TaxBreakdown{
		BaseIncludingDiscount: baseInclDiscount,
		ListPrice:             listPrice,
		Discount:              discount,
		TaxBase:               taxBase,
		TaxAmount:             taxAmount,
		Total:                 Round(taxBase.Add(taxAmount)),
		Rate:                  rate,
	}, nil
}

// PercentOf returns amount × percent / 100 rounded to money precision.
func PercentOf(amount, percent decimal.Decimal) decimal.Decimal {
	return Round(amount.Mul(percent).Div(hundred))
}

// Deposit returns the up-front fraction of a total collected at conversion.
func Deposit(total, fraction decimal.Decimal) decimal.Decimal {
	if fraction.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	if fraction.GreaterThan(one) {
		fraction = one
	}
	return Round(total.Mul(fraction))
}
