package proration

import "github.com/shopspring/decimal"

// TaxBasis records which source the returned tax was derived from.
type TaxBasis string

const (
	// TaxExplicit uses the return-level tax amount stored on the line.
	TaxExplicit TaxBasis = "explicit"
	// TaxProrated takes the returned share of the order line's total tax.
	TaxProrated TaxBasis = "prorated"
	// TaxRate applies the line's rate to the discounted returned value.
	TaxRate TaxBasis = "rate"
	// TaxNone means the line carries no tax information.
	TaxNone TaxBasis = "none"
)

var hundred = decimal.NewFromInt(100)

// ResolveTax picks the first applicable tax source, in order: an explicit
// return tax, the prorated order tax, the tax rate, nothing. returned must
// already be clamped and discount must be the discount for that quantity.
func ResolveTax(line OrderLineItem, returned, discount decimal.Decimal) (TaxBasis, decimal.Decimal) {
	if !line.ReturnTax.IsZero() {
		return TaxExplicit, line.ReturnTax
	}

	// Without an ordered quantity there is nothing to prorate against.
	if !line.OrderedQuantity.IsPositive() {
		return TaxNone, decimal.Zero
	}

	if !line.TotalTax.IsZero() {
		return TaxProrated, line.TotalTax.Mul(returned).Div(line.OrderedQuantity)
	}

	if line.HasTax || line.TaxRate.IsPositive() {
		taxable := line.UnitPrice.Mul(returned).Sub(discount)
		return TaxRate, taxable.Mul(line.TaxRate).Div(hundred)
	}

	return TaxNone, decimal.Zero
}
