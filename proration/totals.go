package proration

import "github.com/shopspring/decimal"

// ProrateHeaderDiscount returns the share of an order-level discount that
// belongs to returnedQtyTotal of orderedQtyTotal units.
func ProrateHeaderDiscount(headerDiscount, orderedQtyTotal, returnedQtyTotal decimal.Decimal) decimal.Decimal {
	if !orderedQtyTotal.IsPositive() {
		return decimal.Zero
	}
	return headerDiscount.Mul(returnedQtyTotal).Div(orderedQtyTotal)
}

// ComputeReturnTotals builds the document footer. Line discounts are already
// netted into NetLineTotal, so only the header share is subtracted here.
func ComputeReturnTotals(lines []ReturnLine, headerDiscountProrated decimal.Decimal) Totals {
	subtotal, lineDiscount, tax := decimal.Zero, decimal.Zero, decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.NetLineTotal)
		lineDiscount = lineDiscount.Add(l.DiscountForReturnedQty)
		tax = tax.Add(l.TaxForReturnedQty)
	}

	return Totals{
		Subtotal: subtotal,
		Discount: lineDiscount.Add(headerDiscountProrated),
		Tax:      tax,
		Total:    subtotal.Add(tax).Sub(headerDiscountProrated),
	}
}

// Round is the two-place, half-away-from-zero rounding used for display.
// The calculator itself never rounds intermediate values.
func Round(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}

// Round returns a copy of t rounded for display.
func (t Totals) Round() Totals {
	return Totals{
		Subtotal: Round(t.Subtotal),
		Discount: Round(t.Discount),
		Tax:      Round(t.Tax),
		Total:    Round(t.Total),
	}
}
