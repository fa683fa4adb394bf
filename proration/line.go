// Package proration values partial returns: the discount and tax that belong
// to the returned quantity of an order line, and the share of an order-level
// discount that belongs to a whole return document.
package proration

import "github.com/shopspring/decimal"

// ProrateLine values returnedQuantity units of line. The quantity is clamped
// to [0, OrderedQuantity]; when the ordered quantity is unknown (zero or
// negative) only the lower bound applies and no discount or derived tax is
// attributed.
func ProrateLine(line OrderLineItem, returnedQuantity decimal.Decimal) ReturnLine {
	returned := clampReturned(returnedQuantity, line.OrderedQuantity)

	discount := decimal.Zero
	if line.OrderedQuantity.IsPositive() {
		// Multiplying before dividing keeps a full return exact.
		discount = line.TotalDiscount.Mul(returned).Div(line.OrderedQuantity)
	}

	basis, tax := ResolveTax(line, returned, discount)

	net := line.UnitPrice.Mul(returned).Sub(discount)

	return ReturnLine{
		LineID:                 line.LineID,
		ReturnedQuantity:       returned,
		UnitPrice:              line.UnitPrice,
		DiscountForReturnedQty: discount,
		TaxForReturnedQty:      tax,
		NetLineTotal:           net,
		GrossLineTotal:         net.Add(tax),
		TaxBasis:               basis,
	}
}

// DiscountPerUnit is the line discount carried by a single ordered unit.
func DiscountPerUnit(line OrderLineItem) decimal.Decimal {
	if !line.OrderedQuantity.IsPositive() {
		return decimal.Zero
	}
	return line.TotalDiscount.Div(line.OrderedQuantity)
}

// Returnable is what is left to return once earlier returns are accounted
// for. Concurrent returns against the same order can push alreadyReturned
// past ordered; the result never goes below zero.
func Returnable(ordered, alreadyReturned decimal.Decimal) decimal.Decimal {
	if alreadyReturned.IsNegative() {
		alreadyReturned = decimal.Zero
	}
	left := ordered.Sub(alreadyReturned)
	if left.IsNegative() {
		return decimal.Zero
	}
	return left
}

func clampReturned(returned, ordered decimal.Decimal) decimal.Decimal {
	if returned.IsNegative() {
		return decimal.Zero
	}
	if ordered.IsPositive() && returned.GreaterThan(ordered) {
		return ordered
	}
	return returned
}
