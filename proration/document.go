package proration

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownLine   = errors.New("return line does not exist on the order")
	ErrDuplicateLine = errors.New("return line listed more than once")
)

// Order is the document a return is raised against.
type Order struct {
	ID             string          `json:"id"`
	HeaderDiscount decimal.Decimal `json:"header_discount"`
	Lines          []OrderLineItem `json:"lines"`
}

// ReturnItem requests Quantity units of an order line back. AlreadyReturned
// is what earlier returns took from the same line. A non-zero ReturnTax
// overrides the order line's explicit return tax.
type ReturnItem struct {
	LineID          string          `json:"line_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	AlreadyReturned decimal.Decimal `json:"already_returned"`
	ReturnTax       decimal.Decimal `json:"return_tax"`
}

// Valuation is the priced return document.
type Valuation struct {
	OrderID                string          `json:"order_id"`
	Lines                  []ReturnLine    `json:"lines"`
	OrderedQuantity        decimal.Decimal `json:"ordered_quantity"`
	ReturnedQuantity       decimal.Decimal `json:"returned_quantity"`
	HeaderDiscountProrated decimal.Decimal `json:"header_discount"`
	Totals                 Totals          `json:"totals"`
}

// ValuateReturn prices items against order. Each item is capped at what is
// still returnable on its line, then prorated. The header discount is
// prorated once for the document by the returned share of the whole order's
// quantity; only lines with a positive ordered quantity count on either side
// of that share. Item order is preserved in the result.
func ValuateReturn(order Order, items []ReturnItem) (Valuation, error) {
	byID := make(map[string]OrderLineItem, len(order.Lines))
	orderedTotal := decimal.Zero
	for _, l := range order.Lines {
		byID[l.LineID] = l
		if l.OrderedQuantity.IsPositive() {
			orderedTotal = orderedTotal.Add(l.OrderedQuantity)
		}
	}

	seen := make(map[string]struct{}, len(items))
	lines := make([]ReturnLine, 0, len(items))
	returnedTotal := decimal.Zero

	for _, item := range items {
		line, ok := byID[item.LineID]
		if !ok {
			return Valuation{}, fmt.Errorf("order %s line %q: %w", order.ID, item.LineID, ErrUnknownLine)
		}
		if _, dup := seen[item.LineID]; dup {
			return Valuation{}, fmt.Errorf("order %s line %q: %w", order.ID, item.LineID, ErrDuplicateLine)
		}
		seen[item.LineID] = struct{}{}

		if !item.ReturnTax.IsZero() {
			line.ReturnTax = item.ReturnTax
		}

		qty := item.Quantity
		if line.OrderedQuantity.IsPositive() {
			qty = decimal.Min(qty, Returnable(line.OrderedQuantity, item.AlreadyReturned))
		}

		rl := ProrateLine(line, qty)
		lines = append(lines, rl)
		// Lines without an ordered quantity stay out of the header share.
		if line.OrderedQuantity.IsPositive() {
			returnedTotal = returnedTotal.Add(rl.ReturnedQuantity)
		}
	}

	header := ProrateHeaderDiscount(order.HeaderDiscount, orderedTotal, returnedTotal)

	return Valuation{
		OrderID:                order.ID,
		Lines:                  lines,
		OrderedQuantity:        orderedTotal,
		ReturnedQuantity:       returnedTotal,
		HeaderDiscountProrated: header,
		Totals:                 ComputeReturnTotals(lines, header),
	}, nil
}
