package proration

import "github.com/shopspring/decimal"

// OrderLineItem is one line of the original order a return is raised against.
// TotalDiscount and TotalTax cover the full ordered quantity. ReturnTax is an
// explicit return-level tax amount some upstream records already carry.
type OrderLineItem struct {
	LineID          string          `json:"line_id"`
	OrderedQuantity decimal.Decimal `json:"ordered_quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	TotalDiscount   decimal.Decimal `json:"total_discount"`
	TotalTax        decimal.Decimal `json:"total_tax"`
	HasTax          bool            `json:"has_tax"`
	TaxRate         decimal.Decimal `json:"tax_rate"`
	ReturnTax       decimal.Decimal `json:"return_tax"`
}

// ReturnLine is the valuation of the returned part of an order line.
type ReturnLine struct {
	LineID                 string          `json:"line_id"`
	ReturnedQuantity       decimal.Decimal `json:"returned_quantity"`
	UnitPrice              decimal.Decimal `json:"unit_price"`
	DiscountForReturnedQty decimal.Decimal `json:"discount"`
	TaxForReturnedQty      decimal.Decimal `json:"tax"`
	NetLineTotal           decimal.Decimal `json:"net_total"`
	GrossLineTotal         decimal.Decimal `json:"gross_total"`
	TaxBasis               TaxBasis        `json:"tax_basis"`
}

// Totals is the footer of a return document.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}
