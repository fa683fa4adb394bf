package source

import (
	"strings"

	"github.com/aqlanhadi/tally/ledger"
)

// Aliases lists, per normalized field, the upstream keys that may hold it.
// The first key present with a non-null value wins.
type Aliases map[string][]string

// Normalized field names.
const (
	FieldID     = "id"
	FieldDate   = "date"
	FieldStatus = "status"
	FieldAmount = "amount"
	FieldLines  = "lines"
	FieldOrder  = "order"

	FieldLineID          = "line_id"
	FieldOrderedQuantity = "ordered_quantity"
	FieldUnitPrice       = "unit_price"
	FieldTotalDiscount   = "total_discount"
	FieldTotalTax        = "total_tax"
	FieldHasTax          = "has_tax"
	FieldTaxRate         = "tax_rate"
	FieldReturnTax       = "return_tax"
	FieldReturnQuantity  = "returned_quantity"
	FieldAlreadyReturned = "already_returned"
	FieldHeaderDiscount  = "header_discount"
)

// lineKind keys the aliases of order and return line fields.
const lineKind ledger.Kind = "line"

// DefaultAliases covers the field names seen across the purchase, sales,
// return and payment endpoints of the backend.
func DefaultAliases() map[ledger.Kind]Aliases {
	return map[ledger.Kind]Aliases{
		ledger.KindOrder: {
			FieldID:             {"id", "purchase_order_id", "sales_order_id", "order_id", "order_number", "reference_number"},
			FieldDate:           {"date", "order_date", "purchase_order_date", "sales_order_date", "invoice_date", "created_at"},
			FieldStatus:         {"status", "order_status", "purchase_order_status", "sales_order_status"},
			FieldAmount:         {"amount", "total_amount", "purchase_orders_total_amount", "sales_orders_total_amount", "grand_total", "total"},
			FieldHeaderDiscount: {"header_discount", "order_discount", "discount_amount", "discount"},
			FieldLines:          {"lines", "items", "order_items", "details"},
		},
		ledger.KindReturn: {
			FieldID:     {"id", "purchase_return_id", "sales_return_id", "return_id", "return_number", "reference_number"},
			FieldDate:   {"date", "return_date", "purchase_return_date", "sales_return_date", "created_at"},
			FieldStatus: {"status", "return_status"},
			FieldAmount: {"amount", "total_amount", "purchase_returns_total", "sales_returns_total", "return_total", "total"},
			FieldLines:  {"lines", "items", "return_items", "details"},
			FieldOrder:  {"order", "purchase_order", "sales_order"},
		},
		ledger.KindPayment: {
			FieldID:     {"id", "payment_id", "supplier_payment_id", "payment_number", "reference_number"},
			FieldDate:   {"date", "payment_date", "paid_at", "created_at"},
			FieldStatus: {"status", "payment_status"},
			FieldAmount: {"amount", "payment_amount", "amount_paid", "total_amount", "total"},
		},
		lineKind: {
			FieldLineID:          {"line_id", "item_id", "order_item_id", "product_id", "id"},
			FieldOrderedQuantity: {"ordered_quantity", "quantity_ordered", "order_quantity", "quantity"},
			FieldUnitPrice:       {"unit_price", "price", "rate"},
			FieldTotalDiscount:   {"total_discount", "discount_amount", "discount"},
			FieldTotalTax:        {"total_tax", "tax_amount", "tax"},
			FieldHasTax:          {"has_tax", "is_taxable", "taxable"},
			FieldTaxRate:         {"tax_rate", "tax_percentage", "tax_percent"},
			FieldReturnTax:       {"return_tax", "return_tax_amount"},
			FieldReturnQuantity:  {"returned_quantity", "return_quantity", "quantity"},
			FieldAlreadyReturned: {"already_returned", "previously_returned", "returned_before"},
		},
	}
}

// MergeAliases puts the configured aliases in front of the defaults so that
// deployment-specific names are tried first. Keys of extra are
// "<kind>.<field>", e.g. "order.amount"; kind "line" addresses line fields.
func MergeAliases(base map[ledger.Kind]Aliases, extra map[string][]string) map[ledger.Kind]Aliases {
	merged := make(map[ledger.Kind]Aliases, len(base))
	for kind, fields := range base {
		copied := make(Aliases, len(fields))
		for field, keys := range fields {
			copied[field] = append([]string(nil), keys...)
		}
		merged[kind] = copied
	}

	for key, keys := range extra {
		kindName, field, found := strings.Cut(strings.ToLower(key), ".")
		if !found || field == "" {
			continue
		}
		kind := ledger.Kind(kindName)
		if merged[kind] == nil {
			merged[kind] = Aliases{}
		}
		merged[kind][field] = append(append([]string(nil), keys...), merged[kind][field]...)
	}
	return merged
}

// lookup returns the first aliased value present in raw. Keys are matched
// exactly first, then case-insensitively.
func (a Aliases) lookup(raw map[string]any, field string) (any, bool) {
	keys := a[field]
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return v, true
		}
	}
	for _, k := range keys {
		for rk, v := range raw {
			if v != nil && strings.EqualFold(rk, k) {
				return v, true
			}
		}
	}
	return nil, false
}
