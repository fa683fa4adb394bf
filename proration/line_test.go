package proration

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, expected string, got decimal.Decimal, field string) {
	t.Helper()
	assert.Truef(t, d(expected).Equal(got), "%s: expected %s, got %s", field, expected, got)
}

func partialReturnLine() OrderLineItem {
	return OrderLineItem{
		LineID:          "L1",
		OrderedQuantity: d("10"),
		UnitPrice:       d("100"),
		TotalDiscount:   d("50"),
		TotalTax:        d("95"),
		HasTax:          true,
		TaxRate:         d("10"),
	}
}

func TestProrateLine_PartialReturn(t *testing.T) {
	rl := ProrateLine(partialReturnLine(), d("4"))

	assertDecimal(t, "4", rl.ReturnedQuantity, "returned")
	assertDecimal(t, "20", rl.DiscountForReturnedQty, "discount")
	assertDecimal(t, "380", rl.NetLineTotal, "net")
	assertDecimal(t, "38", rl.TaxForReturnedQty, "tax")
	assertDecimal(t, "418", rl.GrossLineTotal, "gross")
	assert.Equal(t, TaxProrated, rl.TaxBasis)
	assert.Equal(t, "L1", rl.LineID)
}

func TestProrateLine_ZeroOrderedQuantity(t *testing.T) {
	line := partialReturnLine()
	line.OrderedQuantity = decimal.Zero

	var rl ReturnLine
	require.NotPanics(t, func() { rl = ProrateLine(line, d("3")) })

	assert.True(t, rl.DiscountForReturnedQty.IsZero())
	assert.True(t, rl.TaxForReturnedQty.IsZero())
	assert.Equal(t, TaxNone, rl.TaxBasis)
	// Without an ordered quantity there is no upper bound to clamp to.
	assertDecimal(t, "300", rl.NetLineTotal, "net")
}

func TestProrateLine_NegativeOrderedQuantity(t *testing.T) {
	line := partialReturnLine()
	line.OrderedQuantity = d("-5")

	rl := ProrateLine(line, d("2"))

	assert.True(t, rl.DiscountForReturnedQty.IsZero())
	assert.True(t, rl.TaxForReturnedQty.IsZero())
	assertDecimal(t, "200", rl.GrossLineTotal, "gross")
}

func TestProrateLine_ClampsReturnedQuantity(t *testing.T) {
	tests := []struct {
		name     string
		returned string
		expected string
	}{
		{"over return", "15", "10"},
		{"negative", "-2", "0"},
		{"exact", "10", "10"},
		{"fractional", "2.5", "2.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := ProrateLine(partialReturnLine(), d(tt.returned))
			assertDecimal(t, tt.expected, rl.ReturnedQuantity, "returned")
		})
	}
}

func TestProrateLine_OverReturnEqualsFullReturn(t *testing.T) {
	full := ProrateLine(partialReturnLine(), d("10"))
	over := ProrateLine(partialReturnLine(), d("12"))

	assertDecimal(t, "50", full.DiscountForReturnedQty, "discount")
	assertDecimal(t, "95", full.TaxForReturnedQty, "tax")
	assert.True(t, full.GrossLineTotal.Equal(over.GrossLineTotal))
}

func TestProrateLine_DiscountConservation(t *testing.T) {
	lines := []OrderLineItem{
		{LineID: "A", OrderedQuantity: d("3"), UnitPrice: d("19.99"), TotalDiscount: d("10")},
		{LineID: "B", OrderedQuantity: d("7"), UnitPrice: d("4.10"), TotalDiscount: d("0.35")},
		{LineID: "C", OrderedQuantity: d("0.75"), UnitPrice: d("80"), TotalDiscount: d("3.33")},
		{LineID: "D", OrderedQuantity: d("11"), UnitPrice: d("1"), TotalDiscount: decimal.Zero},
	}

	ordered := decimal.Zero
	returned := decimal.Zero
	for _, l := range lines {
		ordered = ordered.Add(l.TotalDiscount)
		returned = returned.Add(ProrateLine(l, l.OrderedQuantity).DiscountForReturnedQty)
	}

	assert.True(t, ordered.Equal(returned), "expected %s, got %s", ordered, returned)
}

func TestProrateLine_PartialReturnsAddUp(t *testing.T) {
	line := OrderLineItem{OrderedQuantity: d("3"), UnitPrice: d("10"), TotalDiscount: d("1"), TotalTax: d("2")}

	sum := decimal.Zero
	for i := 0; i < 3; i++ {
		sum = sum.Add(ProrateLine(line, d("1")).DiscountForReturnedQty)
	}

	// Thirds do not terminate; the split may lose at most the last digit.
	assert.True(t, sum.Sub(d("1")).Abs().LessThan(d("0.000001")), sum.String())
}

func TestDiscountPerUnit(t *testing.T) {
	assertDecimal(t, "5", DiscountPerUnit(partialReturnLine()), "per unit")
	assert.True(t, DiscountPerUnit(OrderLineItem{TotalDiscount: d("5")}).IsZero())
}

func TestReturnable(t *testing.T) {
	tests := []struct {
		ordered, already, expected string
	}{
		{"10", "0", "10"},
		{"10", "4", "6"},
		{"10", "10", "0"},
		{"10", "13", "0"},
		{"10", "-1", "10"},
	}

	for _, tt := range tests {
		assertDecimal(t, tt.expected, Returnable(d(tt.ordered), d(tt.already)), tt.ordered+"-"+tt.already)
	}
}
