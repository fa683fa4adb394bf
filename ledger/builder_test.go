package ledger

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(y int, m time.Month, dd int) *time.Time {
	t := time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
	return &t
}

func assertDecimals(t *testing.T, expected []string, got []decimal.Decimal) {
	t.Helper()
	require.Len(t, got, len(expected))
	for i := range expected {
		assert.Truef(t, d(expected[i]).Equal(got[i]), "index %d: expected %s, got %s", i, expected[i], got[i])
	}
}

func signed(entries []Entry) []decimal.Decimal {
	out := make([]decimal.Decimal, len(entries))
	for i, e := range entries {
		out[i] = e.SignedAmount
	}
	return out
}

func balances(entries []Entry) []decimal.Decimal {
	out := make([]decimal.Decimal, len(entries))
	for i, e := range entries {
		out[i] = e.RunningBalance
	}
	return out
}

func mixedFixture() (orders, returns, payments []Record) {
	orders = []Record{{ID: "PO-1", Date: "2024-01-10", Status: "Received", Amount: d("1000")}}
	returns = []Record{{ID: "PR-1", Date: "2024-01-15", Status: "Approved", Amount: d("200")}}
	payments = []Record{{ID: "PAY-1", Date: "2024-01-20", Status: "Completed", Amount: d("300")}}
	return
}

func TestBuild_MixedRecords(t *testing.T) {
	orders, returns, payments := mixedFixture()

	entries := Build(orders, returns, payments, Filters{}, SupplierOptions())

	require.Len(t, entries, 3)
	assert.Equal(t, KindOrder, entries[0].Kind)
	assert.Equal(t, KindReturn, entries[1].Kind)
	assert.Equal(t, KindPayment, entries[2].Kind)
	assertDecimals(t, []string{"1000", "-200", "-300"}, signed(entries))
	assertDecimals(t, []string{"1000", "800", "500"}, balances(entries))
}

func TestBuild_SortsAcrossKinds(t *testing.T) {
	orders := []Record{{ID: "PO-1", Date: "2024-01-10", Status: "Received", Amount: d("1000")}}
	payments := []Record{
		{ID: "PAY-2", Date: "2024-01-20", Status: "Completed", Amount: d("300")},
		{ID: "PAY-1", Date: "2024-01-05", Status: "Completed", Amount: d("100")},
	}

	entries := Build(orders, nil, payments, Filters{}, SupplierOptions())

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	assert.Equal(t, []string{"PAY-1", "PO-1", "PAY-2"}, ids)
	assertDecimals(t, []string{"-100", "900", "600"}, balances(entries))
}

func TestBuild_DraftOrderExcluded(t *testing.T) {
	orders, returns, payments := mixedFixture()
	orders = append(orders, Record{ID: "PO-2", Date: "2024-01-12", Status: "Draft", Amount: d("5000")})

	entries := Build(orders, returns, payments, Filters{}, SupplierOptions())

	require.Len(t, entries, 3)
	for _, e := range entries {
		assert.NotEqual(t, "PO-2", e.ID)
	}
	assert.True(t, d("500").Equal(entries[len(entries)-1].RunningBalance))
}

func TestBuild_DraftExcludedForEveryKindAndPermutation(t *testing.T) {
	orders := []Record{
		{ID: "O1", Date: "2024-02-01", Status: "received", Amount: d("100")},
		{ID: "O2", Date: "2024-02-02", Status: " DRAFT ", Amount: d("999")},
	}
	returns := []Record{
		{ID: "R1", Date: "2024-02-03", Status: "draft", Amount: d("50")},
		{ID: "R2", Date: "2024-02-04", Status: "approved", Amount: d("10")},
	}
	payments := []Record{
		{ID: "P1", Date: "2024-02-05", Status: "Draft", Amount: d("25")},
		{ID: "P2", Date: "2024-02-06", Status: "paid", Amount: d("40")},
	}

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		o := append([]Record(nil), orders...)
		r := append([]Record(nil), returns...)
		p := append([]Record(nil), payments...)
		rng.Shuffle(len(o), func(a, b int) { o[a], o[b] = o[b], o[a] })
		rng.Shuffle(len(r), func(a, b int) { r[a], r[b] = r[b], r[a] })
		rng.Shuffle(len(p), func(a, b int) { p[a], p[b] = p[b], p[a] })

		entries := Build(o, r, p, Filters{}, SupplierOptions())

		ids := make([]string, len(entries))
		for j, e := range entries {
			ids[j] = e.ID
		}
		assert.Equal(t, []string{"O1", "R2", "P2"}, ids)
		assert.True(t, d("50").Equal(entries[len(entries)-1].RunningBalance))
	}
}

func TestBuild_UnfulfilledOrderHasZeroSignedAmount(t *testing.T) {
	orders := []Record{
		{ID: "PO-1", Date: "2024-03-01", Status: "Pending", Amount: d("700")},
		{ID: "PO-2", Date: "2024-03-02", Status: "Partially_Received", Amount: d("300")},
	}

	entries := Build(orders, nil, nil, Filters{}, SupplierOptions())

	require.Len(t, entries, 2)
	assert.True(t, entries[0].SignedAmount.IsZero())
	assert.True(t, d("700").Equal(entries[0].DisplayAmount))
	assertDecimals(t, []string{"0", "300"}, balances(entries))
}

func TestBuild_UnfulfilledOrdersCanBeDropped(t *testing.T) {
	orders := []Record{
		{ID: "SO-1", Date: "2024-03-01", Status: "confirmed", Amount: d("700")},
		{ID: "SO-2", Date: "2024-03-02", Status: "Invoiced", Amount: d("300")},
	}
	opts := ClientOptions()
	opts.IncludeUnfulfilled = false

	entries := Build(orders, nil, nil, Filters{}, opts)

	require.Len(t, entries, 1)
	assert.Equal(t, "SO-2", entries[0].ID)
}

func TestBuild_SignInvariants(t *testing.T) {
	orders := []Record{
		{ID: "O1", Date: "2024-01-01", Status: "received", Amount: d("-120")},
		{ID: "O2", Date: "2024-01-02", Status: "ordered", Amount: d("80")},
	}
	returns := []Record{{ID: "R1", Date: "2024-01-03", Status: "approved", Amount: d("-30")}}
	payments := []Record{{ID: "P1", Date: "2024-01-04", Status: "paid", Amount: d("45.5")}}

	entries := Build(orders, returns, payments, Filters{}, SupplierOptions())

	for _, e := range entries {
		switch e.Kind {
		case KindOrder:
			assert.False(t, e.SignedAmount.IsNegative(), e.ID)
		case KindReturn, KindPayment:
			assert.False(t, e.SignedAmount.IsPositive(), e.ID)
		}
		assert.False(t, e.DisplayAmount.IsNegative(), e.ID)
	}
}

func TestBuild_BalanceEqualsSumOfSignedAmounts(t *testing.T) {
	orders := []Record{
		{ID: "O1", Date: "05/02/2024", Status: "received", Amount: d("150.25")},
		{ID: "O2", Date: "2024/02/01", Status: "received", Amount: d("49.75")},
		{ID: "O3", Date: "not a date", Status: "received", Amount: d("10")},
	}
	returns := []Record{{ID: "R1", Date: "2024-02-03", Status: "approved", Amount: d("20")}}
	payments := []Record{{ID: "P1", Date: "2024-02-10T09:30:00Z", Status: "paid", Amount: d("100")}}

	entries := Build(orders, returns, payments, Filters{}, SupplierOptions())

	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.SignedAmount)
	}
	require.NotEmpty(t, entries)
	assert.True(t, sum.Equal(entries[len(entries)-1].RunningBalance))
	assert.True(t, d("90").Equal(sum))
}

func TestBuild_NullDatesSortLastInInputOrder(t *testing.T) {
	orders := []Record{
		{ID: "A", Date: "garbage", Status: "received", Amount: d("1")},
		{ID: "B", Date: "2024-05-02", Status: "received", Amount: d("2")},
		{ID: "C", Date: "", Status: "received", Amount: d("3")},
		{ID: "D", Date: "2024-05-01", Status: "received", Amount: d("4")},
	}

	entries := Build(orders, nil, nil, Filters{}, SupplierOptions())

	ids := []string{}
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"D", "B", "A", "C"}, ids)
	assertDecimals(t, []string{"4", "6", "7", "10"}, balances(entries))
}

func TestBuild_EqualDatesKeepInputOrder(t *testing.T) {
	orders := []Record{{ID: "O1", Date: "2024-01-10", Status: "received", Amount: d("10")}}
	payments := []Record{
		{ID: "P1", Date: "2024-01-10", Status: "paid", Amount: d("1")},
		{ID: "P2", Date: "2024-01-10", Status: "paid", Amount: d("2")},
	}

	entries := Build(orders, nil, payments, Filters{}, SupplierOptions())

	require.Len(t, entries, 3)
	assert.Equal(t, "O1", entries[0].ID)
	assert.Equal(t, "P1", entries[1].ID)
	assert.Equal(t, "P2", entries[2].ID)
}

func TestBuild_TimeTakesPrecedenceOverDate(t *testing.T) {
	ts := time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC)
	orders := []Record{
		{ID: "late", Date: "2024-01-02", Status: "received", Amount: d("1")},
		{ID: "early", Date: "2099-01-01", Time: &ts, Status: "received", Amount: d("1")},
	}

	entries := Build(orders, nil, nil, Filters{}, SupplierOptions())

	assert.Equal(t, "early", entries[0].ID)
	require.NotNil(t, entries[0].Date)
	assert.True(t, ts.Equal(*entries[0].Date))
}

func TestBuild_DoesNotMutateInputs(t *testing.T) {
	orders, returns, payments := mixedFixture()
	// Reverse-chronological input must stay untouched after sorting.
	orders = append([]Record{{ID: "PO-0", Date: "2024-02-01", Status: "received", Amount: d("5")}}, orders...)
	before := append([]Record(nil), orders...)

	_ = Build(orders, returns, payments, Filters{SearchText: "po"}, SupplierOptions())

	assert.Equal(t, before, orders)
}

func TestBuild_Idempotent(t *testing.T) {
	orders, returns, payments := mixedFixture()
	filters := Filters{DateFrom: day(2024, 1, 1), SearchText: "p"}

	first := Build(orders, returns, payments, filters, SupplierOptions())
	second := Build(orders, returns, payments, filters, SupplierOptions())

	assert.Equal(t, first, second)
}

func TestBuild_EmptyInput(t *testing.T) {
	entries := Build(nil, nil, nil, Filters{}, SupplierOptions())

	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}
