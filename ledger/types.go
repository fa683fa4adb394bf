package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies which source collection a ledger entry came from.
type Kind string

const (
	KindOrder   Kind = "order"
	KindReturn  Kind = "return"
	KindPayment Kind = "payment"
)

// Record is a normalized order, return or payment for one counterparty.
// Time takes precedence over Date when both are set.
type Record struct {
	ID     string          `json:"id"`
	Date   string          `json:"date,omitempty"`
	Time   *time.Time      `json:"time,omitempty"`
	Status string          `json:"status"`
	Amount decimal.Decimal `json:"amount"`
}

// Entry is one signed line of a counterparty ledger.
type Entry struct {
	ID             string          `json:"id"`
	Kind           Kind            `json:"kind"`
	Date           *time.Time      `json:"date"`
	Status         string          `json:"status"`
	DisplayAmount  decimal.Decimal `json:"display_amount"`
	SignedAmount   decimal.Decimal `json:"signed_amount"`
	RunningBalance decimal.Decimal `json:"running_balance"`
}

// Debit is the amount shown in the debit column (fulfilled orders).
func (e Entry) Debit() decimal.Decimal {
	if e.SignedAmount.IsPositive() {
		return e.SignedAmount
	}
	return decimal.Zero
}

// Credit is the amount shown in the credit column (returns and payments).
func (e Entry) Credit() decimal.Decimal {
	if e.SignedAmount.IsNegative() {
		return e.SignedAmount.Neg()
	}
	return decimal.Zero
}

// Filters narrows the ledger. Zero values disable a filter.
type Filters struct {
	DateFrom   *time.Time `json:"date_from,omitempty"`
	DateTo     *time.Time `json:"date_to,omitempty"`
	Kind       Kind       `json:"kind,omitempty"`
	SearchText string     `json:"search,omitempty"`
}

// Summary aggregates a built ledger the way a printed statement footer does.
type Summary struct {
	Count          int                      `json:"count"`
	TotalDebit     decimal.Decimal          `json:"total_debit"`
	TotalCredit    decimal.Decimal          `json:"total_credit"`
	Nett           decimal.Decimal          `json:"nett"`
	ClosingBalance decimal.Decimal          `json:"closing_balance"`
	ByKind         map[Kind]decimal.Decimal `json:"by_kind"`
}
