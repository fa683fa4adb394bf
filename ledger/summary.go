package ledger

import "github.com/shopspring/decimal"

// Summarize totals the debit and credit columns of a built ledger. The
// closing balance is the running balance of the last entry, which equals
// TotalDebit - TotalCredit.
func Summarize(entries []Entry) Summary {
	s := Summary{
		Count:          len(entries),
		TotalDebit:     decimal.Zero,
		TotalCredit:    decimal.Zero,
		Nett:           decimal.Zero,
		ClosingBalance: decimal.Zero,
		ByKind:         make(map[Kind]decimal.Decimal),
	}

	for _, e := range entries {
		s.TotalDebit = s.TotalDebit.Add(e.Debit())
		s.TotalCredit = s.TotalCredit.Add(e.Credit())
		s.ByKind[e.Kind] = s.ByKind[e.Kind].Add(e.DisplayAmount)
	}
	s.Nett = s.TotalDebit.Sub(s.TotalCredit)

	if len(entries) > 0 {
		s.ClosingBalance = entries[len(entries)-1].RunningBalance
	}
	return s
}
