// Package ledger merges the orders, returns and payments of one counterparty
// into a chronologically ordered list of signed entries with a running
// balance.
package ledger

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Build classifies, signs, filters and sorts the records and folds their
// signed amounts into a running balance. Inputs are not modified and every
// call returns a freshly allocated slice.
func Build(orders, returns, payments []Record, filters Filters, opts Options) []Entry {
	fulfilled := newStatusSet(opts.FulfilledStatuses)
	drafts := newStatusSet(opts.DraftStatuses)

	entries := make([]Entry, 0, len(orders)+len(returns)+len(payments))

	for _, r := range orders {
		if drafts.has(r.Status) {
			continue
		}
		e := classify(r, KindOrder)
		if fulfilled.has(r.Status) {
			e.SignedAmount = e.DisplayAmount
		} else if !opts.IncludeUnfulfilled {
			continue
		}
		entries = append(entries, e)
	}
	for _, r := range returns {
		if drafts.has(r.Status) {
			continue
		}
		e := classify(r, KindReturn)
		e.SignedAmount = e.DisplayAmount.Neg()
		entries = append(entries, e)
	}
	for _, r := range payments {
		if drafts.has(r.Status) {
			continue
		}
		e := classify(r, KindPayment)
		e.SignedAmount = e.DisplayAmount.Neg()
		entries = append(entries, e)
	}

	entries = applyFilters(entries, filters)
	sortByDate(entries)

	balance := decimal.Zero
	for i := range entries {
		balance = balance.Add(entries[i].SignedAmount)
		entries[i].RunningBalance = balance
	}

	return entries
}

// classify builds an unsigned entry; the caller assigns the sign.
func classify(r Record, kind Kind) Entry {
	return Entry{
		ID:            r.ID,
		Kind:          kind,
		Date:          r.ResolveDate(),
		Status:        r.Status,
		DisplayAmount: r.Amount.Abs(),
		SignedAmount:  decimal.Zero,
	}
}

// sortByDate orders entries ascending by date. Entries without a date go
// last and, like entries sharing a date, keep their input order.
func sortByDate(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].Date, entries[j].Date
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
}

func applyFilters(entries []Entry, f Filters) []Entry {
	if f.DateFrom != nil && f.DateTo != nil && dayOf(*f.DateFrom).After(dayOf(*f.DateTo)) {
		return []Entry{}
	}

	kind := Kind(strings.ToLower(strings.TrimSpace(string(f.Kind))))
	if kind == "all" {
		kind = ""
	}
	search := strings.ToLower(strings.TrimSpace(f.SearchText))

	out := entries[:0]
	for _, e := range entries {
		if !inRange(e.Date, f.DateFrom, f.DateTo) {
			continue
		}
		if kind != "" && e.Kind != kind {
			continue
		}
		if search != "" && !matches(e, search) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func inRange(date, from, to *time.Time) bool {
	if from == nil && to == nil {
		return true
	}
	if date == nil {
		return false
	}
	day := dayOf(*date)
	if from != nil && day.Before(dayOf(*from)) {
		return false
	}
	if to != nil && day.After(dayOf(*to)) {
		return false
	}
	return true
}

// matches reports whether search occurs in any displayed field of e.
func matches(e Entry, search string) bool {
	fields := []string{e.ID, e.Status, string(e.Kind), e.DisplayAmount.String(), e.DisplayAmount.StringFixed(2)}
	if e.Date != nil {
		fields = append(fields, e.Date.Format("2006-01-02"))
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}
