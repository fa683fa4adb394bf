package ledger

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

var statusSeparators = regexp.MustCompile(`[\s_\-]+`)

// NormalizeStatus folds case and separators so that "Partially_Received",
// "partially-received" and " PARTIALLY RECEIVED " compare equal.
func NormalizeStatus(status string) string {
	// A Caser keeps state, so each call gets its own.
	folded := cases.Fold().String(strings.TrimSpace(status))
	return strings.TrimSpace(statusSeparators.ReplaceAllString(folded, " "))
}

// Options controls how records are classified.
type Options struct {
	FulfilledStatuses []string
	DraftStatuses     []string
	// IncludeUnfulfilled keeps unfulfilled orders in the output with a zero
	// signed amount. When false they are dropped like drafts.
	IncludeUnfulfilled bool
}

// SupplierOptions classifies purchase orders: goods must have been received.
func SupplierOptions() Options {
	return Options{
		FulfilledStatuses:  []string{"received", "partially received"},
		DraftStatuses:      []string{"draft"},
		IncludeUnfulfilled: true,
	}
}

// ClientOptions classifies sales orders: the order must have been invoiced.
func ClientOptions() Options {
	return Options{
		FulfilledStatuses:  []string{"invoiced", "partially invoiced", "paid", "completed"},
		DraftStatuses:      []string{"draft"},
		IncludeUnfulfilled: true,
	}
}

// IsDraft reports whether status is one of the draft statuses. Drafts never
// reach the ledger.
func (o Options) IsDraft(status string) bool {
	return newStatusSet(o.DraftStatuses).has(status)
}

type statusSet map[string]struct{}

func newStatusSet(statuses []string) statusSet {
	set := make(statusSet, len(statuses))
	for _, s := range statuses {
		if n := NormalizeStatus(s); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

func (s statusSet) has(status string) bool {
	_, ok := s[NormalizeStatus(status)]
	return ok
}
