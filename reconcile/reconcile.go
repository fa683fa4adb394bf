// Package reconcile turns a counterparty snapshot into a statement: returns
// that only carry line detail are priced through proration, then everything
// is merged by the ledger builder.
package reconcile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aqlanhadi/tally/ledger"
	"github.com/aqlanhadi/tally/proration"
)

var ErrUnknownCounterparty = errors.New("unknown counterparty type")

const (
	Supplier = "supplier"
	Client   = "client"
)

// ReturnDocument carries what is needed to price a return whose amount is
// missing upstream.
type ReturnDocument struct {
	Order proration.Order        `json:"order"`
	Items []proration.ReturnItem `json:"items"`
}

// Snapshot is everything known about one counterparty at a point in time.
type Snapshot struct {
	Counterparty    string                    `json:"counterparty"`
	CounterpartyID  string                    `json:"counterparty_id,omitempty"`
	Orders          []ledger.Record           `json:"orders"`
	Returns         []ledger.Record           `json:"returns"`
	Payments        []ledger.Record           `json:"payments"`
	ReturnDocuments map[string]ReturnDocument `json:"return_documents,omitempty"`
}

// Statement is the reconciled view of a snapshot.
type Statement struct {
	Counterparty   string                         `json:"counterparty"`
	CounterpartyID string                         `json:"counterparty_id,omitempty"`
	Entries        []ledger.Entry                 `json:"entries"`
	Summary        ledger.Summary                 `json:"summary"`
	Valuations     map[string]proration.Valuation `json:"valuations,omitempty"`
}

// Config holds the classification rules per counterparty type.
type Config struct {
	Supplier ledger.Options
	Client   ledger.Options
}

// DefaultConfig returns the built-in classification rules.
func DefaultConfig() Config {
	return Config{
		Supplier: ledger.SupplierOptions(),
		Client:   ledger.ClientOptions(),
	}
}

// Service builds statements. It holds no mutable state and is safe for
// concurrent use.
type Service struct {
	config Config
}

// New creates a Service with the given configuration.
func New(cfg Config) *Service {
	return &Service{config: cfg}
}

// Options returns the ledger options for a counterparty type. "customer" is
// accepted as an alias of client.
func (s *Service) Options(counterparty string) (ledger.Options, error) {
	switch strings.ToLower(strings.TrimSpace(counterparty)) {
	case Supplier, "vendor":
		return s.config.Supplier, nil
	case Client, "customer":
		return s.config.Client, nil
	default:
		return ledger.Options{}, fmt.Errorf("%q: %w", counterparty, ErrUnknownCounterparty)
	}
}

// Statement prices returns lacking an amount, builds the filtered ledger and
// summarizes it. The snapshot is not modified.
func (s *Service) Statement(snap Snapshot, filters ledger.Filters) (Statement, error) {
	opts, err := s.Options(snap.Counterparty)
	if err != nil {
		return Statement{}, err
	}

	returns, valuations, err := PriceReturns(snap.Returns, snap.ReturnDocuments, opts)
	if err != nil {
		return Statement{}, err
	}

	entries := ledger.Build(snap.Orders, returns, snap.Payments, filters, opts)

	return Statement{
		Counterparty:   snap.Counterparty,
		CounterpartyID: snap.CounterpartyID,
		Entries:        entries,
		Summary:        ledger.Summarize(entries),
		Valuations:     valuations,
	}, nil
}

// PriceReturns valuates every non-draft return that has a document. A return
// whose upstream amount is zero takes the valuation total; a non-zero
// upstream amount is kept as recorded. Drafts are left untouched and get no
// valuation. Returns a new slice; the input is untouched.
func PriceReturns(returns []ledger.Record, docs map[string]ReturnDocument, opts ledger.Options) ([]ledger.Record, map[string]proration.Valuation, error) {
	priced := make([]ledger.Record, len(returns))
	copy(priced, returns)

	if len(docs) == 0 {
		return priced, nil, nil
	}

	valuations := make(map[string]proration.Valuation, len(docs))
	for i, r := range priced {
		if opts.IsDraft(r.Status) {
			continue
		}
		doc, ok := docs[r.ID]
		if !ok {
			continue
		}
		v, err := proration.ValuateReturn(doc.Order, doc.Items)
		if err != nil {
			return nil, nil, fmt.Errorf("return %s: %w", r.ID, err)
		}
		valuations[r.ID] = v
		if r.Amount.IsZero() {
			priced[i].Amount = v.Totals.Total
		}
	}
	return priced, valuations, nil
}
