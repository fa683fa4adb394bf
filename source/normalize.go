// Package source maps raw backend records, whose field names drift between
// endpoints, onto the normalized shapes the ledger and proration packages
// work with. Dirty values are coerced here so the engine never sees them.
package source

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aqlanhadi/tally/ledger"
	"github.com/aqlanhadi/tally/proration"
	"github.com/aqlanhadi/tally/reconcile"
)

// Clock supplies "now" for records that arrive without any date.
type Clock func() time.Time

// Missing-date policies.
const (
	MissingDateNull = "null"
	MissingDateNow  = "now"
)

// recordNamespace seeds the deterministic IDs given to records without one.
var recordNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("tally.source.record"))

// RawSnapshot is a snapshot as delivered by the backend, one free-form
// object per record.
type RawSnapshot struct {
	Counterparty   string           `json:"counterparty"`
	CounterpartyID string           `json:"counterparty_id"`
	Orders         []map[string]any `json:"orders"`
	Returns        []map[string]any `json:"returns"`
	Payments       []map[string]any `json:"payments"`
}

// Normalizer converts raw snapshots. The zero value is not usable; call
// NewNormalizer.
type Normalizer struct {
	aliases     map[ledger.Kind]Aliases
	clock       Clock
	missingDate string
}

// Option customizes a Normalizer.
type Option func(*Normalizer)

// WithAliases replaces the default alias tables.
func WithAliases(aliases map[ledger.Kind]Aliases) Option {
	return func(n *Normalizer) { n.aliases = aliases }
}

// WithClock injects the clock used by the "now" missing-date policy.
func WithClock(c Clock) Option {
	return func(n *Normalizer) { n.clock = c }
}

// WithMissingDate sets the policy for records without a date field.
func WithMissingDate(policy string) Option {
	return func(n *Normalizer) { n.missingDate = policy }
}

// NewNormalizer returns a Normalizer using the default aliases, the system
// clock and the "null" missing-date policy unless overridden.
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{
		aliases:     DefaultAliases(),
		clock:       time.Now,
		missingDate: MissingDateNull,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize converts raw into a reconcile.Snapshot. Returns that carry both
// an order and line items get a ReturnDocument so they can be priced. When
// two returns share an id only the first one's document is kept.
func (n *Normalizer) Normalize(raw RawSnapshot) reconcile.Snapshot {
	snap := reconcile.Snapshot{
		Counterparty:   raw.Counterparty,
		CounterpartyID: raw.CounterpartyID,
		Orders:         n.records(raw.Orders, ledger.KindOrder),
		Returns:        n.records(raw.Returns, ledger.KindReturn),
		Payments:       n.records(raw.Payments, ledger.KindPayment),
	}

	for i, r := range raw.Returns {
		doc, ok := n.ReturnDocument(r)
		if !ok {
			continue
		}
		if snap.ReturnDocuments == nil {
			snap.ReturnDocuments = make(map[string]reconcile.ReturnDocument)
		}
		id := snap.Returns[i].ID
		if _, dup := snap.ReturnDocuments[id]; dup {
			log.Printf("Warning: return %q: duplicate id, keeping the first document", id)
			continue
		}
		snap.ReturnDocuments[id] = doc
	}
	return snap
}

func (n *Normalizer) records(raw []map[string]any, kind ledger.Kind) []ledger.Record {
	out := make([]ledger.Record, 0, len(raw))
	for i, r := range raw {
		out = append(out, n.Record(r, kind, i))
	}
	return out
}

// Record normalizes a single raw record. index is its position in the
// source list and only feeds the generated ID of records that lack one.
func (n *Normalizer) Record(raw map[string]any, kind ledger.Kind, index int) ledger.Record {
	a := n.aliases[kind]
	rec := ledger.Record{}

	if v, ok := a.lookup(raw, FieldID); ok {
		rec.ID = String(v)
	}
	if v, ok := a.lookup(raw, FieldStatus); ok {
		rec.Status = String(v)
	}

	amountRaw, found := a.lookup(raw, FieldAmount)
	amount, ok := Decimal(amountRaw)
	if !ok {
		log.Printf("Warning: %s %q: amount %v is not numeric, using 0", kind, rec.ID, amountRaw)
	}
	rec.Amount = amount

	if v, ok := a.lookup(raw, FieldDate); ok {
		switch x := v.(type) {
		case time.Time:
			t := x
			rec.Time = &t
		default:
			rec.Date = String(v)
			if rec.Date != "" && ledger.ParseDate(rec.Date) == nil {
				log.Printf("Warning: %s %q: unparseable date %q", kind, rec.ID, rec.Date)
			}
		}
	} else if n.missingDate == MissingDateNow {
		now := n.clock()
		rec.Time = &now
	}

	if rec.ID == "" {
		rec.ID = generatedID(kind, index, rec, found)
	}

	return rec
}

// generatedID derives a stable ID from the record's content so that repeated
// normalization of the same snapshot yields identical ledgers.
func generatedID(kind ledger.Kind, index int, rec ledger.Record, hasAmount bool) string {
	key := fmt.Sprintf("%s|%d|%s|%s|%s|%t", kind, index, rec.Date, rec.Status, rec.Amount.String(), hasAmount)
	return string(kind) + "-" + uuid.NewSHA1(recordNamespace, []byte(key)).String()[:8]
}

// ReturnDocument extracts the order and requested items carried by a raw
// return. ok is false when either is missing.
func (n *Normalizer) ReturnDocument(raw map[string]any) (reconcile.ReturnDocument, bool) {
	ra := n.aliases[ledger.KindReturn]

	orderRaw, ok := ra.lookup(raw, FieldOrder)
	if !ok {
		return reconcile.ReturnDocument{}, false
	}
	orderMap, ok := orderRaw.(map[string]any)
	if !ok {
		return reconcile.ReturnDocument{}, false
	}
	itemsRaw, ok := ra.lookup(raw, FieldLines)
	if !ok {
		return reconcile.ReturnDocument{}, false
	}

	return reconcile.ReturnDocument{
		Order: n.Order(orderMap),
		Items: n.ReturnItems(objects(itemsRaw)),
	}, true
}

// Order normalizes an order document with its line items.
func (n *Normalizer) Order(raw map[string]any) proration.Order {
	oa := n.aliases[ledger.KindOrder]
	la := n.aliases[lineKind]

	order := proration.Order{}
	if v, ok := oa.lookup(raw, FieldID); ok {
		order.ID = String(v)
	}
	if v, ok := oa.lookup(raw, FieldHeaderDiscount); ok {
		order.HeaderDiscount = n.number(v, "header discount")
	}

	linesRaw, _ := oa.lookup(raw, FieldLines)
	for i, l := range objects(linesRaw) {
		line := proration.OrderLineItem{LineID: fmt.Sprintf("%d", i+1)}
		if v, ok := la.lookup(l, FieldLineID); ok {
			line.LineID = String(v)
		}
		if v, ok := la.lookup(l, FieldOrderedQuantity); ok {
			line.OrderedQuantity = n.number(v, "ordered quantity")
		}
		if v, ok := la.lookup(l, FieldUnitPrice); ok {
			line.UnitPrice = n.number(v, "unit price")
		}
		if v, ok := la.lookup(l, FieldTotalDiscount); ok {
			line.TotalDiscount = n.number(v, "discount")
		}
		if v, ok := la.lookup(l, FieldTotalTax); ok {
			line.TotalTax = n.number(v, "tax")
		}
		if v, ok := la.lookup(l, FieldHasTax); ok {
			line.HasTax = Bool(v)
		}
		if v, ok := la.lookup(l, FieldTaxRate); ok {
			line.TaxRate = n.number(v, "tax rate")
		}
		if v, ok := la.lookup(l, FieldReturnTax); ok {
			line.ReturnTax = n.number(v, "return tax")
		}
		order.Lines = append(order.Lines, line)
	}
	return order
}

// ReturnItems normalizes the line items of a return request.
func (n *Normalizer) ReturnItems(raw []map[string]any) []proration.ReturnItem {
	la := n.aliases[lineKind]

	items := make([]proration.ReturnItem, 0, len(raw))
	for i, r := range raw {
		item := proration.ReturnItem{LineID: fmt.Sprintf("%d", i+1)}
		if v, ok := la.lookup(r, FieldLineID); ok {
			item.LineID = String(v)
		}
		if v, ok := la.lookup(r, FieldReturnQuantity); ok {
			item.Quantity = n.number(v, "returned quantity")
		}
		if v, ok := la.lookup(r, FieldAlreadyReturned); ok {
			item.AlreadyReturned = n.number(v, "already returned")
		}
		if v, ok := la.lookup(r, FieldReturnTax); ok {
			item.ReturnTax = n.number(v, "return tax")
		}
		items = append(items, item)
	}
	return items
}

func (n *Normalizer) number(v any, what string) decimal.Decimal {
	value, ok := Decimal(v)
	if !ok {
		log.Printf("Warning: %s %v is not numeric, using 0", what, v)
	}
	return value
}

// objects keeps the map elements of a decoded JSON array.
func objects(v any) []map[string]any {
	switch x := v.(type) {
	case []map[string]any:
		return x
	case []any:
		out := make([]map[string]any, 0, len(x))
		for _, e := range x {
			if m, ok := e.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}
