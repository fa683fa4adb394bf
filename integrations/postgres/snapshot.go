package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/aqlanhadi/tally/ledger"
	"github.com/aqlanhadi/tally/reconcile"
)

const selectRecordsSQL = `
	SELECT r.reference, r.record_date, r.raw_date, r.status, r.amount::text, d.document
	FROM ledger_records r
	LEFT JOIN return_documents d ON d.record_id = r.id
	WHERE r.counterparty_id = $1 AND r.kind = $2
	ORDER BY r.created_at, r.seq, r.reference
`

// LoadSnapshot reads everything stored for one counterparty. The three
// record kinds are fetched concurrently.
func (db *DB) LoadSnapshot(ctx context.Context, counterpartyType, externalID string) (reconcile.Snapshot, error) {
	counterpartyID, err := db.FindCounterparty(ctx, counterpartyType, externalID)
	if err != nil {
		return reconcile.Snapshot{}, err
	}

	snap := reconcile.Snapshot{
		Counterparty:   counterpartyType,
		CounterpartyID: externalID,
	}
	var docs map[string]reconcile.ReturnDocument

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		recs, _, err := db.loadRecords(gctx, counterpartyID, ledger.KindOrder)
		snap.Orders = recs
		return err
	})
	g.Go(func() error {
		recs, d, err := db.loadRecords(gctx, counterpartyID, ledger.KindReturn)
		snap.Returns, docs = recs, d
		return err
	})
	g.Go(func() error {
		recs, _, err := db.loadRecords(gctx, counterpartyID, ledger.KindPayment)
		snap.Payments = recs
		return err
	})
	if err := g.Wait(); err != nil {
		return reconcile.Snapshot{}, err
	}

	snap.ReturnDocuments = docs
	return snap, nil
}

func (db *DB) loadRecords(ctx context.Context, counterpartyID string, kind ledger.Kind) ([]ledger.Record, map[string]reconcile.ReturnDocument, error) {
	rows, err := db.Pool.Query(ctx, selectRecordsSQL, counterpartyID, string(kind))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query %s records: %w", kind, err)
	}
	defer rows.Close()

	var (
		records []ledger.Record
		docs    map[string]reconcile.ReturnDocument
	)
	for rows.Next() {
		var (
			rec      ledger.Record
			date     *time.Time
			amount   string
			document []byte
		)
		if err := rows.Scan(&rec.ID, &date, &rec.Date, &rec.Status, &amount, &document); err != nil {
			return nil, nil, fmt.Errorf("failed to scan %s record: %w", kind, err)
		}

		if date != nil {
			t := date.UTC()
			rec.Time = &t
		}
		rec.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, nil, fmt.Errorf("%s %q: bad amount %q: %w", kind, rec.ID, amount, err)
		}

		if len(document) > 0 {
			var doc reconcile.ReturnDocument
			if err := json.Unmarshal(document, &doc); err != nil {
				return nil, nil, fmt.Errorf("%s %q: bad return document: %w", kind, rec.ID, err)
			}
			if docs == nil {
				docs = make(map[string]reconcile.ReturnDocument)
			}
			docs[rec.ID] = doc
		}

		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read %s records: %w", kind, err)
	}

	return records, docs, nil
}
