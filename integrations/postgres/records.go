package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aqlanhadi/tally/ledger"
	"github.com/aqlanhadi/tally/reconcile"
)

const insertRecordSQL = `
	INSERT INTO ledger_records (
		counterparty_id, kind, reference, record_date, raw_date, status, amount, seq
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (counterparty_id, kind, reference) DO NOTHING
`

const upsertRecordSQL = `
	INSERT INTO ledger_records (
		counterparty_id, kind, reference, record_date, raw_date, status, amount, seq
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (counterparty_id, kind, reference) DO UPDATE SET
		record_date = EXCLUDED.record_date,
		raw_date = EXCLUDED.raw_date,
		status = EXCLUDED.status,
		amount = EXCLUDED.amount,
		seq = EXCLUDED.seq
`

const insertDocumentSQL = `
	INSERT INTO return_documents (record_id, document)
	SELECT id, $4 FROM ledger_records
	WHERE counterparty_id = $1 AND kind = $2 AND reference = $3
	ON CONFLICT (record_id) DO NOTHING
`

const upsertDocumentSQL = `
	INSERT INTO return_documents (record_id, document)
	SELECT id, $4 FROM ledger_records
	WHERE counterparty_id = $1 AND kind = $2 AND reference = $3
	ON CONFLICT (record_id) DO UPDATE SET document = EXCLUDED.document
`

// WriteRecords inserts the records of one kind for a counterparty in a single
// batch. Existing rows (same kind and reference) are left alone unless force
// is set, in which case they are overwritten. Each row stores its position in
// records so it loads back in input order. It reports how many rows were
// written and how many were skipped as duplicates.
func WriteRecords(ctx context.Context, tx pgx.Tx, counterpartyID string, kind ledger.Kind, records []ledger.Record, force bool) (written int, skipped int, err error) {
	if len(records) == 0 {
		return 0, 0, nil
	}

	sql := insertRecordSQL
	if force {
		sql = upsertRecordSQL
	}

	batch := &pgx.Batch{}
	for i, rec := range records {
		batch.Queue(sql,
			counterpartyID, string(kind), rec.ID, rec.ResolveDate(), rec.Date, rec.Status, rec.Amount, i,
		)
	}

	br := tx.SendBatch(ctx, batch)
	defer br.Close()

	for _, rec := range records {
		tag, err := br.Exec()
		if err != nil {
			return written, skipped, fmt.Errorf("failed to insert %s %q: %w", kind, rec.ID, err)
		}
		if tag.RowsAffected() == 0 {
			skipped++
			continue
		}
		written++
	}

	return written, skipped, nil
}

// WriteReturnDocuments stores the line detail of returns keyed by their
// reference. The return rows must already exist.
func WriteReturnDocuments(ctx context.Context, tx pgx.Tx, counterpartyID string, docs map[string]reconcile.ReturnDocument, force bool) error {
	if len(docs) == 0 {
		return nil
	}

	sql := insertDocumentSQL
	if force {
		sql = upsertDocumentSQL
	}

	batch := &pgx.Batch{}
	refs := make([]string, 0, len(docs))
	for ref, doc := range docs {
		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to encode return document %q: %w", ref, err)
		}
		batch.Queue(sql, counterpartyID, string(ledger.KindReturn), ref, data)
		refs = append(refs, ref)
	}

	br := tx.SendBatch(ctx, batch)
	defer br.Close()

	for _, ref := range refs {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to insert return document %q: %w", ref, err)
		}
	}

	return nil
}
