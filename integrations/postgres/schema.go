package postgres

import (
	"context"
	"fmt"
)

const ddl = `
-- Counterparties (suppliers and clients) mirrored from the backend
CREATE TABLE IF NOT EXISTS counterparties (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    counterparty_type VARCHAR(20) NOT NULL,
    external_id VARCHAR(100) NOT NULL,
    name VARCHAR(255) DEFAULT '',
    created_at TIMESTAMPTZ DEFAULT NOW(),
    updated_at TIMESTAMPTZ DEFAULT NOW(),

    UNIQUE(counterparty_type, external_id)
);

-- Orders, returns and payments, one row per source record
CREATE TABLE IF NOT EXISTS ledger_records (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    counterparty_id UUID NOT NULL REFERENCES counterparties(id) ON DELETE CASCADE,
    kind VARCHAR(10) NOT NULL CHECK (kind IN ('order', 'return', 'payment')),
    reference VARCHAR(255) NOT NULL,
    record_date TIMESTAMPTZ,
    raw_date VARCHAR(64) DEFAULT '',
    status VARCHAR(50) DEFAULT '',
    amount NUMERIC(18,4) NOT NULL DEFAULT 0,
    seq INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ DEFAULT NOW(),

    -- Natural key for idempotent imports
    UNIQUE(counterparty_id, kind, reference)
);

-- Position of the record in its import, for tables created before seq existed
ALTER TABLE ledger_records ADD COLUMN IF NOT EXISTS seq INTEGER NOT NULL DEFAULT 0;

-- Line detail for returns whose amount is priced from the original order
CREATE TABLE IF NOT EXISTS return_documents (
    record_id UUID PRIMARY KEY REFERENCES ledger_records(id) ON DELETE CASCADE,
    document JSONB NOT NULL,
    created_at TIMESTAMPTZ DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_ledger_records_counterparty ON ledger_records(counterparty_id, kind);
CREATE INDEX IF NOT EXISTS idx_ledger_records_date ON ledger_records(record_date);
`

// EnsureSchema creates tables if they don't exist
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
