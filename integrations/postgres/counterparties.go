package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

var ErrCounterpartyNotFound = errors.New("counterparty not found")

// GetOrCreateCounterparty returns the row id for (type, external id),
// inserting the counterparty on first import. It runs inside tx so a failed
// import leaves no counterparty behind.
func GetOrCreateCounterparty(ctx context.Context, tx pgx.Tx, counterpartyType, externalID string) (string, error) {
	var id string
	err := tx.QueryRow(ctx, `
		INSERT INTO counterparties (counterparty_type, external_id)
		VALUES ($1, $2)
		ON CONFLICT (counterparty_type, external_id)
		DO UPDATE SET updated_at = NOW()
		RETURNING id
	`, counterpartyType, externalID).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to upsert counterparty: %w", err)
	}
	return id, nil
}

// FindCounterparty looks up an existing counterparty without creating it.
func (db *DB) FindCounterparty(ctx context.Context, counterpartyType, externalID string) (string, error) {
	var id string
	err := db.Pool.QueryRow(ctx, `
		SELECT id FROM counterparties WHERE counterparty_type = $1 AND external_id = $2
	`, counterpartyType, externalID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%s %s: %w", counterpartyType, externalID, ErrCounterpartyNotFound)
		}
		return "", fmt.Errorf("failed to find counterparty: %w", err)
	}
	return id, nil
}
