package postgres

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/aqlanhadi/tally/ledger"
	"github.com/aqlanhadi/tally/reconcile"
	"github.com/aqlanhadi/tally/source"
)

// ImportResult tracks the outcome of an import operation
type ImportResult struct {
	Processed int
	Skipped   int
	Failed    int
	Errors    []string
}

// ImportOptions configures the import behavior
type ImportOptions struct {
	Force          bool   // Overwrite records that already exist
	Counterparty   string // Used when the file does not name one (CSV)
	CounterpartyID string // Used when the file does not name one (CSV)
	Verbose        bool
}

// ImportSnapshot stores every record of snap in one transaction. Records are
// keyed by (counterparty, kind, reference), so importing the same snapshot
// twice is a no-op unless Force is set.
func (db *DB) ImportSnapshot(ctx context.Context, snap reconcile.Snapshot, force bool) (written int, skipped int, err error) {
	if snap.Counterparty == "" || snap.CounterpartyID == "" {
		return 0, 0, fmt.Errorf("snapshot has no counterparty")
	}

	err = pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		counterpartyID, err := GetOrCreateCounterparty(ctx, tx, snap.Counterparty, snap.CounterpartyID)
		if err != nil {
			return err
		}

		for _, group := range []struct {
			kind    ledger.Kind
			records []ledger.Record
		}{
			{ledger.KindOrder, snap.Orders},
			{ledger.KindReturn, snap.Returns},
			{ledger.KindPayment, snap.Payments},
		} {
			w, s, err := WriteRecords(ctx, tx, counterpartyID, group.kind, group.records, force)
			if err != nil {
				return err
			}
			written += w
			skipped += s
		}
		return WriteReturnDocuments(ctx, tx, counterpartyID, snap.ReturnDocuments, force)
	})
	if err != nil {
		return 0, 0, err
	}

	return written, skipped, nil
}

// ImportFile reads one JSON or CSV snapshot and stores it.
func (db *DB) ImportFile(ctx context.Context, filePath string, n *source.Normalizer, opts ImportOptions) (processed int, skipped int, failed int, errors []string) {
	fileName := filepath.Base(filePath)

	f, err := os.Open(filePath)
	if err != nil {
		return 0, 0, 1, []string{fmt.Sprintf("%s: failed to open file: %v", fileName, err)}
	}
	defer f.Close()

	var raw source.RawSnapshot
	if strings.EqualFold(filepath.Ext(filePath), ".csv") {
		raw, err = source.ReadCSV(f)
	} else {
		raw, err = source.DecodeJSON(f)
	}
	if err != nil {
		return 0, 0, 1, []string{fmt.Sprintf("%s: %v", fileName, err)}
	}

	if raw.Counterparty == "" {
		raw.Counterparty = opts.Counterparty
	}
	if raw.CounterpartyID == "" {
		raw.CounterpartyID = opts.CounterpartyID
	}
	snap := n.Normalize(raw)

	written, dup, err := db.ImportSnapshot(ctx, snap, opts.Force)
	if err != nil {
		return 0, 0, 1, []string{fmt.Sprintf("%s [%s %s]: %v", fileName, snap.Counterparty, snap.CounterpartyID, err)}
	}

	if opts.Verbose {
		log.Printf("OK   %s [%s %s] (%d written, %d already present)", fileName, snap.Counterparty, snap.CounterpartyID, written, dup)
	}
	return written, dup, 0, nil
}

// ImportDirectory processes all JSON and CSV files in a directory
func (db *DB) ImportDirectory(ctx context.Context, dirPath string, n *source.Normalizer, opts ImportOptions) (*ImportResult, error) {
	result := &ImportResult{}

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var dataFiles []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if isSnapshotFile(e.Name()) {
			dataFiles = append(dataFiles, filepath.Join(dirPath, e.Name()))
		}
	}

	log.Printf("Scanning: %s", dirPath)
	log.Printf("Found %d files (JSON/CSV)\n", len(dataFiles))

	for _, filePath := range dataFiles {
		processed, skipped, failed, errors := db.ImportFile(ctx, filePath, n, opts)

		result.Processed += processed
		result.Skipped += skipped
		result.Failed += failed
		result.Errors = append(result.Errors, errors...)

		if opts.Verbose && failed > 0 {
			for _, errMsg := range errors {
				log.Printf("FAIL %s", errMsg)
			}
		}
	}

	return result, nil
}

// Import handles both file and directory imports
func (db *DB) Import(ctx context.Context, path string, n *source.Normalizer, opts ImportOptions) (*ImportResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}

	if info.IsDir() {
		return db.ImportDirectory(ctx, path, n, opts)
	}

	result := &ImportResult{}
	result.Processed, result.Skipped, result.Failed, result.Errors = db.ImportFile(ctx, path, n, opts)
	return result, nil
}

func isSnapshotFile(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".json") || strings.HasSuffix(lower, ".csv")
}
