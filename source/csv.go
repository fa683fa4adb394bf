package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/aqlanhadi/tally/ledger"
)

// ReadCSV parses a flat export with one record per row. The header must name
// a "kind" column (order, return or payment); the remaining columns are
// passed through the alias tables like JSON keys.
func ReadCSV(r io.Reader) (RawSnapshot, error) {
	csvReader := csv.NewReader(r)
	csvReader.FieldsPerRecord = -1
	csvReader.TrimLeadingSpace = true

	header, err := csvReader.Read()
	if err != nil {
		return RawSnapshot{}, fmt.Errorf("failed to read CSV header: %w", err)
	}

	kindCol := -1
	for i, h := range header {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if header[i] == "kind" || header[i] == "type" {
			kindCol = i
		}
	}
	if kindCol < 0 {
		return RawSnapshot{}, fmt.Errorf("invalid CSV format: no kind column in header %v", header)
	}

	var raw RawSnapshot
	line := 1
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			log.Printf("Warning: error reading CSV row %d: %v", line, err)
			continue
		}
		if kindCol >= len(record) {
			log.Printf("Warning: skipping row %d with insufficient columns: %d", line, len(record))
			continue
		}

		row := make(map[string]any, len(header))
		for i, value := range record {
			if i < len(header) && i != kindCol {
				row[header[i]] = value
			}
		}

		switch ledger.Kind(strings.ToLower(strings.TrimSpace(record[kindCol]))) {
		case ledger.KindOrder:
			raw.Orders = append(raw.Orders, row)
		case ledger.KindReturn:
			raw.Returns = append(raw.Returns, row)
		case ledger.KindPayment:
			raw.Payments = append(raw.Payments, row)
		default:
			log.Printf("Warning: skipping row %d with unknown kind %q", line, record[kindCol])
		}
	}

	return raw, nil
}
