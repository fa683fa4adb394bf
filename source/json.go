package source

import (
	"encoding/json"
	"fmt"
	"io"
)

// DecodeJSON reads a raw snapshot. Numbers are kept as json.Number so that
// amounts reach decimal parsing without a float round trip.
func DecodeJSON(r io.Reader) (RawSnapshot, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw RawSnapshot
	if err := dec.Decode(&raw); err != nil {
		return RawSnapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return raw, nil
}

// DecodeObject reads a single free-form JSON object, e.g. an order document.
func DecodeObject(r io.Reader) (map[string]any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("failed to decode object: %w", err)
	}
	return obj, nil
}
