package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/aqlanhadi/tally/ledger"
	"github.com/aqlanhadi/tally/source"
)

type filterRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Kind   string `json:"kind" validate:"omitempty,oneof=all order return payment"`
	Search string `json:"search" validate:"max=200"`
}

type statementRequest struct {
	Counterparty   string           `json:"counterparty" validate:"required"`
	CounterpartyID string           `json:"counterparty_id"`
	Orders         []map[string]any `json:"orders"`
	Returns        []map[string]any `json:"returns"`
	Payments       []map[string]any `json:"payments"`
	Filters        filterRequest    `json:"filters"`
}

func (r statementRequest) raw() source.RawSnapshot {
	return source.RawSnapshot{
		Counterparty:   r.Counterparty,
		CounterpartyID: r.CounterpartyID,
		Orders:         r.Orders,
		Returns:        r.Returns,
		Payments:       r.Payments,
	}
}

type valuateRequest struct {
	Order map[string]any   `json:"order" validate:"required"`
	Items []map[string]any `json:"items" validate:"required,min=1"`
}

// decode reads a JSON body into dst, keeping numbers as json.Number, and
// validates it.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	body := r.Body
	if s.config.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
	}

	dec := json.NewDecoder(body)
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}

	if err := s.validate.Struct(dst); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("validation: %s", strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

// filters converts and validates request filters. Dates accept the same
// formats as record dates.
func (f filterRequest) filters() (ledger.Filters, error) {
	var out ledger.Filters
	var err error

	if out.DateFrom, err = filterDate("from", f.From); err != nil {
		return ledger.Filters{}, err
	}
	if out.DateTo, err = filterDate("to", f.To); err != nil {
		return ledger.Filters{}, err
	}
	out.Kind = ledger.Kind(strings.ToLower(f.Kind))
	out.SearchText = f.Search
	return out, nil
}

func filterDate(name, value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t := ledger.ParseDate(value)
	if t == nil {
		return nil, fmt.Errorf("invalid %s date %q", name, value)
	}
	return t, nil
}

// queryFilters reads filters from URL query parameters.
func (s *Server) queryFilters(r *http.Request) (ledger.Filters, error) {
	q := r.URL.Query()
	f := filterRequest{
		From:   coalesce(q.Get("from"), q.Get("date_from")),
		To:     coalesce(q.Get("to"), q.Get("date_to")),
		Kind:   q.Get("kind"),
		Search: coalesce(q.Get("search"), q.Get("q")),
	}
	if err := s.validate.Struct(f); err != nil {
		return ledger.Filters{}, fmt.Errorf("validation: %w", err)
	}
	return f.filters()
}
