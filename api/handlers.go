package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aqlanhadi/tally/integrations/postgres"
	"github.com/aqlanhadi/tally/proration"
	"github.com/aqlanhadi/tally/reconcile"
)

func (s *Server) handleStatement(w http.ResponseWriter, r *http.Request) {
	log.Printf("%sstatement request from %s", s.config.LogPrefix, r.RemoteAddr)

	var req statementRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	filters, err := req.Filters.filters()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	stmt, err := s.service.Statement(s.normalizer.Normalize(req.raw()), filters)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stmt)
}

func (s *Server) handleValuate(w http.ResponseWriter, r *http.Request) {
	var req valuateRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	order := s.normalizer.Order(req.Order)
	items := s.normalizer.ReturnItems(req.Items)

	v, err := proration.ValuateReturn(order, items)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	v.Totals = v.Totals.Round()
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleStoredStatement(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "no database configured")
		return
	}

	filters, err := s.queryFilters(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	counterparty, id := chi.URLParam(r, "type"), chi.URLParam(r, "id")
	if _, err := s.service.Options(counterparty); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := s.store.LoadSnapshot(r.Context(), counterparty, id)
	if err != nil {
		if errors.Is(err, postgres.ErrCounterpartyNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		log.Printf("%sload snapshot %s/%s: %v", s.config.LogPrefix, counterparty, id, err)
		writeError(w, http.StatusInternalServerError, "failed to load snapshot")
		return
	}

	stmt, err := s.service.Statement(snap, filters)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stmt)
}

// writeEngineError maps errors from reconcile and proration to statuses.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, reconcile.ErrUnknownCounterparty):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, proration.ErrUnknownLine), errors.Is(err, proration.ErrDuplicateLine):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		log.Printf("%sunexpected error: %v", s.config.LogPrefix, err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
