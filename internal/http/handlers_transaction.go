package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"fintrack/internal/core"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, end := q.Get("start"), q.Get("end")

	var ts []core.Transaction
	var err error
	switch {
	case start == "" && end == "":
		ts, err = s.transactions.List(r.Context())
	case start != "" && end != "":
		var rng core.DateRange
		rng.Start, err = core.ParseISODate(start)
		if err == nil {
			rng.End, err = core.ParseISODate(end)
		}
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		ts, err = s.transactions.ListInRange(r.Context(), rng)
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "start and end must be provided together"})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	if typ := q.Get("type"); typ != "" {
		t := core.TransactionType(typ)
		if !t.Valid() {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("unknown type %q", typ)})
			return
		}
		filtered := make([]core.Transaction, 0, len(ts))
		for _, tx := range ts {
			if tx.Type == t {
				filtered = append(filtered, tx)
			}
		}
		ts = filtered
	}

	if ts == nil {
		ts = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, ts)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var t core.Transaction
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	t.ID = ""

	created, err := s.transactions.Create(r.Context(), t)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var t core.Transaction
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	t.ID = r.PathValue("id")

	if err := s.transactions.Update(r.Context(), t); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.transactions.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	typ := core.TransactionType(r.URL.Query().Get("type"))
	if !typ.Valid() {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "type must be income or expense"})
		return
	}
	writeJSON(w, http.StatusOK, core.CategoriesFor(typ))
}
