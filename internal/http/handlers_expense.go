package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"spendlog/internal/core"
)

const maxBodyBytes = 1 << 20 // 1 MiB per mutation request

// expenseRequest is the client payload for create and update. Amount is
// accepted both as a JSON number and as a string with either decimal
// separator.
type expenseRequest struct {
	Date        string `json:"date"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Amount      any    `json:"amount"`
	Currency    string `json:"currency"`
}

func (req expenseRequest) draft() (core.Draft, error) {
	amount, err := amountValue(req.Amount)
	if err != nil {
		return core.Draft{}, err
	}
	return core.Draft{
		Date:        strings.TrimSpace(req.Date),
		Category:    sanitizeInput(req.Category),
		Description: sanitizeInput(req.Description),
		Amount:      amount,
		Currency:    strings.TrimSpace(req.Currency),
	}, nil
}

func amountValue(v any) (decimal.Decimal, error) {
	switch t := v.(type) {
	case nil:
		// Leave zero for validation to reject.
		return decimal.Decimal{}, nil
	case json.Number:
		return core.ParseAmount(t.String())
	case string:
		return core.ParseAmount(t)
	}
	return decimal.Decimal{}, core.ErrInvalidAmount
}

func decodeExpenseRequest(w http.ResponseWriter, r *http.Request) (expenseRequest, bool) {
	var req expenseRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return expenseRequest{}, false
	}
	return req, true
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeExpenseRequest(w, r)
	if !ok {
		return
	}

	draft, err := req.draft()
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	exp, err := s.store.Add(r.Context(), draft)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	s.viewCache.Purge()
	respondJSON(w, http.StatusCreated, exp)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeExpenseRequest(w, r)
	if !ok {
		return
	}

	draft, err := req.draft()
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	exp, err := s.store.Update(r.Context(), r.PathValue("id"), draft)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	s.viewCache.Purge()
	respondJSON(w, http.StatusOK, exp)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	found, err := s.store.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	if !found {
		respondError(w, http.StatusNotFound, "expense not found")
		return
	}

	s.viewCache.Purge()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearExpenses(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		respondError(w, http.StatusBadRequest, "confirmation required: retry with confirm=true")
		return
	}

	removed, err := s.store.Clear(r.Context())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	s.viewCache.Purge()
	respondJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
