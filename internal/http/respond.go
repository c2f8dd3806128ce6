package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"spendlog/internal/core"
	"spendlog/internal/exchange"
	"spendlog/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encoding failed", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Error: msg})
}

// writeStoreError maps domain errors onto HTTP statuses. Validation
// failures are the client's fault, everything else is a persistence
// problem.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrMissingCategory),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, store.ErrEmptyCurrency):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, exchange.ErrBadShape):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Store operation failed", "error", err, "url", r.URL.Path)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
