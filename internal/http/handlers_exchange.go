package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"spendlog/internal/core"
	"spendlog/internal/exchange"
)

const maxImportBytes = 10 << 20 // 10 MiB snapshot uploads

func (s *Server) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	snap := exchange.NewSnapshot(s.store.Settings(), s.store.List(), now)
	data, err := snap.Marshal()
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+exchange.Filename("expenses", "json", now)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleExportCSV streams the current view as CSV, honoring the same
// filter parameters as the list endpoint.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	records := core.Filter(s.store.List(), parseFilterSpec(r))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+exchange.Filename("expenses", "csv", time.Now())+`"`)
	w.WriteHeader(http.StatusOK)
	if err := exchange.WriteCSV(w, records); err != nil {
		// Headers are already out; all that is left is logging.
		slog.ErrorContext(r.Context(), "CSV export failed mid-stream", "error", err)
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		respondError(w, http.StatusBadRequest, "import replaces all expenses: retry with confirm=true")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "unreadable request body")
		return
	}

	payload, err := exchange.ParseImport(body)
	if errors.Is(err, exchange.ErrBadShape) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	result, err := s.store.Import(r.Context(), payload.Candidates, payload.Settings)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Import completed", "imported", result.Imported, "dropped", result.Dropped)
	s.viewCache.Purge()
	respondJSON(w, http.StatusOK, result)
}
