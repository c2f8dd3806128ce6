package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"spendlog/internal/core"
)

// viewResponse is the list endpoint payload: the filtered records plus the
// aggregates derived from them.
type viewResponse struct {
	Expenses   []core.Expense  `json:"expenses"`
	Total      int             `json:"total"`
	Filtered   int             `json:"filtered"`
	Summary    summaryResponse `json:"summary"`
	Categories []string        `json:"categories"`
}

type summaryResponse struct {
	Currency core.ActiveCurrency `json:"currency"`
	// Total is omitted when the filtered records span multiple currencies.
	Total      *decimal.Decimal     `json:"total,omitempty"`
	ByCategory []core.CategoryTotal `json:"byCategory"`
}

// parseFilterSpec reads the view constraints from the query string. An
// unrecognized sort value falls back to the default ordering rather than
// failing the request.
func parseFilterSpec(r *http.Request) core.FilterSpec {
	q := r.URL.Query()
	spec := core.FilterSpec{
		Month:    strings.TrimSpace(q.Get("month")),
		Category: strings.TrimSpace(q.Get("category")),
		Search:   strings.TrimSpace(q.Get("q")),
	}
	if sort := core.SortKey(strings.TrimSpace(q.Get("sort"))); sort.IsValid() {
		spec.Sort = sort
	}
	return spec
}

// cacheKey derives a cache key from the filter spec. Fields are quoted so
// values containing the separator cannot collide with another spec.
func cacheKey(spec core.FilterSpec) string {
	return fmt.Sprintf("%q|%q|%q|%q", spec.Month, spec.Category, strings.ToLower(spec.Search), string(spec.Sort))
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	spec := parseFilterSpec(r)
	key := cacheKey(spec)

	if view, found := s.viewCache.Get(key); found {
		slog.DebugContext(r.Context(), "View cache hit", "key", key)
		respondJSON(w, http.StatusOK, view)
		return
	}

	view := s.buildView(spec)
	s.viewCache.Set(key, view)
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) buildView(spec core.FilterSpec) viewResponse {
	all := s.store.List()
	filtered := core.Filter(all, spec)

	currency := core.CurrencyOf(filtered, s.store.Settings().Currency)
	summary := summaryResponse{
		Currency:   currency,
		ByCategory: core.ByCategory(filtered),
	}
	if !currency.Mixed {
		total := core.Total(filtered)
		summary.Total = &total
	}

	return viewResponse{
		Expenses:   filtered,
		Total:      len(all),
		Filtered:   len(filtered),
		Summary:    summary,
		Categories: core.Categories(all),
	}
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.store.Settings())
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var settings core.Settings
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&settings); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.store.SetCurrency(r.Context(), settings.Currency); err != nil {
		writeStoreError(w, r, err)
		return
	}

	// Preferred currency shapes the empty-list summary.
	s.viewCache.Purge()
	respondJSON(w, http.StatusOK, s.store.Settings())
}
