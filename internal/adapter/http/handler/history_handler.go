package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/bizledger/internal/adapter/http/dto"
	"github.com/iho/bizledger/internal/domain"
)

// HistoryService defines the behavior needed by HistoryHandler.
type HistoryService interface {
	List(ctx context.Context, clientID string, rng domain.DateRange, limit int) ([]*domain.BalanceHistory, error)
}

// HistoryHandler serves a client's balance history.
type HistoryHandler struct {
	historyUC HistoryService
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(historyUC HistoryService) *HistoryHandler {
	return &HistoryHandler{historyUC: historyUC}
}

// List returns history rows in ascending date order, optionally bounded by
// the from and to query parameters.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	rng, err := dto.ParseDateRange(q.Get("from"), q.Get("to"))
	if err != nil {
		respondError(w, r, "invalid date range", err)
		return
	}

	rows, err := h.historyUC.List(r.Context(), chi.URLParam(r, "id"), rng, parseIntQuery(r, "limit", 100))
	if err != nil {
		respondError(w, r, "failed to list history", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.HistoryFromDomain(rows))
}
