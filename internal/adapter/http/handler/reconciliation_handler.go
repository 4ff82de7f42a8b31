package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/bizledger/internal/adapter/http/dto"
	"github.com/iho/bizledger/internal/domain"
	"github.com/iho/bizledger/internal/usecase"
)

// ReconciliationService defines the behavior needed by ReconciliationHandler.
type ReconciliationService interface {
	ReconcileClient(ctx context.Context, clientID string) (*usecase.ReconciliationResult, error)
	CachedReconciliationReport(ctx context.Context) (*usecase.ReconciliationReport, error)
	ListDiscrepancies(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// ReconciliationHandler exposes balance reconciliation to operators.
type ReconciliationHandler struct {
	reconUC ReconciliationService
}

// NewReconciliationHandler creates a new ReconciliationHandler.
func NewReconciliationHandler(reconUC ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{reconUC: reconUC}
}

// Client reconciles one client. A mismatch is reported as 409 with the
// computed figures in the body.
func (h *ReconciliationHandler) Client(w http.ResponseWriter, r *http.Request) {
	result, err := h.reconUC.ReconcileClient(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if result != nil && errors.Is(err, domain.ErrInconsistentBalance) {
			writeJSON(w, http.StatusConflict, dto.ReconciliationFromUseCase(result))
			return
		}
		respondError(w, r, "failed to reconcile client", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromUseCase(result))
}

// Report reconciles every client and the ledger totals.
func (h *ReconciliationHandler) Report(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconUC.CachedReconciliationReport(r.Context())
	if err != nil {
		respondError(w, r, "failed to generate reconciliation report", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReportFromUseCase(report))
}

// Audit lists recorded reconciliation failures.
func (h *ReconciliationHandler) Audit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	logs, err := h.reconUC.ListDiscrepancies(r.Context(), domain.AuditFilter{
		Action:     q.Get("action"),
		ResourceID: q.Get("client_id"),
		Status:     q.Get("status"),
		Limit:      parseIntQuery(r, "limit", 50),
		Offset:     parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		respondError(w, r, "failed to list audit logs", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AuditLogsFromDomain(logs))
}
