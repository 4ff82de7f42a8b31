package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/bizledger/internal/adapter/http/dto"
	"github.com/iho/bizledger/internal/domain"
	"github.com/iho/bizledger/internal/usecase"
)

// InvoiceService defines the behavior needed by InvoiceHandler.
type InvoiceService interface {
	CreateInvoice(ctx context.Context, input usecase.CreateInvoiceInput) (*domain.Invoice, error)
	GetInvoice(ctx context.Context, id string) (*domain.Invoice, error)
	DeleteInvoice(ctx context.Context, id string) (*domain.Invoice, error)
	ListByClient(ctx context.Context, clientID string) ([]*domain.Invoice, error)
}

// InvoiceHandler handles invoice-related HTTP requests.
type InvoiceHandler struct {
	invoiceUC InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoiceUC InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceUC: invoiceUC}
}

// Create issues an invoice and moves the client balance by its due amount.
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateInvoiceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		respondError(w, r, "invalid invoice", err)
		return
	}

	invoice, err := h.invoiceUC.CreateInvoice(r.Context(), input)
	if err != nil {
		respondError(w, r, "failed to create invoice", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.InvoiceFromDomain(invoice))
}

// Get retrieves an invoice by ID.
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.invoiceUC.GetInvoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, "failed to get invoice", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.InvoiceFromDomain(invoice))
}

// Delete voids an invoice and reverses its balance effect.
func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.invoiceUC.DeleteInvoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, "failed to delete invoice", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.InvoiceFromDomain(invoice))
}

// ListByClient lists the invoices of a client.
func (h *InvoiceHandler) ListByClient(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.invoiceUC.ListByClient(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, "failed to list invoices", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.InvoicesFromDomain(invoices))
}
