package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/bizledger/internal/adapter/http/dto"
	"github.com/iho/bizledger/internal/domain"
	"github.com/iho/bizledger/internal/usecase"
)

// ClientService defines the behavior needed by ClientHandler.
type ClientService interface {
	CreateClient(ctx context.Context, input usecase.CreateClientInput) (*domain.Client, error)
	GetClient(ctx context.Context, id string) (*domain.Client, error)
	GetBalance(ctx context.Context, id string) (decimal.Decimal, error)
	ListClients(ctx context.Context, input usecase.ListClientsInput) ([]*domain.Client, error)
	DeactivateClient(ctx context.Context, id string) (*domain.Client, error)
	DeleteClient(ctx context.Context, id string) error
}

// ClientHandler handles client-related HTTP requests.
type ClientHandler struct {
	clientUC ClientService
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(clientUC ClientService) *ClientHandler {
	return &ClientHandler{clientUC: clientUC}
}

// Create creates a new client with a zero balance.
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateClientRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	client, err := h.clientUC.CreateClient(r.Context(), req.ToUseCaseInput())
	if err != nil {
		respondError(w, r, "failed to create client", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ClientFromDomain(client))
}

// Get retrieves a client by ID.
func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	client, err := h.clientUC.GetClient(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, "failed to get client", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ClientFromDomain(client))
}

// List lists clients.
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	clients, err := h.clientUC.ListClients(r.Context(), usecase.ListClientsInput{
		Limit:  parseIntQuery(r, "limit", 50),
		Offset: parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		respondError(w, r, "failed to list clients", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ClientsFromDomain(clients))
}

// Balance returns the stored balance of a client.
func (h *ClientHandler) Balance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	balance, err := h.clientUC.GetBalance(r.Context(), id)
	if err != nil {
		respondError(w, r, "failed to get balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{ClientID: id, Balance: balance})
}

// Deactivate marks a client inactive.
func (h *ClientHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	client, err := h.clientUC.DeactivateClient(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, "failed to deactivate client", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ClientFromDomain(client))
}

// Delete removes a client together with its invoices, transactions and history.
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.clientUC.DeleteClient(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, "failed to delete client", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
