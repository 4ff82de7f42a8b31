package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/bizledger/internal/domain"
	"github.com/iho/bizledger/internal/usecase"
)

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

type clientServiceStub struct {
	createFn     func(ctx context.Context, input usecase.CreateClientInput) (*domain.Client, error)
	getFn        func(ctx context.Context, id string) (*domain.Client, error)
	balanceFn    func(ctx context.Context, id string) (decimal.Decimal, error)
	listFn       func(ctx context.Context, input usecase.ListClientsInput) ([]*domain.Client, error)
	deactivateFn func(ctx context.Context, id string) (*domain.Client, error)
	deleteFn     func(ctx context.Context, id string) error
}

func (s *clientServiceStub) CreateClient(ctx context.Context, input usecase.CreateClientInput) (*domain.Client, error) {
	return s.createFn(ctx, input)
}

func (s *clientServiceStub) GetClient(ctx context.Context, id string) (*domain.Client, error) {
	return s.getFn(ctx, id)
}

func (s *clientServiceStub) GetBalance(ctx context.Context, id string) (decimal.Decimal, error) {
	return s.balanceFn(ctx, id)
}

func (s *clientServiceStub) ListClients(ctx context.Context, input usecase.ListClientsInput) ([]*domain.Client, error) {
	return s.listFn(ctx, input)
}

func (s *clientServiceStub) DeactivateClient(ctx context.Context, id string) (*domain.Client, error) {
	return s.deactivateFn(ctx, id)
}

func (s *clientServiceStub) DeleteClient(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

type invoiceServiceStub struct {
	createFn func(ctx context.Context, input usecase.CreateInvoiceInput) (*domain.Invoice, error)
	getFn    func(ctx context.Context, id string) (*domain.Invoice, error)
	deleteFn func(ctx context.Context, id string) (*domain.Invoice, error)
	listFn   func(ctx context.Context, clientID string) ([]*domain.Invoice, error)
}

func (s *invoiceServiceStub) CreateInvoice(ctx context.Context, input usecase.CreateInvoiceInput) (*domain.Invoice, error) {
	return s.createFn(ctx, input)
}

func (s *invoiceServiceStub) GetInvoice(ctx context.Context, id string) (*domain.Invoice, error) {
	return s.getFn(ctx, id)
}

func (s *invoiceServiceStub) DeleteInvoice(ctx context.Context, id string) (*domain.Invoice, error) {
	return s.deleteFn(ctx, id)
}

func (s *invoiceServiceStub) ListByClient(ctx context.Context, clientID string) ([]*domain.Invoice, error) {
	return s.listFn(ctx, clientID)
}

type transactionServiceStub struct {
	createFn func(ctx context.Context, input usecase.CreateTransactionInput) (*domain.Transaction, error)
	getFn    func(ctx context.Context, id string) (*domain.Transaction, error)
	deleteFn func(ctx context.Context, id string) (*domain.Transaction, error)
	listFn   func(ctx context.Context, clientID string) ([]*domain.Transaction, error)
}

func (s *transactionServiceStub) CreateTransaction(ctx context.Context, input usecase.CreateTransactionInput) (*domain.Transaction, error) {
	return s.createFn(ctx, input)
}

func (s *transactionServiceStub) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return s.getFn(ctx, id)
}

func (s *transactionServiceStub) DeleteTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return s.deleteFn(ctx, id)
}

func (s *transactionServiceStub) ListByClient(ctx context.Context, clientID string) ([]*domain.Transaction, error) {
	return s.listFn(ctx, clientID)
}

type historyServiceStub struct {
	listFn func(ctx context.Context, clientID string, rng domain.DateRange, limit int) ([]*domain.BalanceHistory, error)
}

func (s *historyServiceStub) List(ctx context.Context, clientID string, rng domain.DateRange, limit int) ([]*domain.BalanceHistory, error) {
	return s.listFn(ctx, clientID, rng, limit)
}

type reconciliationServiceStub struct {
	reconcileFn func(ctx context.Context, clientID string) (*usecase.ReconciliationResult, error)
	reportFn    func(ctx context.Context) (*usecase.ReconciliationReport, error)
	auditFn     func(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

func (s *reconciliationServiceStub) ReconcileClient(ctx context.Context, clientID string) (*usecase.ReconciliationResult, error) {
	return s.reconcileFn(ctx, clientID)
}

func (s *reconciliationServiceStub) CachedReconciliationReport(ctx context.Context) (*usecase.ReconciliationReport, error) {
	return s.reportFn(ctx)
}

func (s *reconciliationServiceStub) ListDiscrepancies(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	return s.auditFn(ctx, filter)
}
