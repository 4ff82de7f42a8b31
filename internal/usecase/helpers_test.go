package usecase_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iho/bizledger/internal/adapter/repository/memory"
	"github.com/iho/bizledger/internal/domain"
	"github.com/iho/bizledger/internal/infrastructure/metrics"
	"github.com/iho/bizledger/internal/usecase"
)

type seqIDGenerator struct {
	n atomic.Int64
}

func (g *seqIDGenerator) Generate() string {
	return fmt.Sprintf("id-%08d", g.n.Add(1))
}

// ledger wires every use case to one in-memory store.
type ledger struct {
	store        *memory.Store
	clientRepo   *memory.ClientRepository
	invoiceRepo  *memory.InvoiceRepository
	txnRepo      *memory.TransactionRepository
	historyRepo  *memory.BalanceHistoryRepository
	outboxRepo   *memory.OutboxRepository
	auditRepo    *memory.AuditRepository
	metrics      *metrics.Metrics
	uow          *usecase.UnitOfWork
	clients      *usecase.ClientUseCase
	invoices     *usecase.InvoiceUseCase
	transactions *usecase.TransactionUseCase
	history      *usecase.HistoryUseCase
	recon        *usecase.ReconciliationUseCase
}

func newLedger(t *testing.T) *ledger {
	t.Helper()

	store := memory.New()
	l := &ledger{
		store:       store,
		clientRepo:  memory.NewClientRepository(store),
		invoiceRepo: memory.NewInvoiceRepository(store),
		txnRepo:     memory.NewTransactionRepository(store),
		historyRepo: memory.NewBalanceHistoryRepository(store),
		outboxRepo:  memory.NewOutboxRepository(store),
		auditRepo:   memory.NewAuditRepository(store),
		metrics:     metrics.New(prometheus.NewRegistry()),
	}

	idGen := &seqIDGenerator{}
	l.uow = usecase.NewUnitOfWork(store, nil)
	mutator := usecase.NewBalanceMutator(l.clientRepo, l.historyRepo, l.outboxRepo, idGen, l.metrics)

	l.clients = usecase.NewClientUseCase(l.uow, l.clientRepo, l.outboxRepo, l.auditRepo, idGen, l.metrics)
	l.invoices = usecase.NewInvoiceUseCase(l.uow, l.invoiceRepo, l.txnRepo, mutator, idGen, l.metrics)
	l.transactions = usecase.NewTransactionUseCase(l.uow, l.txnRepo, l.invoiceRepo, mutator, idGen, l.metrics)
	l.history = usecase.NewHistoryUseCase(l.clientRepo, l.historyRepo)
	l.recon = usecase.NewReconciliationUseCase(
		l.uow, l.clientRepo, l.invoiceRepo, l.txnRepo, l.historyRepo,
		memory.NewLedgerRepository(store), l.auditRepo, idGen, l.metrics,
	)

	return l
}

func (l *ledger) newClient(t *testing.T) *domain.Client {
	t.Helper()
	c, err := l.clients.CreateClient(context.Background(), usecase.CreateClientInput{
		Name: "Acme",
		Type: domain.ClientTypeCustomer,
	})
	require.NoError(t, err)
	return c
}

func (l *ledger) invoice(t *testing.T, clientID string, typ domain.InvoiceType, total, paid string) *domain.Invoice {
	t.Helper()
	inv, err := l.invoices.CreateInvoice(context.Background(), usecase.CreateInvoiceInput{
		ClientID: clientID,
		Type:     typ,
		Total:    dec(total),
		Paid:     dec(paid),
	})
	require.NoError(t, err)
	return inv
}

func (l *ledger) payment(t *testing.T, clientID string, typ domain.TransactionType, amount string, invoiceID *string) *domain.Transaction {
	t.Helper()
	txn, err := l.transactions.CreateTransaction(context.Background(), usecase.CreateTransactionInput{
		Type:      typ,
		Amount:    dec(amount),
		ClientID:  &clientID,
		InvoiceID: invoiceID,
	})
	require.NoError(t, err)
	return txn
}

func (l *ledger) balance(t *testing.T, clientID string) decimal.Decimal {
	t.Helper()
	b, err := l.clients.GetBalance(context.Background(), clientID)
	require.NoError(t, err)
	return b
}

func (l *ledger) historyRows(t *testing.T, clientID string) []*domain.BalanceHistory {
	t.Helper()
	seq, err := l.history.ListForClient(context.Background(), clientID, domain.DateRange{})
	require.NoError(t, err)

	var rows []*domain.BalanceHistory
	for row, err := range seq {
		require.NoError(t, err)
		rows = append(rows, row)
	}
	return rows
}

// requireConsistent checks that the stored balance equals both the history
// sum and the balance recomputed from invoices and transactions.
func (l *ledger) requireConsistent(t *testing.T, clientID string) {
	t.Helper()
	ctx := context.Background()

	stored := l.balance(t, clientID)

	sum := decimal.Zero
	for _, row := range l.historyRows(t, clientID) {
		sum = sum.Add(row.Amount)
	}

	invoices, err := l.invoiceRepo.ListByClient(ctx, clientID)
	require.NoError(t, err)
	txns, err := l.txnRepo.ListByClient(ctx, clientID)
	require.NoError(t, err)
	calculated, err := domain.CalculateBalance(invoices, txns)
	require.NoError(t, err)

	require.True(t, stored.Equal(sum), "stored %s != history sum %s", stored, sum)
	require.True(t, stored.Equal(calculated), "stored %s != calculated %s", stored, calculated)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func strPtr(s string) *string {
	return &s
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, dec(want).Equal(got), "expected %s, got %s", want, got)
}
