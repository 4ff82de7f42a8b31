package integration

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/iho/bizledger/internal/adapter/repository/postgres"
	"github.com/iho/bizledger/internal/infrastructure/metrics"
	"github.com/iho/bizledger/internal/usecase"
	"github.com/iho/bizledger/tests/testutil"
)

type services struct {
	db       *testutil.TestDB
	clients  *usecase.ClientUseCase
	invoices *usecase.InvoiceUseCase
	txns     *usecase.TransactionUseCase
	history  *usecase.HistoryUseCase
	recon    *usecase.ReconciliationUseCase
}

func newServices(t *testing.T) *services {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db := testutil.NewTestDB(t)
	pool := db.Pool

	m := metrics.New(prometheus.NewRegistry())
	idGen := postgres.NewULIDGenerator()
	uow := usecase.NewUnitOfWork(postgres.NewTxManager(pool), postgres.NewRetrier(5, zerolog.Nop()))

	clientRepo := postgres.NewClientRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	txnRepo := postgres.NewTransactionRepository(pool)
	historyRepo := postgres.NewBalanceHistoryRepository(pool)
	ledgerRepo := postgres.NewLedgerRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)

	mutator := usecase.NewBalanceMutator(clientRepo, historyRepo, outboxRepo, idGen, m)

	return &services{
		db:       db,
		clients:  usecase.NewClientUseCase(uow, clientRepo, outboxRepo, auditRepo, idGen, m),
		invoices: usecase.NewInvoiceUseCase(uow, invoiceRepo, txnRepo, mutator, idGen, m),
		txns:     usecase.NewTransactionUseCase(uow, txnRepo, invoiceRepo, mutator, idGen, m),
		history:  usecase.NewHistoryUseCase(clientRepo, historyRepo),
		recon:    usecase.NewReconciliationUseCase(uow, clientRepo, invoiceRepo, txnRepo, historyRepo, ledgerRepo, auditRepo, idGen, m),
	}
}
