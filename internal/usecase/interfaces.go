package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bizledger/internal/domain"
)

// ClientRepository defines data access for clients.
type ClientRepository interface {
	Create(ctx context.Context, tx Transaction, client *domain.Client) error
	GetByID(ctx context.Context, id string) (*domain.Client, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Client, error)
	// UpdateBalance writes balance and bumps the version, but only if the
	// stored version still equals expectedVersion. Otherwise it returns
	// domain.ErrConcurrentModification.
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, expectedVersion int64, updatedAt time.Time) error
	SetActive(ctx context.Context, tx Transaction, id string, active bool, updatedAt time.Time) error
	Delete(ctx context.Context, tx Transaction, id string) error
	List(ctx context.Context, limit, offset int) ([]*domain.Client, error)
}

// InvoiceRepository defines data access for invoices.
type InvoiceRepository interface {
	Create(ctx context.Context, tx Transaction, invoice *domain.Invoice) error
	GetByID(ctx context.Context, id string) (*domain.Invoice, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Invoice, error)
	UpdatePaid(ctx context.Context, tx Transaction, id string, paid decimal.Decimal, updatedAt time.Time) error
	MarkDeleted(ctx context.Context, tx Transaction, id string, deletedAt time.Time) error
	ListByClient(ctx context.Context, clientID string) ([]*domain.Invoice, error)
	ListByClientTx(ctx context.Context, tx Transaction, clientID string) ([]*domain.Invoice, error)
}

// TransactionRepository defines data access for treasury transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, txn *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Transaction, error)
	MarkDeleted(ctx context.Context, tx Transaction, id string, deletedAt time.Time) error
	ListByClient(ctx context.Context, clientID string) ([]*domain.Transaction, error)
	ListByClientTx(ctx context.Context, tx Transaction, clientID string) ([]*domain.Transaction, error)
	// CountActiveByInvoice counts live transactions linked to the invoice.
	CountActiveByInvoice(ctx context.Context, tx Transaction, invoiceID string) (int, error)
}

// HistoryCursor is the keyset position of a history row.
type HistoryCursor struct {
	Date time.Time
	ID   string
}

// HistoryQuery selects one page of a client's balance history in ascending
// (date, id) order, strictly after After when it is set.
type HistoryQuery struct {
	ClientID string
	Range    domain.DateRange
	After    *HistoryCursor
	Limit    int
}

// BalanceHistoryRepository defines data access for the append-only balance ledger.
type BalanceHistoryRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.BalanceHistory) error
	ListByClient(ctx context.Context, query HistoryQuery) ([]*domain.BalanceHistory, error)
	SumByClient(ctx context.Context, tx Transaction, clientID string) (decimal.Decimal, error)
}

// LedgerRepository defines ledger-wide aggregate queries.
type LedgerRepository interface {
	// Totals returns the sum of all stored client balances and the sum of
	// all balance history amounts.
	Totals(ctx context.Context) (totalBalance, totalHistory decimal.Decimal, err error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation that failed on a transient conflict.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// ErrCacheMiss is returned by Cache.Get for absent or expired keys.
var ErrCacheMiss = errors.New("cache miss")

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key whose request did not complete, so it can be retried.
	Release(ctx context.Context, key string) error
}
