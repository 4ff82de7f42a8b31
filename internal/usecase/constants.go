package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking the client row lock
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// HistoryPageSize is the number of history rows fetched per keyset page.
	HistoryPageSize = 100

	// ReconciliationBatchSize is the number of clients loaded per page when
	// reconciling the whole ledger.
	ReconciliationBatchSize = 500
)
