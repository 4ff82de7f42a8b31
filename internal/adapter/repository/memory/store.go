// Package memory provides an in-memory implementation of the use case
// repositories, used for tests and for running the service without Postgres.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/iho/bizledger/internal/domain"
	"github.com/iho/bizledger/internal/usecase"
)

// ErrForeignTx is returned when a repository is handed a transaction that
// was not started by the same store.
var ErrForeignTx = errors.New("memory: transaction does not belong to this store")

// ErrTxClosed is returned when committing a finished transaction.
var ErrTxClosed = errors.New("memory: transaction already closed")

// Store holds all records. Writes made inside a transaction are visible
// immediately and undone on rollback; row locks taken with the ForUpdate
// methods are held until the transaction ends, like SELECT ... FOR UPDATE.
type Store struct {
	mu           sync.RWMutex
	clients      map[string]domain.Client
	invoices     map[string]domain.Invoice
	transactions map[string]domain.Transaction
	history      map[string]domain.BalanceHistory
	outbox       map[string]domain.OutboxEvent
	audit        []domain.AuditLog

	lockMu sync.Mutex
	locks  map[string]chan struct{}
}

// New constructs an empty in-memory store.
func New() *Store {
	return &Store{
		clients:      make(map[string]domain.Client),
		invoices:     make(map[string]domain.Invoice),
		transactions: make(map[string]domain.Transaction),
		history:      make(map[string]domain.BalanceHistory),
		outbox:       make(map[string]domain.OutboxEvent),
		locks:        make(map[string]chan struct{}),
	}
}

// Begin implements usecase.TransactionManager.
func (s *Store) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Tx{store: s, held: make(map[string]bool)}, nil
}

func (s *Store) rowLock(key string) chan struct{} {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()

	ch, ok := s.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[key] = ch
	}
	return ch
}

// Tx is an in-memory transaction. It must be used by one goroutine.
type Tx struct {
	store *Store
	held  map[string]bool
	order []string
	undo  []func()
	done  bool
}

func (t *Tx) lock(ctx context.Context, key string) error {
	if t.held[key] {
		return nil
	}

	select {
	case t.store.rowLock(key) <- struct{}{}:
		t.held[key] = true
		t.order = append(t.order, key)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// onRollback registers fn to run, in reverse order, if the transaction is
// rolled back. Callers hold store.mu for writing.
func (t *Tx) onRollback(fn func()) {
	t.undo = append(t.undo, fn)
}

func (t *Tx) release() {
	for _, key := range t.order {
		<-t.store.rowLock(key)
	}
	t.held = nil
	t.order = nil
	t.done = true
}

// Commit implements usecase.Transaction.
func (t *Tx) Commit(_ context.Context) error {
	if t.done {
		return ErrTxClosed
	}
	t.undo = nil
	t.release()
	return nil
}

// Rollback implements usecase.Transaction. Rolling back a finished
// transaction is a no-op.
func (t *Tx) Rollback(_ context.Context) error {
	if t.done {
		return nil
	}

	t.store.mu.Lock()
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.store.mu.Unlock()

	t.undo = nil
	t.release()
	return nil
}

func asTx(s *Store, tx usecase.Transaction) (*Tx, error) {
	t, ok := tx.(*Tx)
	if !ok || t.store != s {
		return nil, ErrForeignTx
	}
	if t.done {
		return nil, ErrTxClosed
	}
	return t, nil
}
