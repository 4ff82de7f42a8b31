package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/iho/bizledger/internal/domain"
	"github.com/iho/bizledger/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	s *Store
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(s *Store) *TransactionRepository {
	return &TransactionRepository{s: s}
}

// Create inserts a transaction.
func (r *TransactionRepository) Create(_ context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	t, err := asTx(r.s, tx)
	if err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if txn.HasClient() {
		if _, ok := r.s.clients[*txn.ClientID]; !ok {
			return domain.ErrClientNotFound
		}
	}
	if txn.IsLinked() {
		if _, ok := r.s.invoices[*txn.InvoiceID]; !ok {
			return domain.ErrInvoiceNotFound
		}
	}
	if _, ok := r.s.transactions[txn.ID]; ok {
		return fmt.Errorf("memory: transaction %s already exists", txn.ID)
	}

	r.s.transactions[txn.ID] = *txn
	t.onRollback(func() { delete(r.s.transactions, txn.ID) })
	return nil
}

// GetByID retrieves a transaction by ID.
func (r *TransactionRepository) GetByID(_ context.Context, id string) (*domain.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	txn, ok := r.s.transactions[id]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	return &txn, nil
}

// GetByIDForUpdate locks the transaction until the unit of work ends.
func (r *TransactionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error) {
	t, err := asTx(r.s, tx)
	if err != nil {
		return nil, err
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if err := t.lock(ctx, "transaction:"+id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// MarkDeleted voids the transaction.
func (r *TransactionRepository) MarkDeleted(_ context.Context, tx usecase.Transaction, id string, deletedAt time.Time) error {
	t, err := asTx(r.s, tx)
	if err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	txn, ok := r.s.transactions[id]
	if !ok {
		return domain.ErrTransactionNotFound
	}

	prev := txn
	txn.DeletedAt = &deletedAt
	r.s.transactions[id] = txn
	t.onRollback(func() { r.s.transactions[id] = prev })
	return nil
}

// ListByClient lists a client's transactions ordered by date.
func (r *TransactionRepository) ListByClient(_ context.Context, clientID string) ([]*domain.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.Transaction, 0)
	for _, txn := range r.s.transactions {
		if txn.ClientID != nil && *txn.ClientID == clientID {
			out = append(out, &txn)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID < out[j].ID
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

// ListByClientTx is ListByClient inside a transaction.
func (r *TransactionRepository) ListByClientTx(ctx context.Context, tx usecase.Transaction, clientID string) ([]*domain.Transaction, error) {
	if _, err := asTx(r.s, tx); err != nil {
		return nil, err
	}
	return r.ListByClient(ctx, clientID)
}

// CountActiveByInvoice counts live transactions linked to the invoice.
func (r *TransactionRepository) CountActiveByInvoice(_ context.Context, tx usecase.Transaction, invoiceID string) (int, error) {
	if _, err := asTx(r.s, tx); err != nil {
		return 0, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, txn := range r.s.transactions {
		if txn.InvoiceID != nil && *txn.InvoiceID == invoiceID && !txn.IsDeleted() {
			n++
		}
	}
	return n, nil
}
