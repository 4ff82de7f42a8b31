package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bizledger/internal/domain"
	"github.com/iho/bizledger/internal/usecase"
)

// InvoiceRepository implements usecase.InvoiceRepository.
type InvoiceRepository struct {
	s *Store
}

// NewInvoiceRepository creates a new InvoiceRepository.
func NewInvoiceRepository(s *Store) *InvoiceRepository {
	return &InvoiceRepository{s: s}
}

// Create inserts an invoice.
func (r *InvoiceRepository) Create(_ context.Context, tx usecase.Transaction, inv *domain.Invoice) error {
	t, err := asTx(r.s, tx)
	if err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.clients[inv.ClientID]; !ok {
		return domain.ErrClientNotFound
	}
	if _, ok := r.s.invoices[inv.ID]; ok {
		return fmt.Errorf("memory: invoice %s already exists", inv.ID)
	}
	r.s.invoices[inv.ID] = *inv
	t.onRollback(func() { delete(r.s.invoices, inv.ID) })
	return nil
}

// GetByID retrieves an invoice by ID.
func (r *InvoiceRepository) GetByID(_ context.Context, id string) (*domain.Invoice, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	inv, ok := r.s.invoices[id]
	if !ok {
		return nil, domain.ErrInvoiceNotFound
	}
	return &inv, nil
}

// GetByIDForUpdate locks the invoice until the transaction ends.
func (r *InvoiceRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Invoice, error) {
	t, err := asTx(r.s, tx)
	if err != nil {
		return nil, err
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if err := t.lock(ctx, "invoice:"+id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// UpdatePaid sets the paid amount.
func (r *InvoiceRepository) UpdatePaid(_ context.Context, tx usecase.Transaction, id string, paid decimal.Decimal, updatedAt time.Time) error {
	return r.update(tx, id, func(inv *domain.Invoice) {
		inv.Paid = paid
		inv.UpdatedAt = updatedAt
	})
}

// MarkDeleted voids the invoice.
func (r *InvoiceRepository) MarkDeleted(_ context.Context, tx usecase.Transaction, id string, deletedAt time.Time) error {
	return r.update(tx, id, func(inv *domain.Invoice) {
		inv.DeletedAt = &deletedAt
		inv.UpdatedAt = deletedAt
	})
}

func (r *InvoiceRepository) update(tx usecase.Transaction, id string, fn func(*domain.Invoice)) error {
	t, err := asTx(r.s, tx)
	if err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	inv, ok := r.s.invoices[id]
	if !ok {
		return domain.ErrInvoiceNotFound
	}

	prev := inv
	fn(&inv)
	r.s.invoices[id] = inv
	t.onRollback(func() { r.s.invoices[id] = prev })
	return nil
}

// ListByClient lists a client's invoices ordered by creation time.
func (r *InvoiceRepository) ListByClient(_ context.Context, clientID string) ([]*domain.Invoice, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.Invoice, 0)
	for _, inv := range r.s.invoices {
		if inv.ClientID == clientID {
			out = append(out, &inv)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// ListByClientTx is ListByClient inside a transaction.
func (r *InvoiceRepository) ListByClientTx(ctx context.Context, tx usecase.Transaction, clientID string) ([]*domain.Invoice, error) {
	if _, err := asTx(r.s, tx); err != nil {
		return nil, err
	}
	return r.ListByClient(ctx, clientID)
}
