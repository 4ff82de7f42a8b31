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

// ClientRepository implements usecase.ClientRepository.
type ClientRepository struct {
	s *Store
}

// NewClientRepository creates a new ClientRepository.
func NewClientRepository(s *Store) *ClientRepository {
	return &ClientRepository{s: s}
}

// Create inserts a client.
func (r *ClientRepository) Create(_ context.Context, tx usecase.Transaction, client *domain.Client) error {
	t, err := asTx(r.s, tx)
	if err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.clients[client.ID]; ok {
		return fmt.Errorf("memory: client %s already exists", client.ID)
	}
	r.s.clients[client.ID] = *client
	t.onRollback(func() { delete(r.s.clients, client.ID) })
	return nil
}

// GetByID retrieves a client by ID.
func (r *ClientRepository) GetByID(_ context.Context, id string) (*domain.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.clients[id]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	return &c, nil
}

// GetByIDForUpdate locks the client until the transaction ends.
func (r *ClientRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Client, error) {
	t, err := asTx(r.s, tx)
	if err != nil {
		return nil, err
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if err := t.lock(ctx, "client:"+id); err != nil {
		return nil, err
	}

	// re-read: the row may have changed or gone while we waited
	return r.GetByID(ctx, id)
}

// UpdateBalance writes the balance if the stored version matches.
func (r *ClientRepository) UpdateBalance(_ context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, expectedVersion int64, updatedAt time.Time) error {
	t, err := asTx(r.s, tx)
	if err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.clients[id]
	if !ok {
		return domain.ErrClientNotFound
	}
	if c.Version != expectedVersion {
		return fmt.Errorf("%w: client %s at version %d, expected %d", domain.ErrConcurrentModification, id, c.Version, expectedVersion)
	}

	prev := c
	c.Balance = balance
	c.Version++
	c.UpdatedAt = updatedAt
	r.s.clients[id] = c
	t.onRollback(func() { r.s.clients[id] = prev })
	return nil
}

// SetActive flips the active flag.
func (r *ClientRepository) SetActive(_ context.Context, tx usecase.Transaction, id string, active bool, updatedAt time.Time) error {
	t, err := asTx(r.s, tx)
	if err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.clients[id]
	if !ok {
		return domain.ErrClientNotFound
	}

	prev := c
	c.Active = active
	c.UpdatedAt = updatedAt
	r.s.clients[id] = c
	t.onRollback(func() { r.s.clients[id] = prev })
	return nil
}

// Delete removes the client together with its invoices, transactions and
// balance history.
func (r *ClientRepository) Delete(_ context.Context, tx usecase.Transaction, id string) error {
	t, err := asTx(r.s, tx)
	if err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.clients[id]
	if !ok {
		return domain.ErrClientNotFound
	}
	delete(r.s.clients, id)
	t.onRollback(func() { r.s.clients[id] = c })

	for hid, h := range r.s.history {
		if h.ClientID == id {
			delete(r.s.history, hid)
			t.onRollback(func() { r.s.history[hid] = h })
		}
	}
	for iid, inv := range r.s.invoices {
		if inv.ClientID == id {
			delete(r.s.invoices, iid)
			t.onRollback(func() { r.s.invoices[iid] = inv })
		}
	}
	for tid, txn := range r.s.transactions {
		if txn.ClientID != nil && *txn.ClientID == id {
			delete(r.s.transactions, tid)
			t.onRollback(func() { r.s.transactions[tid] = txn })
		}
	}

	return nil
}

// List lists clients ordered by creation time.
func (r *ClientRepository) List(_ context.Context, limit, offset int) ([]*domain.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all := make([]domain.Client, 0, len(r.s.clients))
	for _, c := range r.s.clients {
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	out := make([]*domain.Client, 0, limit)
	for i := offset; i < len(all) && len(out) < limit; i++ {
		c := all[i]
		out = append(out, &c)
	}
	return out, nil
}
