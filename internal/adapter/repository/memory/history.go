package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/iho/bizledger/internal/domain"
	"github.com/iho/bizledger/internal/usecase"
)

// BalanceHistoryRepository implements usecase.BalanceHistoryRepository.
type BalanceHistoryRepository struct {
	s *Store
}

// NewBalanceHistoryRepository creates a new BalanceHistoryRepository.
func NewBalanceHistoryRepository(s *Store) *BalanceHistoryRepository {
	return &BalanceHistoryRepository{s: s}
}

// Create appends a history row.
func (r *BalanceHistoryRepository) Create(_ context.Context, tx usecase.Transaction, entry *domain.BalanceHistory) error {
	t, err := asTx(r.s, tx)
	if err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.clients[entry.ClientID]; !ok {
		return domain.ErrClientNotFound
	}
	if _, ok := r.s.history[entry.ID]; ok {
		return fmt.Errorf("memory: history row %s already exists", entry.ID)
	}

	r.s.history[entry.ID] = *entry
	t.onRollback(func() { delete(r.s.history, entry.ID) })
	return nil
}

// ListByClient returns one keyset page of a client's history.
func (r *BalanceHistoryRepository) ListByClient(_ context.Context, q usecase.HistoryQuery) ([]*domain.BalanceHistory, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows := make([]*domain.BalanceHistory, 0)
	for _, h := range r.s.history {
		if h.ClientID != q.ClientID || !q.Range.Contains(h.Date) {
			continue
		}
		if q.After != nil && !after(h, q.After) {
			continue
		}
		rows = append(rows, &h)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Date.Equal(rows[j].Date) {
			return rows[i].ID < rows[j].ID
		}
		return rows[i].Date.Before(rows[j].Date)
	})

	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}
	return rows, nil
}

func after(h domain.BalanceHistory, c *usecase.HistoryCursor) bool {
	if h.Date.Equal(c.Date) {
		return h.ID > c.ID
	}
	return h.Date.After(c.Date)
}

// SumByClient adds up all history amounts of a client.
func (r *BalanceHistoryRepository) SumByClient(_ context.Context, tx usecase.Transaction, clientID string) (decimal.Decimal, error) {
	if _, err := asTx(r.s, tx); err != nil {
		return decimal.Zero, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sum := decimal.Zero
	for _, h := range r.s.history {
		if h.ClientID == clientID {
			sum = sum.Add(h.Amount)
		}
	}
	return sum, nil
}

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	s *Store
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(s *Store) *LedgerRepository {
	return &LedgerRepository{s: s}
}

// Totals sums all client balances and all history amounts.
func (r *LedgerRepository) Totals(_ context.Context) (decimal.Decimal, decimal.Decimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	balances := decimal.Zero
	for _, c := range r.s.clients {
		balances = balances.Add(c.Balance)
	}

	history := decimal.Zero
	for _, h := range r.s.history {
		history = history.Add(h.Amount)
	}

	return balances, history, nil
}
