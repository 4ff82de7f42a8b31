package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/bizledger/internal/domain"
	"github.com/iho/bizledger/internal/usecase"
)

func seedClient(t *testing.T, s *Store, id string) {
	t.Helper()

	ctx := context.Background()
	tx, err := s.Begin(ctx)
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, NewClientRepository(s).Create(ctx, tx, &domain.Client{
		ID:        id,
		Name:      "client " + id,
		Type:      domain.ClientTypeCustomer,
		Balance:   decimal.Zero,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}))
	require.NoError(t, tx.Commit(ctx))
}

func TestRollbackUndoesWrites(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedClient(t, s, "c-1")

	clients := NewClientRepository(s)
	history := NewBalanceHistoryRepository(s)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)

	c, err := clients.GetByIDForUpdate(ctx, tx, "c-1")
	require.NoError(t, err)
	require.NoError(t, clients.UpdateBalance(ctx, tx, "c-1", decimal.NewFromInt(10), c.Version, time.Now()))
	require.NoError(t, history.Create(ctx, tx, &domain.BalanceHistory{
		ID:       "h-1",
		ClientID: "c-1",
		Amount:   decimal.NewFromInt(10),
		Date:     time.Now(),
	}))

	require.NoError(t, tx.Rollback(ctx))

	got, err := clients.GetByID(ctx, "c-1")
	require.NoError(t, err)
	assert.True(t, got.Balance.IsZero())
	assert.Equal(t, int64(0), got.Version)

	rows, err := history.ListByClient(ctx, usecase.HistoryQuery{ClientID: "c-1"})
	require.NoError(t, err)
	assert.Empty(t, rows)

	assert.NoError(t, tx.Rollback(ctx), "second rollback is a no-op")
	assert.ErrorIs(t, tx.Commit(ctx), ErrTxClosed)
}

func TestUpdateBalanceRejectsStaleVersion(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedClient(t, s, "c-1")

	clients := NewClientRepository(s)
	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	err = clients.UpdateBalance(ctx, tx, "c-1", decimal.NewFromInt(1), 7, time.Now())
	assert.ErrorIs(t, err, domain.ErrConcurrentModification)
}

func TestRowLockBlocksUntilCommit(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedClient(t, s, "c-1")

	clients := NewClientRepository(s)

	first, err := s.Begin(ctx)
	require.NoError(t, err)
	_, err = clients.GetByIDForUpdate(ctx, first, "c-1")
	require.NoError(t, err)

	second, err := s.Begin(ctx)
	require.NoError(t, err)
	defer second.Rollback(ctx)

	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = clients.GetByIDForUpdate(waitCtx, second, "c-1")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	acquired := make(chan error, 1)
	go func() {
		_, err := clients.GetByIDForUpdate(ctx, second, "c-1")
		acquired <- err
	}()

	require.NoError(t, first.Commit(ctx))

	select {
	case err := <-acquired:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("lock was not released on commit")
	}
}

func TestForeignTransactionRejected(t *testing.T) {
	ctx := context.Background()
	a, b := New(), New()
	seedClient(t, a, "c-1")

	tx, err := b.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	_, err = NewClientRepository(a).GetByIDForUpdate(ctx, tx, "c-1")
	assert.ErrorIs(t, err, ErrForeignTx)
}

func TestDeleteClientCascades(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedClient(t, s, "c-1")
	seedClient(t, s, "c-2")

	clients := NewClientRepository(s)
	invoices := NewInvoiceRepository(s)
	history := NewBalanceHistoryRepository(s)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	for _, cid := range []string{"c-1", "c-2"} {
		require.NoError(t, invoices.Create(ctx, tx, &domain.Invoice{
			ID:       "inv-" + cid,
			ClientID: cid,
			Type:     domain.InvoiceTypeSale,
			Total:    decimal.NewFromInt(5),
			Paid:     decimal.Zero,
		}))
		require.NoError(t, history.Create(ctx, tx, &domain.BalanceHistory{
			ID:       "h-" + cid,
			ClientID: cid,
			Amount:   decimal.NewFromInt(5),
			Date:     time.Now(),
		}))
	}
	require.NoError(t, tx.Commit(ctx))

	tx, err = s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, clients.Delete(ctx, tx, "c-1"))
	require.NoError(t, tx.Commit(ctx))

	_, err = clients.GetByID(ctx, "c-1")
	assert.ErrorIs(t, err, domain.ErrClientNotFound)
	_, err = invoices.GetByID(ctx, "inv-c-1")
	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)

	balances, historySum, err := NewLedgerRepository(s).Totals(ctx)
	require.NoError(t, err)
	assert.True(t, balances.IsZero())
	assert.True(t, historySum.Equal(decimal.NewFromInt(5)), "only c-2 history remains")
}

func TestHistoryKeysetPaging(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedClient(t, s, "c-1")

	history := NewBalanceHistoryRepository(s)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	for i, id := range []string{"h-a", "h-b", "h-c", "h-d"} {
		require.NoError(t, history.Create(ctx, tx, &domain.BalanceHistory{
			ID:       id,
			ClientID: "c-1",
			Amount:   decimal.NewFromInt(1),
			Date:     base.Add(time.Duration(i/2) * time.Hour),
		}))
	}
	require.NoError(t, tx.Commit(ctx))

	page, err := history.ListByClient(ctx, usecase.HistoryQuery{ClientID: "c-1", Limit: 3})
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, []string{"h-a", "h-b", "h-c"}, []string{page[0].ID, page[1].ID, page[2].ID})

	last := page[2]
	page, err = history.ListByClient(ctx, usecase.HistoryQuery{
		ClientID: "c-1",
		After:    &usecase.HistoryCursor{Date: last.Date, ID: last.ID},
		Limit:    3,
	})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "h-d", page[0].ID)

	page, err = history.ListByClient(ctx, usecase.HistoryQuery{
		ClientID: "c-1",
		Range:    domain.DateRange{From: base.Add(30 * time.Minute)},
	})
	require.NoError(t, err)
	assert.Len(t, page, 2)
}
