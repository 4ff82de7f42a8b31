package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/bizledger/internal/domain"
	"github.com/iho/bizledger/internal/usecase"
)

var clientColumns = []string{"id", "name", "type", "balance", "active", "version", "created_at", "updated_at"}

func beginMockTx(t *testing.T, pool pgxmock.PgxPoolIface) usecase.Transaction {
	t.Helper()
	pool.ExpectBegin()
	tx, err := newTxManagerWithPool(pool).Begin(context.Background())
	require.NoError(t, err)
	return tx
}

func TestClientRepositoryGetByIDForUpdate(t *testing.T) {
	pool := newMockPool(t)
	tx := beginMockTx(t, pool)
	now := pgtype.Timestamptz{Time: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), Valid: true}

	pool.ExpectQuery(`FROM clients\s+WHERE id = \$1\s+FOR UPDATE`).
		WithArgs("c-1").
		WillReturnRows(pgxmock.NewRows(clientColumns).
			AddRow("c-1", "Acme", "customer", "150.25", true, int64(3), now, now))

	repo := NewClientRepository(pool)
	client, err := repo.GetByIDForUpdate(context.Background(), tx, "c-1")
	require.NoError(t, err)

	assert.Equal(t, "Acme", client.Name)
	assert.Equal(t, domain.ClientTypeCustomer, client.Type)
	assert.True(t, client.Balance.Equal(decimal.RequireFromString("150.25")), "balance %s", client.Balance)
	assert.Equal(t, int64(3), client.Version)
	assert.True(t, client.Active)
	assertExpectations(t, pool)
}

func TestClientRepositoryGetByIDNotFound(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery(`FROM clients\s+WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := NewClientRepository(pool).GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrClientNotFound)
	assertExpectations(t, pool)
}

func TestClientRepositoryUpdateBalanceVersionGuard(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{name: "version matches", affected: 1},
		{name: "stale version", affected: 0, wantErr: domain.ErrConcurrentModification},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := newMockPool(t)
			tx := beginMockTx(t, pool)

			pool.ExpectExec(`UPDATE clients\s+SET balance = \$2, version = version \+ 1`).
				WithArgs("c-1", pgxmock.AnyArg(), pgxmock.AnyArg(), int64(4)).
				WillReturnResult(pgxmock.NewResult("UPDATE", tt.affected))

			err := NewClientRepository(pool).UpdateBalance(context.Background(), tx, "c-1",
				decimal.NewFromInt(500), 4, time.Now())

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assertExpectations(t, pool)
		})
	}
}

func TestClientRepositoryDeleteMissing(t *testing.T) {
	pool := newMockPool(t)
	tx := beginMockTx(t, pool)

	pool.ExpectExec(`DELETE FROM clients WHERE id = \$1`).
		WithArgs("c-404").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := NewClientRepository(pool).Delete(context.Background(), tx, "c-404")
	assert.ErrorIs(t, err, domain.ErrClientNotFound)
	assertExpectations(t, pool)
}

func TestInvoiceRepositoryMarkDeletedTwice(t *testing.T) {
	pool := newMockPool(t)
	tx := beginMockTx(t, pool)

	pool.ExpectExec(`UPDATE invoices\s+SET deleted_at = \$2`).
		WithArgs("inv-1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := NewInvoiceRepository(pool).MarkDeleted(context.Background(), tx, "inv-1", time.Now())
	assert.ErrorIs(t, err, domain.ErrAlreadyDeleted)
	assertExpectations(t, pool)
}

func TestTransactionRepositoryCountActiveByInvoice(t *testing.T) {
	pool := newMockPool(t)
	tx := beginMockTx(t, pool)

	pool.ExpectQuery(`SELECT COUNT\(\*\) FROM transactions`).
		WithArgs(pgtype.Text{String: "inv-1", Valid: true}).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(2)))

	n, err := NewTransactionRepository(pool).CountActiveByInvoice(context.Background(), tx, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assertExpectations(t, pool)
}

func TestBalanceHistoryRepositorySumByClient(t *testing.T) {
	pool := newMockPool(t)
	tx := beginMockTx(t, pool)

	pool.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\)::numeric AS total`).
		WithArgs("c-1").
		WillReturnRows(pgxmock.NewRows([]string{"total"}).AddRow("-42.5000"))

	sum, err := NewBalanceHistoryRepository(pool).SumByClient(context.Background(), tx, "c-1")
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.RequireFromString("-42.5")), "sum %s", sum)
	assertExpectations(t, pool)
}

func TestLedgerRepositoryTotals(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery(`AS total_balance`).
		WillReturnRows(pgxmock.NewRows([]string{"total_balance", "total_history"}).
			AddRow("1200.0000", "1200.0000"))

	balances, history, err := NewLedgerRepository(pool).Totals(context.Background())
	require.NoError(t, err)
	assert.True(t, balances.Equal(decimal.NewFromInt(1200)))
	assert.True(t, history.Equal(balances))
	assertExpectations(t, pool)
}

func TestRepositoriesRejectForeignTransaction(t *testing.T) {
	pool := newMockPool(t)
	foreign := foreignTx{}

	_, err := NewClientRepository(pool).GetByIDForUpdate(context.Background(), foreign, "c-1")
	assert.ErrorIs(t, err, ErrForeignTx)

	err = NewBalanceHistoryRepository(pool).Create(context.Background(), foreign, &domain.BalanceHistory{})
	assert.ErrorIs(t, err, ErrForeignTx)
}

type foreignTx struct{}

func (foreignTx) Commit(context.Context) error   { return nil }
func (foreignTx) Rollback(context.Context) error { return nil }

func TestNumericRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "1", "-1", "123.4567", "-0.0001", "99999999999.99"} {
		d := decimal.RequireFromString(s)
		got := numericToDecimal(decimalToNumeric(d))
		if !got.Equal(d) {
			t.Errorf("round trip %s: got %s", s, got)
		}
	}

	if !numericToDecimal(pgtype.Numeric{}).Equal(decimal.Zero) {
		t.Errorf("NULL numeric should map to zero")
	}
}

func TestNullableHelpers(t *testing.T) {
	assert.False(t, ptrToText(nil).Valid)
	empty := ""
	assert.False(t, ptrToText(&empty).Valid)

	id := "inv-1"
	got := textToPtr(ptrToText(&id))
	require.NotNil(t, got)
	assert.Equal(t, id, *got)

	assert.False(t, optionalTimestamptz(time.Time{}).Valid)
	assert.Nil(t, timestamptzToPtr(pgtype.Timestamptz{}))
}

func TestErrForeignTxMessage(t *testing.T) {
	_, err := queriesFor(nil)
	assert.True(t, errors.Is(err, ErrForeignTx))
}
