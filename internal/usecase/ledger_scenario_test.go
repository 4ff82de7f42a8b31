package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/bizledger/internal/domain"
	"github.com/iho/bizledger/internal/usecase"
)

func TestLedger_InvoicePaymentVoidScenario(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	c := l.newClient(t)

	requireDecimal(t, "0", l.balance(t, c.ID))

	l.invoice(t, c.ID, domain.InvoiceTypeSale, "500", "0")
	requireDecimal(t, "500", l.balance(t, c.ID))

	income := l.payment(t, c.ID, domain.TransactionTypeIncome, "200", nil)
	requireDecimal(t, "300", l.balance(t, c.ID))

	_, err := l.transactions.DeleteTransaction(ctx, income.ID)
	require.NoError(t, err)
	requireDecimal(t, "500", l.balance(t, c.ID))

	rows := l.historyRows(t, c.ID)
	require.Len(t, rows, 3)

	requireDecimal(t, "500", rows[0].Amount)
	assert.Equal(t, domain.HistoryTypeDebit, rows[0].Type)
	requireDecimal(t, "0", rows[0].PreviousBalance)
	requireDecimal(t, "500", rows[0].NewBalance)

	requireDecimal(t, "-200", rows[1].Amount)
	assert.Equal(t, domain.HistoryTypeCredit, rows[1].Type)
	require.NotNil(t, rows[1].TransactionID)
	assert.Equal(t, income.ID, *rows[1].TransactionID)

	requireDecimal(t, "200", rows[2].Amount)
	assert.Equal(t, domain.HistoryTypeDebit, rows[2].Type)
	requireDecimal(t, "300", rows[2].PreviousBalance)
	requireDecimal(t, "500", rows[2].NewBalance)

	l.requireConsistent(t, c.ID)
}

func TestLedger_InvoiceRoundTrip(t *testing.T) {
	l := newLedger(t)
	c := l.newClient(t)
	l.invoice(t, c.ID, domain.InvoiceTypePurchase, "80", "0")
	before := l.balance(t, c.ID)

	inv := l.invoice(t, c.ID, domain.InvoiceTypeSale, "1000", "300")
	requireDecimal(t, before.Add(dec("700")).String(), l.balance(t, c.ID))

	voided, err := l.invoices.DeleteInvoice(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.True(t, voided.IsDeleted())

	assert.True(t, before.Equal(l.balance(t, c.ID)), "balance not restored: %s", l.balance(t, c.ID))
	l.requireConsistent(t, c.ID)
}

func TestLedger_PurchaseAndExpense(t *testing.T) {
	l := newLedger(t)
	c := l.newClient(t)

	l.invoice(t, c.ID, domain.InvoiceTypePurchase, "400", "0")
	requireDecimal(t, "-400", l.balance(t, c.ID))

	l.payment(t, c.ID, domain.TransactionTypeExpense, "150", nil)
	requireDecimal(t, "-250", l.balance(t, c.ID))

	l.requireConsistent(t, c.ID)
}

func TestLedger_ZeroDueInvoiceRecordsZeroRow(t *testing.T) {
	l := newLedger(t)
	c := l.newClient(t)

	inv := l.invoice(t, c.ID, domain.InvoiceTypeSale, "250", "250")
	requireDecimal(t, "0", l.balance(t, c.ID))

	rows := l.historyRows(t, c.ID)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Amount.IsZero())
	require.NotNil(t, rows[0].InvoiceID)
	assert.Equal(t, inv.ID, *rows[0].InvoiceID)
}

func TestLedger_LinkedPayment(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	c := l.newClient(t)

	inv := l.invoice(t, c.ID, domain.InvoiceTypeSale, "500", "0")
	payment := l.payment(t, c.ID, domain.TransactionTypeIncome, "200", &inv.ID)

	requireDecimal(t, "300", l.balance(t, c.ID))
	stored, err := l.invoices.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	requireDecimal(t, "200", stored.Paid)
	l.requireConsistent(t, c.ID)

	_, err = l.invoices.DeleteInvoice(ctx, inv.ID)
	require.ErrorIs(t, err, domain.ErrInvoiceHasPayments)

	_, err = l.transactions.DeleteTransaction(ctx, payment.ID)
	require.NoError(t, err)
	requireDecimal(t, "500", l.balance(t, c.ID))
	stored, err = l.invoices.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	requireDecimal(t, "0", stored.Paid)
	l.requireConsistent(t, c.ID)

	_, err = l.invoices.DeleteInvoice(ctx, inv.ID)
	require.NoError(t, err)
	requireDecimal(t, "0", l.balance(t, c.ID))
	l.requireConsistent(t, c.ID)
}

func TestLedger_RejectedLinkedPaymentsLeaveNoTrace(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	c := l.newClient(t)
	other := l.newClient(t)

	sale := l.invoice(t, c.ID, domain.InvoiceTypeSale, "100", "0")
	purchase := l.invoice(t, c.ID, domain.InvoiceTypePurchase, "40", "0")
	foreign := l.invoice(t, other.ID, domain.InvoiceTypeSale, "100", "0")
	rowsBefore := len(l.historyRows(t, c.ID))

	tests := []struct {
		name      string
		input     usecase.CreateTransactionInput
		expectErr error
	}{
		{
			name:      "income against purchase invoice",
			input:     usecase.CreateTransactionInput{Type: domain.TransactionTypeIncome, Amount: dec("10"), ClientID: &c.ID, InvoiceID: &purchase.ID},
			expectErr: domain.ErrInvalidLedgerEntry,
		},
		{
			name:      "overpayment",
			input:     usecase.CreateTransactionInput{Type: domain.TransactionTypeIncome, Amount: dec("100.01"), ClientID: &c.ID, InvoiceID: &sale.ID},
			expectErr: domain.ErrInvalidAmount,
		},
		{
			name:      "invoice of another client",
			input:     usecase.CreateTransactionInput{Type: domain.TransactionTypeIncome, Amount: dec("10"), ClientID: &c.ID, InvoiceID: &foreign.ID},
			expectErr: domain.ErrInvalidLedgerEntry,
		},
		{
			name:      "unknown invoice",
			input:     usecase.CreateTransactionInput{Type: domain.TransactionTypeIncome, Amount: dec("10"), ClientID: &c.ID, InvoiceID: strPtr("missing")},
			expectErr: domain.ErrInvoiceNotFound,
		},
		{
			name:      "invoice without client",
			input:     usecase.CreateTransactionInput{Type: domain.TransactionTypeIncome, Amount: dec("10"), InvoiceID: &sale.ID},
			expectErr: domain.ErrInvalidLedgerEntry,
		},
		{
			name:      "zero amount",
			input:     usecase.CreateTransactionInput{Type: domain.TransactionTypeIncome, Amount: dec("0"), ClientID: &c.ID},
			expectErr: domain.ErrInvalidLedgerEntry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.transactions.CreateTransaction(ctx, tt.input)
			require.ErrorIs(t, err, tt.expectErr)
		})
	}

	requireDecimal(t, "60", l.balance(t, c.ID))
	assert.Len(t, l.historyRows(t, c.ID), rowsBefore)
	stored, err := l.invoices.GetInvoice(ctx, sale.ID)
	require.NoError(t, err)
	assert.True(t, stored.Paid.IsZero())
	l.requireConsistent(t, c.ID)
}

func TestLedger_ClientlessTransactionHasNoBalanceEffect(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	txn, err := l.transactions.CreateTransaction(ctx, usecase.CreateTransactionInput{
		Type:   domain.TransactionTypeExpense,
		Amount: dec("35.20"),
	})
	require.NoError(t, err)
	assert.False(t, txn.HasClient())

	voided, err := l.transactions.DeleteTransaction(ctx, txn.ID)
	require.NoError(t, err)
	assert.True(t, voided.IsDeleted())
}

func TestLedger_MissingAndInactiveClients(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	_, err := l.invoices.CreateInvoice(ctx, usecase.CreateInvoiceInput{
		ClientID: "missing",
		Type:     domain.InvoiceTypeSale,
		Total:    dec("10"),
	})
	require.ErrorIs(t, err, domain.ErrClientNotFound)

	c := l.newClient(t)
	l.invoice(t, c.ID, domain.InvoiceTypeSale, "10", "0")

	_, err = l.clients.DeactivateClient(ctx, c.ID)
	require.NoError(t, err)

	_, err = l.invoices.CreateInvoice(ctx, usecase.CreateInvoiceInput{
		ClientID: c.ID,
		Type:     domain.InvoiceTypeSale,
		Total:    dec("10"),
	})
	require.ErrorIs(t, err, domain.ErrClientNotFound)

	_, err = l.transactions.CreateTransaction(ctx, usecase.CreateTransactionInput{
		Type:     domain.TransactionTypeIncome,
		Amount:   dec("5"),
		ClientID: &c.ID,
	})
	require.ErrorIs(t, err, domain.ErrClientNotFound)

	requireDecimal(t, "10", l.balance(t, c.ID))
	l.requireConsistent(t, c.ID)
}

func TestLedger_VoidTwiceFails(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	c := l.newClient(t)

	inv := l.invoice(t, c.ID, domain.InvoiceTypeSale, "10", "0")
	_, err := l.invoices.DeleteInvoice(ctx, inv.ID)
	require.NoError(t, err)

	_, err = l.invoices.DeleteInvoice(ctx, inv.ID)
	require.ErrorIs(t, err, domain.ErrAlreadyDeleted)

	txn := l.payment(t, c.ID, domain.TransactionTypeIncome, "3", nil)
	_, err = l.transactions.DeleteTransaction(ctx, txn.ID)
	require.NoError(t, err)

	_, err = l.transactions.DeleteTransaction(ctx, txn.ID)
	require.ErrorIs(t, err, domain.ErrAlreadyDeleted)

	requireDecimal(t, "0", l.balance(t, c.ID))
	l.requireConsistent(t, c.ID)
}

func TestLedger_InvalidInvoiceInput(t *testing.T) {
	l := newLedger(t)
	c := l.newClient(t)

	tests := []struct {
		name      string
		input     usecase.CreateInvoiceInput
		expectErr error
	}{
		{"negative total", usecase.CreateInvoiceInput{ClientID: c.ID, Type: domain.InvoiceTypeSale, Total: dec("-1")}, domain.ErrInvalidAmount},
		{"paid exceeds total", usecase.CreateInvoiceInput{ClientID: c.ID, Type: domain.InvoiceTypeSale, Total: dec("10"), Paid: dec("11")}, domain.ErrInvalidLedgerEntry},
		{"unknown type", usecase.CreateInvoiceInput{ClientID: c.ID, Type: "credit_note", Total: dec("10")}, domain.ErrInvalidLedgerEntry},
		{"too many decimals", usecase.CreateInvoiceInput{ClientID: c.ID, Type: domain.InvoiceTypeSale, Total: dec("0.00001")}, domain.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.invoices.CreateInvoice(context.Background(), tt.input)
			require.ErrorIs(t, err, tt.expectErr)
		})
	}

	assert.Empty(t, l.historyRows(t, c.ID))
}

func TestLedger_ConcurrentPaymentsSerialize(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	c := l.newClient(t)
	l.invoice(t, c.ID, domain.InvoiceTypeSale, "500", "0")

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.transactions.CreateTransaction(ctx, usecase.CreateTransactionInput{
				Type:     domain.TransactionTypeIncome,
				Amount:   dec("100"),
				ClientID: &c.ID,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	requireDecimal(t, "300", l.balance(t, c.ID))
	l.requireConsistent(t, c.ID)

	rows := l.historyRows(t, c.ID)
	require.Len(t, rows, 3)
	for i := 1; i < len(rows); i++ {
		assert.True(t, rows[i].PreviousBalance.Equal(rows[i-1].NewBalance),
			"row %d previous balance %s does not chain from %s", i, rows[i].PreviousBalance, rows[i-1].NewBalance)
	}
}

func TestLedger_QueuedMutationsChainInLockOrder(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	c := l.newClient(t)

	holder, err := l.store.Begin(ctx)
	require.NoError(t, err)
	_, err = l.clientRepo.GetByIDForUpdate(ctx, holder, c.ID)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := l.invoices.CreateInvoice(ctx, usecase.CreateInvoiceInput{
			ClientID: c.ID,
			Type:     domain.InvoiceTypeSale,
			Total:    dec("500"),
		})
		errs <- err
	}()
	time.Sleep(20 * time.Millisecond)

	go func() {
		defer wg.Done()
		_, err := l.transactions.CreateTransaction(ctx, usecase.CreateTransactionInput{
			Type:     domain.TransactionTypeIncome,
			Amount:   dec("100"),
			ClientID: &c.ID,
		})
		errs <- err
	}()
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, holder.Commit(ctx))
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	requireDecimal(t, "400", l.balance(t, c.ID))
	l.requireConsistent(t, c.ID)

	rows := l.historyRows(t, c.ID)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].PreviousBalance.IsZero(), "first row starts at %s", rows[0].PreviousBalance)
	assert.True(t, rows[1].PreviousBalance.Equal(rows[0].NewBalance),
		"row 1 previous balance %s does not chain from %s", rows[1].PreviousBalance, rows[0].NewBalance)
}

func TestLedger_ConcurrentMixedWorkload(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	a := l.newClient(t)
	b := l.newClient(t)

	const workers = 20

	var wg sync.WaitGroup
	var mu sync.Mutex
	var failures []error
	fail := func(err error) {
		mu.Lock()
		failures = append(failures, err)
		mu.Unlock()
	}

	for i := range workers {
		clientID := a.ID
		if i%2 == 1 {
			clientID = b.ID
		}

		wg.Add(1)
		go func() {
			defer wg.Done()

			inv, err := l.invoices.CreateInvoice(ctx, usecase.CreateInvoiceInput{
				ClientID: clientID,
				Type:     domain.InvoiceTypeSale,
				Total:    dec("100"),
			})
			if err != nil {
				fail(err)
				return
			}

			txn, err := l.transactions.CreateTransaction(ctx, usecase.CreateTransactionInput{
				Type:      domain.TransactionTypeIncome,
				Amount:    dec("25"),
				ClientID:  &clientID,
				InvoiceID: &inv.ID,
			})
			if err != nil {
				fail(err)
				return
			}

			if i%4 == 0 {
				if _, err := l.transactions.DeleteTransaction(ctx, txn.ID); err != nil {
					fail(err)
				}
			}
		}()
	}
	wg.Wait()

	require.Empty(t, failures)

	// a gets workers 0,2,4,...: 10 invoices of 100, 10 payments of 25, 5 of them voided
	requireDecimal(t, "875", l.balance(t, a.ID))
	requireDecimal(t, "750", l.balance(t, b.ID))
	l.requireConsistent(t, a.ID)
	l.requireConsistent(t, b.ID)
	require.NoError(t, l.recon.CheckLedgerConsistency(ctx))
}

func TestLedger_DeleteClientCascades(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	c := l.newClient(t)

	inv := l.invoice(t, c.ID, domain.InvoiceTypeSale, "10", "0")
	l.payment(t, c.ID, domain.TransactionTypeIncome, "4", nil)

	require.NoError(t, l.clients.DeleteClient(ctx, c.ID))

	_, err := l.clients.GetClient(ctx, c.ID)
	require.ErrorIs(t, err, domain.ErrClientNotFound)

	_, err = l.invoices.GetInvoice(ctx, inv.ID)
	require.ErrorIs(t, err, domain.ErrInvoiceNotFound)

	_, err = l.history.ListForClient(ctx, c.ID, domain.DateRange{})
	require.ErrorIs(t, err, domain.ErrClientNotFound)

	logs, err := l.auditRepo.List(ctx, domain.AuditFilter{ResourceID: c.ID})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, string(domain.AuditActionClientDelete), logs[0].Action)

	require.NoError(t, l.recon.CheckLedgerConsistency(ctx))
}

func TestLedger_RolledBackUnitLeavesNoTrace(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	c := l.newClient(t)
	l.invoice(t, c.ID, domain.InvoiceTypeSale, "10", "0")

	boom := errors.New("boom")
	err := l.uow.Do(ctx, func(ctx context.Context, tx usecase.Transaction) error {
		client, err := l.clientRepo.GetByIDForUpdate(ctx, tx, c.ID)
		if err != nil {
			return err
		}
		if err := l.clientRepo.UpdateBalance(ctx, tx, c.ID, dec("999"), client.Version, client.UpdatedAt); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	requireDecimal(t, "10", l.balance(t, c.ID))
	l.requireConsistent(t, c.ID)
}
