package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoiceEffect(t *testing.T) {
	entry, err := InvoiceEffect(sale("i-1", "1000", "300"))
	require.NoError(t, err)
	assert.True(t, entry.Signed().Equal(dec("700")))
	assert.Equal(t, HistoryTypeDebit, entry.Direction)

	entry, err = InvoiceEffect(purchase("i-2", "1000", "300"))
	require.NoError(t, err)
	assert.True(t, entry.Signed().Equal(dec("-700")))
	assert.Equal(t, HistoryTypeCredit, entry.Direction)
}

func TestInvoiceEffect_FullyPaidIsZero(t *testing.T) {
	entry, err := InvoiceEffect(sale("i-1", "250", "250"))
	require.NoError(t, err)
	assert.True(t, entry.Signed().IsZero())
	assert.Equal(t, HistoryTypeDebit, entry.Direction)
}

func TestTransactionEffect(t *testing.T) {
	entry, err := TransactionEffect(txn("t-1", TransactionTypeIncome, "200", nil))
	require.NoError(t, err)
	assert.True(t, entry.Signed().Equal(dec("-200")))
	assert.Equal(t, "c-1", entry.ClientID)

	entry, err = TransactionEffect(txn("t-2", TransactionTypeExpense, "200", nil))
	require.NoError(t, err)
	assert.True(t, entry.Signed().Equal(dec("200")))
}

func TestTransactionEffect_RequiresClient(t *testing.T) {
	_, err := TransactionEffect(&Transaction{ID: "t-1", Type: TransactionTypeIncome, Amount: dec("1")})
	assert.True(t, errors.Is(err, ErrInvalidLedgerEntry))
}

func TestLedgerEntry_ReversedCancels(t *testing.T) {
	entry, err := InvoiceEffect(sale("i-1", "1000", "300"))
	require.NoError(t, err)

	reversed := entry.Reversed()
	assert.Equal(t, HistoryTypeCredit, reversed.Direction)
	assert.True(t, entry.Signed().Add(reversed.Signed()).IsZero())
}

func TestTransaction_PaysInvoiceType(t *testing.T) {
	assert.Equal(t, InvoiceTypeSale, TransactionTypeIncome.PaysInvoiceType())
	assert.Equal(t, InvoiceTypePurchase, TransactionTypeExpense.PaysInvoiceType())
}
