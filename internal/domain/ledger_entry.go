package domain

import (
	"github.com/shopspring/decimal"
)

// SourceType names the kind of record a ledger entry derives from.
type SourceType string

const (
	SourceInvoice     SourceType = "invoice"
	SourceTransaction SourceType = "transaction"
)

// LedgerEntry is the balance effect of a single invoice or transaction on a
// client. Amount is never negative; Direction carries the sign.
type LedgerEntry struct {
	ClientID   string
	Amount     decimal.Decimal
	Direction  HistoryType
	SourceType SourceType
	SourceID   string
}

// Signed returns the entry as a balance delta: debits increase what the
// client owes, credits decrease it.
func (e LedgerEntry) Signed() decimal.Decimal {
	if e.Direction == HistoryTypeCredit {
		return e.Amount.Neg()
	}
	return e.Amount
}

// Reversed returns the entry that cancels e.
func (e LedgerEntry) Reversed() LedgerEntry {
	e.Direction = e.Direction.Opposite()
	return e
}

// InvoiceEffect is the entry recorded when an invoice is created: a sale
// debits the client by its due amount, a purchase credits it.
func InvoiceEffect(inv *Invoice) (LedgerEntry, error) {
	if err := inv.Validate(); err != nil {
		return LedgerEntry{}, err
	}

	direction := HistoryTypeDebit
	if inv.Type == InvoiceTypePurchase {
		direction = HistoryTypeCredit
	}

	return LedgerEntry{
		ClientID:   inv.ClientID,
		Amount:     inv.Due(),
		Direction:  direction,
		SourceType: SourceInvoice,
		SourceID:   inv.ID,
	}, nil
}

// TransactionEffect is the entry recorded when a client transaction is
// created: income credits the client, expense debits it. Linked and unlinked
// transactions move the stored balance the same way; for linked ones the
// invoice's paid amount moves too, so the calculator reads the effect from
// the invoice instead.
func TransactionEffect(txn *Transaction) (LedgerEntry, error) {
	if err := txn.Validate(); err != nil {
		return LedgerEntry{}, err
	}
	if !txn.HasClient() {
		return LedgerEntry{}, invalidEntry("transaction %s has no client", txn.ID)
	}

	direction := HistoryTypeDebit
	if txn.Type == TransactionTypeIncome {
		direction = HistoryTypeCredit
	}

	return LedgerEntry{
		ClientID:   *txn.ClientID,
		Amount:     txn.Amount,
		Direction:  direction,
		SourceType: SourceTransaction,
		SourceID:   txn.ID,
	}, nil
}
