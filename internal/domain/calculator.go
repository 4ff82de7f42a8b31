package domain

import (
	"github.com/shopspring/decimal"
)

// LedgerEntries derives the live ledger entries from a client's invoices and
// transactions. Voided records are skipped, as are transactions linked to an
// invoice: their effect is already part of that invoice's paid amount.
func LedgerEntries(invoices []*Invoice, transactions []*Transaction) ([]LedgerEntry, error) {
	entries := make([]LedgerEntry, 0, len(invoices)+len(transactions))

	for _, inv := range invoices {
		if inv == nil {
			return nil, invalidEntry("nil invoice")
		}
		if inv.IsDeleted() {
			continue
		}

		entry, err := InvoiceEffect(inv)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	for _, txn := range transactions {
		if txn == nil {
			return nil, invalidEntry("nil transaction")
		}
		if err := txn.Validate(); err != nil {
			return nil, err
		}
		if txn.IsDeleted() || txn.IsLinked() || !txn.HasClient() {
			continue
		}

		entry, err := TransactionEffect(txn)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// CalculateBalance recomputes a client's balance from its invoices and
// transactions, independent of the stored balance column.
func CalculateBalance(invoices []*Invoice, transactions []*Transaction) (decimal.Decimal, error) {
	entries, err := LedgerEntries(invoices, transactions)
	if err != nil {
		return decimal.Zero, err
	}

	balance := decimal.Zero
	for _, e := range entries {
		balance = balance.Add(e.Signed())
	}

	return balance, nil
}
