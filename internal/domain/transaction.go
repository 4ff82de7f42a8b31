package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a treasury movement.
type TransactionType string

const (
	// TransactionTypeIncome is money received from a client.
	TransactionTypeIncome TransactionType = "income"
	// TransactionTypeExpense is money paid to a client or supplier.
	TransactionTypeExpense TransactionType = "expense"
)

// IsValid reports whether t is a known transaction type.
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// Transaction is a treasury movement, optionally tied to a client and to one
// of that client's invoices.
type Transaction struct {
	ID          string
	Type        TransactionType
	Amount      decimal.Decimal
	ClientID    *string
	InvoiceID   *string
	Description string
	Date        time.Time
	CreatedAt   time.Time
	DeletedAt   *time.Time
}

// IsLinked reports whether the transaction pays a specific invoice.
func (t *Transaction) IsLinked() bool {
	return t.InvoiceID != nil && *t.InvoiceID != ""
}

// HasClient reports whether the transaction affects a client balance.
func (t *Transaction) HasClient() bool {
	return t.ClientID != nil && *t.ClientID != ""
}

// IsDeleted reports whether the transaction has been voided.
func (t *Transaction) IsDeleted() bool {
	return t.DeletedAt != nil
}

// Validate checks the amount and the type.
func (t *Transaction) Validate() error {
	if !t.Type.IsValid() {
		return invalidEntry("transaction %s has unknown type %q", t.ID, t.Type)
	}
	if !t.Amount.IsPositive() {
		return invalidEntry("transaction %s amount must be positive, got %s", t.ID, t.Amount)
	}
	if t.IsLinked() && !t.HasClient() {
		return invalidEntry("transaction %s references an invoice without a client", t.ID)
	}
	return nil
}

// PaysInvoiceType is the invoice type a linked transaction of this type may settle.
func (t TransactionType) PaysInvoiceType() InvoiceType {
	if t == TransactionTypeIncome {
		return InvoiceTypeSale
	}
	return InvoiceTypePurchase
}
