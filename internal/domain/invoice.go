package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceType is either a sale (client owes us) or a purchase (we owe the client).
type InvoiceType string

const (
	InvoiceTypeSale     InvoiceType = "sale"
	InvoiceTypePurchase InvoiceType = "purchase"
)

// IsValid reports whether t is a known invoice type.
func (t InvoiceType) IsValid() bool {
	return t == InvoiceTypeSale || t == InvoiceTypePurchase
}

// Invoice is a sale or purchase document issued to a client.
type Invoice struct {
	ID          string
	ClientID    string
	Type        InvoiceType
	Number      string
	Description string
	Total       decimal.Decimal
	Paid        decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

// Due is the outstanding unpaid amount.
func (i *Invoice) Due() decimal.Decimal {
	return i.Total.Sub(i.Paid)
}

// IsDeleted reports whether the invoice has been voided.
func (i *Invoice) IsDeleted() bool {
	return i.DeletedAt != nil
}

// Validate checks the monetary fields and the type.
func (i *Invoice) Validate() error {
	if !i.Type.IsValid() {
		return invalidEntry("invoice %s has unknown type %q", i.ID, i.Type)
	}
	if i.Total.IsNegative() {
		return invalidEntry("invoice %s has negative total %s", i.ID, i.Total)
	}
	if i.Paid.IsNegative() {
		return invalidEntry("invoice %s has negative paid %s", i.ID, i.Paid)
	}
	if i.Paid.GreaterThan(i.Total) {
		return invalidEntry("invoice %s paid %s exceeds total %s", i.ID, i.Paid, i.Total)
	}
	return nil
}
