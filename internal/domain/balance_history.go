package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// HistoryType tags a balance history row as a debit (client owes more) or a
// credit (client owes less) from the business' point of view.
type HistoryType string

const (
	HistoryTypeDebit  HistoryType = "debit"
	HistoryTypeCredit HistoryType = "credit"
)

// IsValid reports whether t is a known history type.
func (t HistoryType) IsValid() bool {
	return t == HistoryTypeDebit || t == HistoryTypeCredit
}

// Opposite returns the tag used when reversing an effect.
func (t HistoryType) Opposite() HistoryType {
	if t == HistoryTypeDebit {
		return HistoryTypeCredit
	}
	return HistoryTypeDebit
}

// BalanceHistory is one immutable row of a client's balance ledger.
// Exactly one of InvoiceID and TransactionID is set.
type BalanceHistory struct {
	ID              string
	ClientID        string
	InvoiceID       *string
	TransactionID   *string
	PreviousBalance decimal.Decimal
	Amount          decimal.Decimal
	NewBalance      decimal.Decimal
	Type            HistoryType
	Description     string
	Date            time.Time
}

// DateRange bounds a history query. Zero values are open ends; To is exclusive.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls within the range.
func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && !t.Before(r.To) {
		return false
	}
	return true
}

// Validate rejects inverted ranges.
func (r DateRange) Validate() error {
	if !r.From.IsZero() && !r.To.IsZero() && r.To.Before(r.From) {
		return ErrInvalidDateRange
	}
	return nil
}
