package domain

import (
	"errors"
	"fmt"
)

var (
	// Client errors
	ErrClientNotFound    = errors.New("client not found")
	ErrInvalidClientType = errors.New("invalid client type")

	// Ledger errors
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInvalidLedgerEntry     = errors.New("invalid ledger entry")
	ErrConcurrentModification = errors.New("concurrent modification of client balance")
	ErrInconsistentBalance    = errors.New("stored balance does not match ledger")
	ErrInvalidDateRange       = errors.New("invalid date range")

	// Document errors
	ErrInvoiceNotFound     = errors.New("invoice not found")
	ErrInvoiceHasPayments  = errors.New("invoice has payments recorded against it")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrAlreadyDeleted      = errors.New("record already deleted")
)

func invalidEntry(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidLedgerEntry, fmt.Sprintf(format, args...))
}
