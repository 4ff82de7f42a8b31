package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxClientNameLength = 255
	MaxDescriptionLen   = 1000
	MaxAmount           = "1000000000000" // 1 trillion
	MaxAmountScale      = 4               // numeric(20,4) in storage
)

var maxAmount = decimal.RequireFromString(MaxAmount)

// ValidateClientName validates a client name.
func ValidateClientName(name string) error {
	name = strings.TrimSpace(name)

	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidLedgerEntry)
	}

	if len(name) > MaxClientNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidLedgerEntry, MaxClientNameLength)
	}

	return nil
}

// ValidateDescription bounds free-text descriptions.
func ValidateDescription(s string) error {
	if len(s) > MaxDescriptionLen {
		return fmt.Errorf("%w: description exceeds %d characters", ErrInvalidLedgerEntry, MaxDescriptionLen)
	}
	return nil
}

// ParseAmount parses a monetary decimal string. Missing or malformed input
// is an error, never zero.
func ParseAmount(field, s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: %s is required", ErrInvalidAmount, field)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s %q is not a decimal number", ErrInvalidAmount, field, s)
	}

	if err := ValidateAmount(field, d); err != nil {
		return decimal.Zero, err
	}

	return d, nil
}

// ValidateAmount checks that d is a non-negative amount the ledger can store.
func ValidateAmount(field string, d decimal.Decimal) error {
	if d.IsNegative() {
		return fmt.Errorf("%w: %s must not be negative", ErrInvalidAmount, field)
	}

	if d.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: %s exceeds maximum of %s", ErrInvalidAmount, field, MaxAmount)
	}

	if !d.Equal(d.Truncate(MaxAmountScale)) {
		return fmt.Errorf("%w: %s has more than %d decimal places", ErrInvalidAmount, field, MaxAmountScale)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
