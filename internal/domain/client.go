package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ClientType distinguishes customers from suppliers.
type ClientType string

const (
	ClientTypeCustomer ClientType = "customer"
	ClientTypeSupplier ClientType = "supplier"
)

// IsValid reports whether t is a known client type.
func (t ClientType) IsValid() bool {
	return t == ClientTypeCustomer || t == ClientTypeSupplier
}

// Client is a customer or supplier with a stored running balance.
//
// A positive balance is a receivable (the client owes the business), a
// negative balance is a payable. Balance is only ever written through the
// balance mutator, which bumps Version on every write.
type Client struct {
	ID        string
	Name      string
	Type      ClientType
	Balance   decimal.Decimal
	Active    bool
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CheckMutable returns ErrClientNotFound for clients that may not take new
// balance effects.
func (c *Client) CheckMutable() error {
	if !c.Active {
		return fmt.Errorf("%w: client %s is inactive", ErrClientNotFound, c.ID)
	}
	return nil
}

// ApplyDelta returns the balance after adding delta.
func (c *Client) ApplyDelta(delta decimal.Decimal) decimal.Decimal {
	return c.Balance.Add(delta)
}
