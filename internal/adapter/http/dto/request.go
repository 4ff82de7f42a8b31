package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/iho/bizledger/internal/domain"
	"github.com/iho/bizledger/internal/usecase"
)

// CreateClientRequest represents a request to create a client.
type CreateClientRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateClientRequest) ToUseCaseInput() usecase.CreateClientInput {
	return usecase.CreateClientInput{
		Name: strings.TrimSpace(r.Name),
		Type: domain.ClientType(r.Type),
	}
}

// CreateInvoiceRequest represents a request to create an invoice. Amounts are
// decimal strings and both are required; an unpaid invoice sends "0".
type CreateInvoiceRequest struct {
	ClientID    string `json:"client_id"`
	Type        string `json:"type"`
	Number      string `json:"number,omitempty"`
	Description string `json:"description,omitempty"`
	Total       string `json:"total"`
	Paid        string `json:"paid"`
}

// ToUseCaseInput parses the amounts and converts to use case input.
func (r *CreateInvoiceRequest) ToUseCaseInput() (usecase.CreateInvoiceInput, error) {
	total, err := domain.ParseAmount("total", r.Total)
	if err != nil {
		return usecase.CreateInvoiceInput{}, err
	}

	paid, err := domain.ParseAmount("paid", r.Paid)
	if err != nil {
		return usecase.CreateInvoiceInput{}, err
	}

	return usecase.CreateInvoiceInput{
		ClientID:    r.ClientID,
		Type:        domain.InvoiceType(r.Type),
		Number:      r.Number,
		Description: r.Description,
		Total:       total,
		Paid:        paid,
	}, nil
}

// CreateTransactionRequest represents a request to record a transaction.
type CreateTransactionRequest struct {
	Type        string     `json:"type"`
	Amount      string     `json:"amount"`
	ClientID    *string    `json:"client_id,omitempty"`
	InvoiceID   *string    `json:"invoice_id,omitempty"`
	Description string     `json:"description,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
}

// ToUseCaseInput parses the amount and converts to use case input.
func (r *CreateTransactionRequest) ToUseCaseInput() (usecase.CreateTransactionInput, error) {
	amount, err := domain.ParseAmount("amount", r.Amount)
	if err != nil {
		return usecase.CreateTransactionInput{}, err
	}

	return usecase.CreateTransactionInput{
		Type:        domain.TransactionType(r.Type),
		Amount:      amount,
		ClientID:    nonEmpty(r.ClientID),
		InvoiceID:   nonEmpty(r.InvoiceID),
		Description: r.Description,
		Date:        r.Date,
	}, nil
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// ParseDateRange reads from/to query values. Each accepts RFC 3339 or a
// plain YYYY-MM-DD date; a plain "to" date includes that whole day.
func ParseDateRange(from, to string) (domain.DateRange, error) {
	var rng domain.DateRange

	if from != "" {
		t, _, err := parseDate(from)
		if err != nil {
			return rng, fmt.Errorf("%w: from: %v", domain.ErrInvalidDateRange, err)
		}
		rng.From = t
	}

	if to != "" {
		t, dateOnly, err := parseDate(to)
		if err != nil {
			return rng, fmt.Errorf("%w: to: %v", domain.ErrInvalidDateRange, err)
		}
		if dateOnly {
			t = t.AddDate(0, 0, 1)
		}
		rng.To = t
	}

	return rng, rng.Validate()
}

func parseDate(s string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, false, nil
	}

	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%q is neither RFC 3339 nor YYYY-MM-DD", s)
	}
	return t, true, nil
}
