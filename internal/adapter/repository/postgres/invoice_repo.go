package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/bizledger/internal/domain"
	"github.com/iho/bizledger/internal/infrastructure/postgres/generated"
	"github.com/iho/bizledger/internal/usecase"
)

// InvoiceRepository implements usecase.InvoiceRepository.
type InvoiceRepository struct {
	queries *generated.Queries
}

// NewInvoiceRepository creates a new InvoiceRepository.
func NewInvoiceRepository(db generated.DBTX) *InvoiceRepository {
	return &InvoiceRepository{queries: generated.New(db)}
}

// Create inserts an invoice within a transaction.
func (r *InvoiceRepository) Create(ctx context.Context, tx usecase.Transaction, invoice *domain.Invoice) error {
	q, err := queriesFor(tx)
	if err != nil {
		return err
	}

	_, err = q.CreateInvoice(ctx, generated.CreateInvoiceParams{
		ID:          invoice.ID,
		ClientID:    invoice.ClientID,
		Type:        string(invoice.Type),
		Number:      invoice.Number,
		Description: invoice.Description,
		Total:       decimalToNumeric(invoice.Total),
		Paid:        decimalToNumeric(invoice.Paid),
		CreatedAt:   timeToPgTimestamptz(invoice.CreatedAt),
		UpdatedAt:   timeToPgTimestamptz(invoice.UpdatedAt),
	})

	return err
}

// GetByID retrieves an invoice, voided or not.
func (r *InvoiceRepository) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	row, err := r.queries.GetInvoiceByID(ctx, id)
	if err != nil {
		return nil, invoiceErr(err, id)
	}

	return rowToInvoice(row), nil
}

// GetByIDForUpdate retrieves an invoice and locks its row.
func (r *InvoiceRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Invoice, error) {
	q, err := queriesFor(tx)
	if err != nil {
		return nil, err
	}

	row, err := q.GetInvoiceByIDForUpdate(ctx, id)
	if err != nil {
		return nil, invoiceErr(err, id)
	}

	return rowToInvoice(row), nil
}

// UpdatePaid sets the paid amount.
func (r *InvoiceRepository) UpdatePaid(ctx context.Context, tx usecase.Transaction, id string, paid decimal.Decimal, updatedAt time.Time) error {
	q, err := queriesFor(tx)
	if err != nil {
		return err
	}

	n, err := q.UpdateInvoicePaid(ctx, generated.UpdateInvoicePaidParams{
		ID:        id,
		Paid:      decimalToNumeric(paid),
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		return err
	}

	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrInvoiceNotFound, id)
	}

	return nil
}

// MarkDeleted voids a live invoice.
func (r *InvoiceRepository) MarkDeleted(ctx context.Context, tx usecase.Transaction, id string, deletedAt time.Time) error {
	q, err := queriesFor(tx)
	if err != nil {
		return err
	}

	n, err := q.MarkInvoiceDeleted(ctx, generated.MarkInvoiceDeletedParams{
		ID:        id,
		DeletedAt: timeToPgTimestamptz(deletedAt),
	})
	if err != nil {
		return err
	}

	if n == 0 {
		return fmt.Errorf("%w: invoice %s", domain.ErrAlreadyDeleted, id)
	}

	return nil
}

// ListByClient returns all invoices of a client, voided ones included.
func (r *InvoiceRepository) ListByClient(ctx context.Context, clientID string) ([]*domain.Invoice, error) {
	return listInvoices(ctx, r.queries, clientID)
}

// ListByClientTx is ListByClient inside a transaction.
func (r *InvoiceRepository) ListByClientTx(ctx context.Context, tx usecase.Transaction, clientID string) ([]*domain.Invoice, error) {
	q, err := queriesFor(tx)
	if err != nil {
		return nil, err
	}

	return listInvoices(ctx, q, clientID)
}

func listInvoices(ctx context.Context, q *generated.Queries, clientID string) ([]*domain.Invoice, error) {
	rows, err := q.ListInvoicesByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	invoices := make([]*domain.Invoice, 0, len(rows))
	for _, row := range rows {
		invoices = append(invoices, rowToInvoice(row))
	}

	return invoices, nil
}

func invoiceErr(err error, id string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", domain.ErrInvoiceNotFound, id)
	}
	return err
}

func rowToInvoice(row generated.Invoice) *domain.Invoice {
	return &domain.Invoice{
		ID:          row.ID,
		ClientID:    row.ClientID,
		Type:        domain.InvoiceType(row.Type),
		Number:      row.Number,
		Description: row.Description,
		Total:       numericToDecimal(row.Total),
		Paid:        numericToDecimal(row.Paid),
		CreatedAt:   row.CreatedAt.Time,
		UpdatedAt:   row.UpdatedAt.Time,
		DeletedAt:   timestamptzToPtr(row.DeletedAt),
	}
}
