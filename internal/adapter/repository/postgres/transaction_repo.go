package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/bizledger/internal/domain"
	"github.com/iho/bizledger/internal/infrastructure/postgres/generated"
	"github.com/iho/bizledger/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	queries *generated.Queries
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db generated.DBTX) *TransactionRepository {
	return &TransactionRepository{queries: generated.New(db)}
}

// Create inserts a transaction within a transaction.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	q, err := queriesFor(tx)
	if err != nil {
		return err
	}

	_, err = q.CreateTransaction(ctx, generated.CreateTransactionParams{
		ID:          txn.ID,
		Type:        string(txn.Type),
		Amount:      decimalToNumeric(txn.Amount),
		ClientID:    ptrToText(txn.ClientID),
		InvoiceID:   ptrToText(txn.InvoiceID),
		Description: txn.Description,
		Date:        timeToPgTimestamptz(txn.Date),
		CreatedAt:   timeToPgTimestamptz(txn.CreatedAt),
	})

	return err
}

// GetByID retrieves a transaction, voided or not.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	row, err := r.queries.GetTransactionByID(ctx, id)
	if err != nil {
		return nil, transactionErr(err, id)
	}

	return rowToTransaction(row), nil
}

// GetByIDForUpdate retrieves a transaction and locks its row.
func (r *TransactionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error) {
	q, err := queriesFor(tx)
	if err != nil {
		return nil, err
	}

	row, err := q.GetTransactionByIDForUpdate(ctx, id)
	if err != nil {
		return nil, transactionErr(err, id)
	}

	return rowToTransaction(row), nil
}

// MarkDeleted voids a live transaction.
func (r *TransactionRepository) MarkDeleted(ctx context.Context, tx usecase.Transaction, id string, deletedAt time.Time) error {
	q, err := queriesFor(tx)
	if err != nil {
		return err
	}

	n, err := q.MarkTransactionDeleted(ctx, generated.MarkTransactionDeletedParams{
		ID:        id,
		DeletedAt: timeToPgTimestamptz(deletedAt),
	})
	if err != nil {
		return err
	}

	if n == 0 {
		return fmt.Errorf("%w: transaction %s", domain.ErrAlreadyDeleted, id)
	}

	return nil
}

// ListByClient returns all transactions of a client, voided ones included.
func (r *TransactionRepository) ListByClient(ctx context.Context, clientID string) ([]*domain.Transaction, error) {
	return listTransactions(ctx, r.queries, clientID)
}

// ListByClientTx is ListByClient inside a transaction.
func (r *TransactionRepository) ListByClientTx(ctx context.Context, tx usecase.Transaction, clientID string) ([]*domain.Transaction, error) {
	q, err := queriesFor(tx)
	if err != nil {
		return nil, err
	}

	return listTransactions(ctx, q, clientID)
}

// CountActiveByInvoice counts live transactions linked to the invoice.
func (r *TransactionRepository) CountActiveByInvoice(ctx context.Context, tx usecase.Transaction, invoiceID string) (int, error) {
	q, err := queriesFor(tx)
	if err != nil {
		return 0, err
	}

	n, err := q.CountActiveTransactionsByInvoice(ctx, pgtype.Text{String: invoiceID, Valid: true})
	if err != nil {
		return 0, err
	}

	return int(n), nil
}

func listTransactions(ctx context.Context, q *generated.Queries, clientID string) ([]*domain.Transaction, error) {
	rows, err := q.ListTransactionsByClient(ctx, pgtype.Text{String: clientID, Valid: true})
	if err != nil {
		return nil, err
	}

	txns := make([]*domain.Transaction, 0, len(rows))
	for _, row := range rows {
		txns = append(txns, rowToTransaction(row))
	}

	return txns, nil
}

func transactionErr(err error, id string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", domain.ErrTransactionNotFound, id)
	}
	return err
}

func rowToTransaction(row generated.Transaction) *domain.Transaction {
	return &domain.Transaction{
		ID:          row.ID,
		Type:        domain.TransactionType(row.Type),
		Amount:      numericToDecimal(row.Amount),
		ClientID:    textToPtr(row.ClientID),
		InvoiceID:   textToPtr(row.InvoiceID),
		Description: row.Description,
		Date:        row.Date.Time,
		CreatedAt:   row.CreatedAt.Time,
		DeletedAt:   timestamptzToPtr(row.DeletedAt),
	}
}
