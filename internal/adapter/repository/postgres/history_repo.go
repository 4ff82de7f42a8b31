package postgres

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/iho/bizledger/internal/domain"
	"github.com/iho/bizledger/internal/infrastructure/postgres/generated"
	"github.com/iho/bizledger/internal/usecase"
)

// BalanceHistoryRepository implements usecase.BalanceHistoryRepository.
type BalanceHistoryRepository struct {
	queries *generated.Queries
}

// NewBalanceHistoryRepository creates a new BalanceHistoryRepository.
func NewBalanceHistoryRepository(db generated.DBTX) *BalanceHistoryRepository {
	return &BalanceHistoryRepository{queries: generated.New(db)}
}

// Create appends a history row within the mutation transaction.
func (r *BalanceHistoryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.BalanceHistory) error {
	q, err := queriesFor(tx)
	if err != nil {
		return err
	}

	return q.CreateBalanceHistory(ctx, generated.CreateBalanceHistoryParams{
		ID:              entry.ID,
		ClientID:        entry.ClientID,
		InvoiceID:       ptrToText(entry.InvoiceID),
		TransactionID:   ptrToText(entry.TransactionID),
		PreviousBalance: decimalToNumeric(entry.PreviousBalance),
		Amount:          decimalToNumeric(entry.Amount),
		NewBalance:      decimalToNumeric(entry.NewBalance),
		Type:            string(entry.Type),
		Description:     entry.Description,
		Date:            timeToPgTimestamptz(entry.Date),
	})
}

// ListByClient returns one keyset page in ascending (date, id) order.
func (r *BalanceHistoryRepository) ListByClient(ctx context.Context, query usecase.HistoryQuery) ([]*domain.BalanceHistory, error) {
	params := generated.ListBalanceHistoryPageParams{
		ClientID: query.ClientID,
		FromDate: optionalTimestamptz(query.Range.From),
		ToDate:   optionalTimestamptz(query.Range.To),
		Limit:    int32(query.Limit),
	}
	if query.After != nil {
		params.AfterDate = timeToPgTimestamptz(query.After.Date)
		params.AfterID = query.After.ID
	}

	rows, err := r.queries.ListBalanceHistoryPage(ctx, params)
	if err != nil {
		return nil, err
	}

	entries := make([]*domain.BalanceHistory, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, rowToBalanceHistory(row))
	}

	return entries, nil
}

// SumByClient adds up every history amount of a client.
func (r *BalanceHistoryRepository) SumByClient(ctx context.Context, tx usecase.Transaction, clientID string) (decimal.Decimal, error) {
	q, err := queriesFor(tx)
	if err != nil {
		return decimal.Zero, err
	}

	total, err := q.SumBalanceHistoryByClient(ctx, clientID)
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(total), nil
}

func rowToBalanceHistory(row generated.BalanceHistory) *domain.BalanceHistory {
	return &domain.BalanceHistory{
		ID:              row.ID,
		ClientID:        row.ClientID,
		InvoiceID:       textToPtr(row.InvoiceID),
		TransactionID:   textToPtr(row.TransactionID),
		PreviousBalance: numericToDecimal(row.PreviousBalance),
		Amount:          numericToDecimal(row.Amount),
		NewBalance:      numericToDecimal(row.NewBalance),
		Type:            domain.HistoryType(row.Type),
		Description:     row.Description,
		Date:            row.Date.Time,
	}
}

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db generated.DBTX) *LedgerRepository {
	return &LedgerRepository{queries: generated.New(db)}
}

// Totals sums all stored balances and all history amounts.
func (r *LedgerRepository) Totals(ctx context.Context) (totalBalance, totalHistory decimal.Decimal, err error) {
	row, err := r.queries.LedgerTotals(ctx)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return numericToDecimal(row.TotalBalance), numericToDecimal(row.TotalHistory), nil
}
