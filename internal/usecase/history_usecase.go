package usecase

import (
	"context"
	"iter"

	"github.com/iho/bizledger/internal/domain"
)

// HistoryUseCase reads the append-only balance history ledger.
type HistoryUseCase struct {
	clientRepo  ClientRepository
	historyRepo BalanceHistoryRepository
	pageSize    int
}

// NewHistoryUseCase creates a new HistoryUseCase.
func NewHistoryUseCase(clientRepo ClientRepository, historyRepo BalanceHistoryRepository) *HistoryUseCase {
	return &HistoryUseCase{
		clientRepo:  clientRepo,
		historyRepo: historyRepo,
		pageSize:    HistoryPageSize,
	}
}

// ListForClient returns the client's history rows within rng in ascending
// (date, id) order. Rows are fetched lazily one keyset page at a time, and
// every range over the returned sequence starts again from the first row.
func (uc *HistoryUseCase) ListForClient(ctx context.Context, clientID string, rng domain.DateRange) (iter.Seq2[*domain.BalanceHistory, error], error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}

	if _, err := uc.clientRepo.GetByID(ctx, clientID); err != nil {
		return nil, err
	}

	return func(yield func(*domain.BalanceHistory, error) bool) {
		query := HistoryQuery{
			ClientID: clientID,
			Range:    rng,
			Limit:    uc.pageSize,
		}

		for {
			page, err := uc.historyRepo.ListByClient(ctx, query)
			if err != nil {
				yield(nil, err)
				return
			}

			for _, entry := range page {
				if !yield(entry, nil) {
					return
				}
			}

			if len(page) < query.Limit {
				return
			}

			last := page[len(page)-1]
			query.After = &HistoryCursor{Date: last.Date, ID: last.ID}
		}
	}, nil
}

// List collects up to limit rows of ListForClient.
func (uc *HistoryUseCase) List(ctx context.Context, clientID string, rng domain.DateRange, limit int) ([]*domain.BalanceHistory, error) {
	limit, _ = domain.ValidatePagination(limit, 0)

	seq, err := uc.ListForClient(ctx, clientID, rng)
	if err != nil {
		return nil, err
	}

	entries := make([]*domain.BalanceHistory, 0, min(limit, uc.pageSize))
	for entry, err := range seq {
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
		if len(entries) == limit {
			break
		}
	}

	return entries, nil
}
