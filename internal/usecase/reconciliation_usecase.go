package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/bizledger/internal/domain"
	"github.com/iho/bizledger/internal/infrastructure/metrics"
)

// ReconciliationUseCase compares stored balances with the balance derived
// from invoices and transactions and with the history ledger. It reports
// discrepancies and never corrects them.
type ReconciliationUseCase struct {
	uow         *UnitOfWork
	clientRepo  ClientRepository
	invoiceRepo InvoiceRepository
	txnRepo     TransactionRepository
	historyRepo BalanceHistoryRepository
	ledgerRepo  LedgerRepository
	auditRepo   AuditRepository
	idGen       IDGenerator
	metrics     *metrics.Metrics

	reportCache    Cache
	reportCacheTTL time.Duration
}

const reportCacheKey = "reconciliation:report"

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(
	uow *UnitOfWork,
	clientRepo ClientRepository,
	invoiceRepo InvoiceRepository,
	txnRepo TransactionRepository,
	historyRepo BalanceHistoryRepository,
	ledgerRepo LedgerRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		uow:         uow,
		clientRepo:  clientRepo,
		invoiceRepo: invoiceRepo,
		txnRepo:     txnRepo,
		historyRepo: historyRepo,
		ledgerRepo:  ledgerRepo,
		auditRepo:   auditRepo,
		idGen:       idGen,
		metrics:     metrics,
	}
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	ClientID          string
	StoredBalance     decimal.Decimal
	CalculatedBalance decimal.Decimal
	HistoryBalance    decimal.Decimal
	Difference        decimal.Decimal
	IsReconciled      bool
	CheckedAt         time.Time
}

// ReconcileClient checks one client while holding its row lock, so no
// mutation can interleave with the three reads. On a mismatch it returns the
// result together with an error wrapping domain.ErrInconsistentBalance.
func (uc *ReconciliationUseCase) ReconcileClient(ctx context.Context, clientID string) (*ReconciliationResult, error) {
	var result *ReconciliationResult
	err := uc.uow.Do(ctx, func(ctx context.Context, tx Transaction) error {
		client, err := uc.clientRepo.GetByIDForUpdate(ctx, tx, clientID)
		if err != nil {
			return err
		}

		invoices, err := uc.invoiceRepo.ListByClientTx(ctx, tx, clientID)
		if err != nil {
			return err
		}

		transactions, err := uc.txnRepo.ListByClientTx(ctx, tx, clientID)
		if err != nil {
			return err
		}

		calculated, err := domain.CalculateBalance(invoices, transactions)
		if err != nil {
			return fmt.Errorf("client %s: %w", clientID, err)
		}

		historySum, err := uc.historyRepo.SumByClient(ctx, tx, clientID)
		if err != nil {
			return err
		}

		result = &ReconciliationResult{
			ClientID:          clientID,
			StoredBalance:     client.Balance,
			CalculatedBalance: calculated,
			HistoryBalance:    historySum,
			Difference:        client.Balance.Sub(calculated),
			IsReconciled:      client.Balance.Equal(calculated) && client.Balance.Equal(historySum),
			CheckedAt:         time.Now().UTC(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.ReconciliationRuns.Inc()
	}

	if result.IsReconciled {
		return result, nil
	}

	return result, uc.reportMismatch(ctx, result)
}

func (uc *ReconciliationUseCase) reportMismatch(ctx context.Context, result *ReconciliationResult) error {
	mismatch := fmt.Errorf("%w: client %s stored %s calculated %s history %s",
		domain.ErrInconsistentBalance,
		result.ClientID,
		result.StoredBalance,
		result.CalculatedBalance,
		result.HistoryBalance,
	)

	zerolog.Ctx(ctx).Error().
		Str("client_id", result.ClientID).
		Str("stored_balance", result.StoredBalance.String()).
		Str("calculated_balance", result.CalculatedBalance.String()).
		Str("history_balance", result.HistoryBalance.String()).
		Msg("client balance does not match ledger")

	if uc.metrics != nil {
		uc.metrics.ReconciliationMismatches.Inc()
	}

	if uc.auditRepo != nil {
		log := &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			Action:       string(domain.AuditActionBalanceReconcile),
			ResourceType: domain.AuditResourceClient,
			ResourceID:   result.ClientID,
			RequestID:    domain.RequestIDFromContext(ctx),
			BeforeState: domain.JSON{
				"stored_balance":     result.StoredBalance.String(),
				"calculated_balance": result.CalculatedBalance.String(),
				"history_balance":    result.HistoryBalance.String(),
			},
			Status:       string(domain.AuditStatusFailure),
			ErrorMessage: mismatch.Error(),
			CreatedAt:    result.CheckedAt,
		}
		if err := uc.auditRepo.Create(ctx, log); err != nil {
			return errors.Join(mismatch, fmt.Errorf("record audit log: %w", err))
		}
		if uc.metrics != nil {
			uc.metrics.AuditLogsCreated.WithLabelValues(log.Action, log.Status).Inc()
		}
	}

	return mismatch
}

// CheckLedgerConsistency verifies that the stored balances of all clients add
// up to the sum of all history amounts.
func (uc *ReconciliationUseCase) CheckLedgerConsistency(ctx context.Context) error {
	totalBalance, totalHistory, err := uc.ledgerRepo.Totals(ctx)
	if err != nil {
		return err
	}

	if !totalBalance.Equal(totalHistory) {
		return fmt.Errorf(
			"%w: balances=%s history=%s difference=%s",
			domain.ErrInconsistentBalance,
			totalBalance.String(),
			totalHistory.String(),
			totalBalance.Sub(totalHistory).String(),
		)
	}

	return nil
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	TotalClients      int
	ReconciledClients int
	Discrepancies     []*ReconciliationResult
	LedgerConsistent  bool
	CheckedAt         time.Time
}

// WithReportCache makes CachedReconciliationReport serve a cached report
// for ttl. Each real run still audits its discrepancies.
func (uc *ReconciliationUseCase) WithReportCache(cache Cache, ttl time.Duration) *ReconciliationUseCase {
	uc.reportCache = cache
	uc.reportCacheTTL = ttl
	return uc
}

// CachedReconciliationReport returns the last report if one is cached,
// otherwise it runs GenerateReconciliationReport and caches the result.
func (uc *ReconciliationUseCase) CachedReconciliationReport(ctx context.Context) (*ReconciliationReport, error) {
	if uc.reportCache == nil || uc.reportCacheTTL <= 0 {
		return uc.GenerateReconciliationReport(ctx)
	}

	logger := zerolog.Ctx(ctx)

	data, err := uc.reportCache.Get(ctx, reportCacheKey)
	switch {
	case err == nil:
		var report ReconciliationReport
		if err := json.Unmarshal(data, &report); err == nil {
			return &report, nil
		}
		logger.Warn().Msg("discarding undecodable cached reconciliation report")
	case !errors.Is(err, ErrCacheMiss):
		logger.Warn().Err(err).Msg("reconciliation report cache unavailable")
	}

	report, err := uc.GenerateReconciliationReport(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(report); err == nil {
		if err := uc.reportCache.Set(ctx, reportCacheKey, data, uc.reportCacheTTL); err != nil {
			logger.Warn().Err(err).Msg("failed to cache reconciliation report")
		}
	}

	return report, nil
}

// GenerateReconciliationReport reconciles every client, active or not.
// Mismatching clients are collected in the report; any other failure aborts
// the run.
func (uc *ReconciliationUseCase) GenerateReconciliationReport(ctx context.Context) (*ReconciliationReport, error) {
	report := &ReconciliationReport{
		Discrepancies: make([]*ReconciliationResult, 0),
		CheckedAt:     time.Now().UTC(),
	}

	for offset := 0; ; offset += ReconciliationBatchSize {
		clients, err := uc.clientRepo.List(ctx, ReconciliationBatchSize, offset)
		if err != nil {
			return nil, err
		}

		for _, client := range clients {
			result, err := uc.ReconcileClient(ctx, client.ID)
			switch {
			case err == nil:
				report.ReconciledClients++
			case errors.Is(err, domain.ErrInconsistentBalance) && result != nil:
				report.Discrepancies = append(report.Discrepancies, result)
			case errors.Is(err, domain.ErrClientNotFound):
				// deleted between the page read and the lock
				continue
			default:
				return nil, fmt.Errorf("failed to reconcile client %s: %w", client.ID, err)
			}
			report.TotalClients++
		}

		if len(clients) < ReconciliationBatchSize {
			break
		}
	}

	ledgerErr := uc.CheckLedgerConsistency(ctx)
	if ledgerErr != nil && !errors.Is(ledgerErr, domain.ErrInconsistentBalance) {
		return nil, ledgerErr
	}
	report.LedgerConsistent = ledgerErr == nil

	return report, nil
}

// ListDiscrepancies returns audit records of failed reconciliations.
func (uc *ReconciliationUseCase) ListDiscrepancies(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	if uc.auditRepo == nil {
		return []*domain.AuditLog{}, nil
	}

	filter.Limit, filter.Offset = domain.ValidatePagination(filter.Limit, filter.Offset)
	if filter.Action == "" {
		filter.Action = string(domain.AuditActionBalanceReconcile)
	}
	if filter.Status == "" {
		filter.Status = string(domain.AuditStatusFailure)
	}

	return uc.auditRepo.List(ctx, filter)
}
