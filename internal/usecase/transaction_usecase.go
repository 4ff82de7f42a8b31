package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bizledger/internal/domain"
	"github.com/iho/bizledger/internal/infrastructure/metrics"
)

// TransactionUseCase records and voids treasury transactions.
type TransactionUseCase struct {
	uow         *UnitOfWork
	txnRepo     TransactionRepository
	invoiceRepo InvoiceRepository
	mutator     *BalanceMutator
	idGen       IDGenerator
	metrics     *metrics.Metrics
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(
	uow *UnitOfWork,
	txnRepo TransactionRepository,
	invoiceRepo InvoiceRepository,
	mutator *BalanceMutator,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *TransactionUseCase {
	return &TransactionUseCase{
		uow:         uow,
		txnRepo:     txnRepo,
		invoiceRepo: invoiceRepo,
		mutator:     mutator,
		idGen:       idGen,
		metrics:     metrics,
	}
}

// CreateTransactionInput represents input for recording a transaction.
type CreateTransactionInput struct {
	Type        domain.TransactionType
	Amount      decimal.Decimal
	ClientID    *string
	InvoiceID   *string
	Description string
	Date        *time.Time
}

// CreateTransaction records a transaction. When it references a client the
// balance moves by -amount for income and +amount for expense; when it also
// references an invoice, that invoice's paid amount grows by amount.
func (uc *TransactionUseCase) CreateTransaction(ctx context.Context, input CreateTransactionInput) (*domain.Transaction, error) {
	if err := domain.ValidateAmount("amount", input.Amount); err != nil {
		return nil, err
	}
	if err := domain.ValidateDescription(input.Description); err != nil {
		return nil, err
	}

	start := time.Now()

	var created *domain.Transaction
	err := uc.uow.Do(ctx, func(ctx context.Context, tx Transaction) error {
		now := time.Now().UTC()
		txn := &domain.Transaction{
			ID:          uc.idGen.Generate(),
			Type:        input.Type,
			Amount:      input.Amount,
			ClientID:    input.ClientID,
			InvoiceID:   input.InvoiceID,
			Description: input.Description,
			Date:        now,
			CreatedAt:   now,
		}
		if input.Date != nil {
			txn.Date = input.Date.UTC()
		}

		if err := txn.Validate(); err != nil {
			return err
		}

		if !txn.HasClient() {
			created = txn
			return uc.txnRepo.Create(ctx, tx, txn)
		}

		if _, err := uc.mutator.LockClient(ctx, tx, *txn.ClientID); err != nil {
			return err
		}

		// history rows must be dated in lock order
		now = time.Now().UTC()
		txn.CreatedAt = now
		if input.Date == nil {
			txn.Date = now
		}

		if txn.IsLinked() {
			if err := uc.settleInvoice(ctx, tx, txn, now); err != nil {
				return err
			}
		}

		if err := uc.txnRepo.Create(ctx, tx, txn); err != nil {
			return err
		}

		entry, err := domain.TransactionEffect(txn)
		if err != nil {
			return err
		}

		if _, err := uc.mutator.Apply(ctx, tx, Mutation{
			ClientID:      entry.ClientID,
			Delta:         entry.Signed(),
			Type:          entry.Direction,
			Description:   transactionDescription(txn, ""),
			TransactionID: &txn.ID,
			At:            now,
		}); err != nil {
			return err
		}

		created = txn
		return nil
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransactionsCreated.WithLabelValues(string(created.Type)).Inc()
		if created.HasClient() {
			uc.metrics.BalanceMutationTime.Observe(time.Since(start).Seconds())
		}
	}

	return created, nil
}

// settleInvoice adds txn.Amount to the paid amount of the invoice it links to.
func (uc *TransactionUseCase) settleInvoice(ctx context.Context, tx Transaction, txn *domain.Transaction, now time.Time) error {
	inv, err := uc.invoiceRepo.GetByIDForUpdate(ctx, tx, *txn.InvoiceID)
	if err != nil {
		return err
	}
	if inv.IsDeleted() {
		return fmt.Errorf("%w: invoice %s is voided", domain.ErrInvoiceNotFound, inv.ID)
	}
	if inv.ClientID != *txn.ClientID {
		return fmt.Errorf("%w: invoice %s belongs to another client", domain.ErrInvalidLedgerEntry, inv.ID)
	}
	if want := txn.Type.PaysInvoiceType(); inv.Type != want {
		return fmt.Errorf("%w: %s transaction cannot settle a %s invoice", domain.ErrInvalidLedgerEntry, txn.Type, inv.Type)
	}
	if txn.Amount.GreaterThan(inv.Due()) {
		return fmt.Errorf("%w: amount %s exceeds invoice %s due %s", domain.ErrInvalidAmount, txn.Amount, inv.ID, inv.Due())
	}

	return uc.invoiceRepo.UpdatePaid(ctx, tx, inv.ID, inv.Paid.Add(txn.Amount), now)
}

// DeleteTransaction voids a transaction and applies the inverse of its
// balance effect. A linked transaction also gives its amount back to the
// invoice's due.
func (uc *TransactionUseCase) DeleteTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	current, err := uc.txnRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	start := time.Now()

	var voided *domain.Transaction
	err = uc.uow.Do(ctx, func(ctx context.Context, tx Transaction) error {
		if current.HasClient() {
			if _, err := uc.mutator.LockClient(ctx, tx, *current.ClientID); err != nil {
				return err
			}
		}

		txn, err := uc.txnRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if txn.IsDeleted() {
			return fmt.Errorf("transaction %s: %w", id, domain.ErrAlreadyDeleted)
		}

		now := time.Now().UTC()
		if err := uc.txnRepo.MarkDeleted(ctx, tx, id, now); err != nil {
			return err
		}
		txn.DeletedAt = &now
		voided = txn

		if !txn.HasClient() {
			return nil
		}

		if txn.IsLinked() {
			inv, err := uc.invoiceRepo.GetByIDForUpdate(ctx, tx, *txn.InvoiceID)
			if err != nil {
				return err
			}
			if err := uc.invoiceRepo.UpdatePaid(ctx, tx, inv.ID, inv.Paid.Sub(txn.Amount), now); err != nil {
				return err
			}
		}

		entry, err := domain.TransactionEffect(txn)
		if err != nil {
			return err
		}
		reversal := entry.Reversed()

		_, err = uc.mutator.Apply(ctx, tx, Mutation{
			ClientID:      reversal.ClientID,
			Delta:         reversal.Signed(),
			Type:          reversal.Direction,
			Description:   transactionDescription(txn, " voided"),
			TransactionID: &txn.ID,
			At:            now,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransactionsVoided.Inc()
		if voided.HasClient() {
			uc.metrics.BalanceMutationTime.Observe(time.Since(start).Seconds())
		}
	}

	return voided, nil
}

// GetTransaction retrieves a transaction by ID.
func (uc *TransactionUseCase) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return uc.txnRepo.GetByID(ctx, id)
}

// ListByClient returns all transactions of a client, voided ones included.
func (uc *TransactionUseCase) ListByClient(ctx context.Context, clientID string) ([]*domain.Transaction, error) {
	return uc.txnRepo.ListByClient(ctx, clientID)
}

func transactionDescription(txn *domain.Transaction, suffix string) string {
	if txn.IsLinked() {
		return fmt.Sprintf("%s %s for invoice %s%s", txn.Type, txn.ID, *txn.InvoiceID, suffix)
	}
	return fmt.Sprintf("%s %s%s", txn.Type, txn.ID, suffix)
}
