package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bizledger/internal/domain"
	"github.com/iho/bizledger/internal/infrastructure/metrics"
)

// InvoiceUseCase creates and voids invoices, keeping the client balance in
// step through the balance mutator.
type InvoiceUseCase struct {
	uow         *UnitOfWork
	invoiceRepo InvoiceRepository
	txnRepo     TransactionRepository
	mutator     *BalanceMutator
	idGen       IDGenerator
	metrics     *metrics.Metrics
}

// NewInvoiceUseCase creates a new InvoiceUseCase.
func NewInvoiceUseCase(
	uow *UnitOfWork,
	invoiceRepo InvoiceRepository,
	txnRepo TransactionRepository,
	mutator *BalanceMutator,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *InvoiceUseCase {
	return &InvoiceUseCase{
		uow:         uow,
		invoiceRepo: invoiceRepo,
		txnRepo:     txnRepo,
		mutator:     mutator,
		idGen:       idGen,
		metrics:     metrics,
	}
}

// CreateInvoiceInput represents input for creating an invoice.
type CreateInvoiceInput struct {
	ClientID    string
	Type        domain.InvoiceType
	Number      string
	Description string
	Total       decimal.Decimal
	Paid        decimal.Decimal
}

// CreateInvoice stores the invoice and applies its due amount to the client:
// +due for a sale, -due for a purchase.
func (uc *InvoiceUseCase) CreateInvoice(ctx context.Context, input CreateInvoiceInput) (*domain.Invoice, error) {
	if err := domain.ValidateAmount("total", input.Total); err != nil {
		return nil, err
	}
	if err := domain.ValidateAmount("paid", input.Paid); err != nil {
		return nil, err
	}
	if err := domain.ValidateDescription(input.Description); err != nil {
		return nil, err
	}
	draft := domain.Invoice{Type: input.Type, Total: input.Total, Paid: input.Paid}
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()

	var invoice *domain.Invoice
	err := uc.uow.Do(ctx, func(ctx context.Context, tx Transaction) error {
		if _, err := uc.mutator.LockClient(ctx, tx, input.ClientID); err != nil {
			return err
		}

		now := time.Now().UTC()
		inv := &domain.Invoice{
			ID:          uc.idGen.Generate(),
			ClientID:    input.ClientID,
			Type:        input.Type,
			Number:      input.Number,
			Description: input.Description,
			Total:       input.Total,
			Paid:        input.Paid,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		entry, err := domain.InvoiceEffect(inv)
		if err != nil {
			return err
		}

		if err := uc.invoiceRepo.Create(ctx, tx, inv); err != nil {
			return err
		}

		if _, err := uc.mutator.Apply(ctx, tx, Mutation{
			ClientID:    inv.ClientID,
			Delta:       entry.Signed(),
			Type:        entry.Direction,
			Description: fmt.Sprintf("%s invoice %s", inv.Type, invoiceLabel(inv)),
			InvoiceID:   &inv.ID,
			At:          now,
		}); err != nil {
			return err
		}

		invoice = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.InvoicesCreated.WithLabelValues(string(invoice.Type)).Inc()
		uc.metrics.BalanceMutationTime.Observe(time.Since(start).Seconds())
	}

	return invoice, nil
}

// DeleteInvoice voids the invoice and applies the inverse of its due amount.
// Invoices with live linked transactions cannot be voided.
func (uc *InvoiceUseCase) DeleteInvoice(ctx context.Context, id string) (*domain.Invoice, error) {
	current, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	start := time.Now()

	var voided *domain.Invoice
	err = uc.uow.Do(ctx, func(ctx context.Context, tx Transaction) error {
		if _, err := uc.mutator.LockClient(ctx, tx, current.ClientID); err != nil {
			return err
		}

		inv, err := uc.invoiceRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if inv.IsDeleted() {
			return fmt.Errorf("invoice %s: %w", id, domain.ErrAlreadyDeleted)
		}

		payments, err := uc.txnRepo.CountActiveByInvoice(ctx, tx, id)
		if err != nil {
			return err
		}
		if payments > 0 {
			return fmt.Errorf("%w: %d live transaction(s) reference invoice %s", domain.ErrInvoiceHasPayments, payments, id)
		}

		entry, err := domain.InvoiceEffect(inv)
		if err != nil {
			return err
		}
		reversal := entry.Reversed()

		now := time.Now().UTC()
		if err := uc.invoiceRepo.MarkDeleted(ctx, tx, id, now); err != nil {
			return err
		}

		if _, err := uc.mutator.Apply(ctx, tx, Mutation{
			ClientID:    inv.ClientID,
			Delta:       reversal.Signed(),
			Type:        reversal.Direction,
			Description: fmt.Sprintf("%s invoice %s voided", inv.Type, invoiceLabel(inv)),
			InvoiceID:   &inv.ID,
			At:          now,
		}); err != nil {
			return err
		}

		inv.DeletedAt = &now
		inv.UpdatedAt = now
		voided = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.InvoicesVoided.Inc()
		uc.metrics.BalanceMutationTime.Observe(time.Since(start).Seconds())
	}

	return voided, nil
}

// GetInvoice retrieves an invoice by ID.
func (uc *InvoiceUseCase) GetInvoice(ctx context.Context, id string) (*domain.Invoice, error) {
	return uc.invoiceRepo.GetByID(ctx, id)
}

// ListByClient returns all invoices of a client, voided ones included.
func (uc *InvoiceUseCase) ListByClient(ctx context.Context, clientID string) ([]*domain.Invoice, error) {
	return uc.invoiceRepo.ListByClient(ctx, clientID)
}

func invoiceLabel(inv *domain.Invoice) string {
	if inv.Number != "" {
		return inv.Number
	}
	return inv.ID
}
