package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/bizledger/internal/domain"
	"github.com/iho/bizledger/internal/infrastructure/metrics"
)

// Mutation is a signed change to one client's balance together with the
// record that caused it. Exactly one of InvoiceID and TransactionID is set.
type Mutation struct {
	ClientID      string
	Delta         decimal.Decimal
	Type          domain.HistoryType
	Description   string
	InvoiceID     *string
	TransactionID *string
	At            time.Time
}

// MutationResult is the outcome of a successful mutation.
type MutationResult struct {
	PreviousBalance decimal.Decimal
	NewBalance      decimal.Decimal
	HistoryID       string
}

func (m Mutation) validate() error {
	if m.ClientID == "" {
		return fmt.Errorf("%w: empty client id", domain.ErrClientNotFound)
	}
	if err := domain.ValidateAmount("delta", m.Delta.Abs()); err != nil {
		return err
	}
	if !m.Type.IsValid() {
		return fmt.Errorf("%w: unknown history type %q", domain.ErrInvalidLedgerEntry, m.Type)
	}

	hasInvoice := m.InvoiceID != nil && *m.InvoiceID != ""
	hasTxn := m.TransactionID != nil && *m.TransactionID != ""
	if hasInvoice == hasTxn {
		return fmt.Errorf("%w: mutation needs exactly one causing invoice or transaction", domain.ErrInvalidLedgerEntry)
	}

	return nil
}

// BalanceMutator is the only writer of Client.Balance. Every call locks the
// client row, writes the new balance and appends a history row, all inside
// the caller's transaction.
type BalanceMutator struct {
	clientRepo  ClientRepository
	historyRepo BalanceHistoryRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	metrics     *metrics.Metrics
}

// NewBalanceMutator creates a new BalanceMutator.
func NewBalanceMutator(
	clientRepo ClientRepository,
	historyRepo BalanceHistoryRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *BalanceMutator {
	return &BalanceMutator{
		clientRepo:  clientRepo,
		historyRepo: historyRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		metrics:     metrics,
	}
}

// LockClient takes the client row lock and checks that the client may take
// new balance effects. Flows call it before touching invoice or transaction
// rows so that every unit of work acquires the client lock first.
func (m *BalanceMutator) LockClient(ctx context.Context, tx Transaction, clientID string) (*domain.Client, error) {
	client, err := m.clientRepo.GetByIDForUpdate(ctx, tx, clientID)
	if err != nil {
		return nil, err
	}

	if err := client.CheckMutable(); err != nil {
		return nil, err
	}

	return client, nil
}

// Apply adds mut.Delta to the client's balance and records the change.
func (m *BalanceMutator) Apply(ctx context.Context, tx Transaction, mut Mutation) (*MutationResult, error) {
	if err := mut.validate(); err != nil {
		m.countError(err)
		return nil, err
	}

	client, err := m.LockClient(ctx, tx, mut.ClientID)
	if err != nil {
		m.countError(err)
		return nil, err
	}

	at := mut.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	previous := client.Balance
	newBalance := client.ApplyDelta(mut.Delta)

	if err := m.clientRepo.UpdateBalance(ctx, tx, client.ID, newBalance, client.Version, at); err != nil {
		m.countError(err)
		return nil, err
	}

	entry := &domain.BalanceHistory{
		ID:              m.idGen.Generate(),
		ClientID:        client.ID,
		InvoiceID:       mut.InvoiceID,
		TransactionID:   mut.TransactionID,
		PreviousBalance: previous,
		Amount:          mut.Delta,
		NewBalance:      newBalance,
		Type:            mut.Type,
		Description:     mut.Description,
		Date:            at,
	}
	if err := m.historyRepo.Create(ctx, tx, entry); err != nil {
		m.countError(err)
		return nil, err
	}

	if m.outboxRepo != nil {
		if err := m.outboxRepo.Create(ctx, tx, balanceChangedEvent(m.idGen.Generate(), entry)); err != nil {
			return nil, err
		}
	}

	zerolog.Ctx(ctx).Debug().
		Str("client_id", client.ID).
		Str("history_id", entry.ID).
		Str("previous_balance", previous.String()).
		Str("delta", mut.Delta.String()).
		Str("new_balance", newBalance.String()).
		Msg("balance mutated")

	if m.metrics != nil {
		m.metrics.BalanceMutations.WithLabelValues(string(mut.Type)).Inc()
		delta, _ := mut.Delta.Abs().Float64()
		m.metrics.BalanceDelta.Observe(delta)
	}

	return &MutationResult{
		PreviousBalance: previous,
		NewBalance:      newBalance,
		HistoryID:       entry.ID,
	}, nil
}

func (m *BalanceMutator) countError(err error) {
	if m.metrics == nil {
		return
	}

	switch {
	case errors.Is(err, domain.ErrConcurrentModification):
		m.metrics.MutationConflicts.Inc()
		m.metrics.MutationErrors.WithLabelValues("concurrent_modification").Inc()
	case errors.Is(err, domain.ErrClientNotFound):
		m.metrics.MutationErrors.WithLabelValues("client_not_found").Inc()
	case errors.Is(err, domain.ErrInvalidAmount), errors.Is(err, domain.ErrInvalidLedgerEntry):
		m.metrics.MutationErrors.WithLabelValues("invalid").Inc()
	default:
		m.metrics.MutationErrors.WithLabelValues("internal").Inc()
	}
}

func balanceChangedEvent(id string, entry *domain.BalanceHistory) *domain.OutboxEvent {
	sourceType, sourceID := domain.SourceInvoice, ""
	if entry.InvoiceID != nil {
		sourceID = *entry.InvoiceID
	} else if entry.TransactionID != nil {
		sourceType, sourceID = domain.SourceTransaction, *entry.TransactionID
	}

	payload := domain.BalanceChangedEvent{
		ClientID:        entry.ClientID,
		HistoryID:       entry.ID,
		PreviousBalance: entry.PreviousBalance.String(),
		Amount:          entry.Amount.String(),
		NewBalance:      entry.NewBalance.String(),
		Type:            string(entry.Type),
		SourceType:      string(sourceType),
		SourceID:        sourceID,
	}

	return &domain.OutboxEvent{
		ID:            id,
		AggregateID:   entry.ClientID,
		AggregateType: domain.AggregateTypeClient,
		EventType:     domain.EventTypeBalanceChanged,
		Payload:       payload.Payload(),
		CreatedAt:     entry.Date,
	}
}
