package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bizledger/internal/domain"
	"github.com/iho/bizledger/internal/infrastructure/metrics"
)

// ClientUseCase handles client lifecycle operations.
type ClientUseCase struct {
	uow        *UnitOfWork
	clientRepo ClientRepository
	outboxRepo OutboxRepository
	auditRepo  AuditRepository
	idGen      IDGenerator
	metrics    *metrics.Metrics
}

// NewClientUseCase creates a new ClientUseCase.
func NewClientUseCase(
	uow *UnitOfWork,
	clientRepo ClientRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *ClientUseCase {
	return &ClientUseCase{
		uow:        uow,
		clientRepo: clientRepo,
		outboxRepo: outboxRepo,
		auditRepo:  auditRepo,
		idGen:      idGen,
		metrics:    metrics,
	}
}

// CreateClientInput represents input for creating a client.
type CreateClientInput struct {
	Name string
	Type domain.ClientType
}

// CreateClient creates an active client with a zero balance.
func (uc *ClientUseCase) CreateClient(ctx context.Context, input CreateClientInput) (*domain.Client, error) {
	if err := domain.ValidateClientName(input.Name); err != nil {
		return nil, err
	}
	if !input.Type.IsValid() {
		return nil, domain.ErrInvalidClientType
	}

	var client *domain.Client
	err := uc.uow.Do(ctx, func(ctx context.Context, tx Transaction) error {
		now := time.Now().UTC()
		c := &domain.Client{
			ID:        uc.idGen.Generate(),
			Name:      input.Name,
			Type:      input.Type,
			Balance:   decimal.Zero,
			Active:    true,
			Version:   0,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := uc.clientRepo.Create(ctx, tx, c); err != nil {
			return err
		}

		if uc.outboxRepo != nil {
			event := &domain.OutboxEvent{
				ID:            uc.idGen.Generate(),
				AggregateID:   c.ID,
				AggregateType: domain.AggregateTypeClient,
				EventType:     domain.EventTypeClientCreated,
				Payload: map[string]any{
					"client_id": c.ID,
					"name":      c.Name,
					"type":      string(c.Type),
				},
				CreatedAt: now,
			}
			if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
				return err
			}
		}

		client = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.ClientsCreated.Inc()
	}

	return client, nil
}

// GetClient retrieves a client by ID. Inactive clients are returned too.
func (uc *ClientUseCase) GetClient(ctx context.Context, id string) (*domain.Client, error) {
	return uc.clientRepo.GetByID(ctx, id)
}

// GetBalance returns the stored balance of a client.
func (uc *ClientUseCase) GetBalance(ctx context.Context, id string) (decimal.Decimal, error) {
	client, err := uc.clientRepo.GetByID(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	return client.Balance, nil
}

// ListClientsInput represents input for listing clients.
type ListClientsInput struct {
	Limit  int
	Offset int
}

// ListClients lists clients with pagination.
func (uc *ClientUseCase) ListClients(ctx context.Context, input ListClientsInput) ([]*domain.Client, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.clientRepo.List(ctx, limit, offset)
}

// DeactivateClient marks the client inactive. Later balance mutations for it
// fail with ErrClientNotFound.
func (uc *ClientUseCase) DeactivateClient(ctx context.Context, id string) (*domain.Client, error) {
	var client *domain.Client
	err := uc.uow.Do(ctx, func(ctx context.Context, tx Transaction) error {
		c, err := uc.clientRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		before := domain.MarshalState(c)
		now := time.Now().UTC()
		if err := uc.clientRepo.SetActive(ctx, tx, id, false, now); err != nil {
			return err
		}
		c.Active = false
		c.UpdatedAt = now

		if err := uc.audit(ctx, tx, domain.AuditActionClientDeactivate, id, before, domain.MarshalState(c)); err != nil {
			return err
		}

		client = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	return client, nil
}

// DeleteClient removes the client. Its invoices, transactions and balance
// history go with it through the foreign key cascade.
func (uc *ClientUseCase) DeleteClient(ctx context.Context, id string) error {
	err := uc.uow.Do(ctx, func(ctx context.Context, tx Transaction) error {
		c, err := uc.clientRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		if err := uc.clientRepo.Delete(ctx, tx, id); err != nil {
			return err
		}

		return uc.audit(ctx, tx, domain.AuditActionClientDelete, id, domain.MarshalState(c), nil)
	})
	if err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.ClientsDeleted.Inc()
	}

	return nil
}

func (uc *ClientUseCase) audit(ctx context.Context, tx Transaction, action domain.AuditAction, clientID string, before, after domain.JSON) error {
	if uc.auditRepo == nil {
		return nil
	}

	log := &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		Action:       string(action),
		ResourceType: domain.AuditResourceClient,
		ResourceID:   clientID,
		RequestID:    domain.RequestIDFromContext(ctx),
		BeforeState:  before,
		AfterState:   after,
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	}
	if err := uc.auditRepo.CreateTx(ctx, tx, log); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.AuditLogsCreated.WithLabelValues(log.Action, log.Status).Inc()
	}
	return nil
}
