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

// ClientRepository implements usecase.ClientRepository.
type ClientRepository struct {
	queries *generated.Queries
}

// NewClientRepository creates a new ClientRepository.
func NewClientRepository(db generated.DBTX) *ClientRepository {
	return &ClientRepository{queries: generated.New(db)}
}

// Create inserts a new client within a transaction.
func (r *ClientRepository) Create(ctx context.Context, tx usecase.Transaction, client *domain.Client) error {
	q, err := queriesFor(tx)
	if err != nil {
		return err
	}

	_, err = q.CreateClient(ctx, generated.CreateClientParams{
		ID:        client.ID,
		Name:      client.Name,
		Type:      string(client.Type),
		Balance:   decimalToNumeric(client.Balance),
		Active:    client.Active,
		Version:   client.Version,
		CreatedAt: timeToPgTimestamptz(client.CreatedAt),
		UpdatedAt: timeToPgTimestamptz(client.UpdatedAt),
	})

	return err
}

// GetByID retrieves a client by ID.
func (r *ClientRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	row, err := r.queries.GetClientByID(ctx, id)
	if err != nil {
		return nil, clientErr(err, id)
	}

	return rowToClient(row), nil
}

// GetByIDForUpdate retrieves a client and locks its row until the
// transaction ends.
func (r *ClientRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Client, error) {
	q, err := queriesFor(tx)
	if err != nil {
		return nil, err
	}

	row, err := q.GetClientByIDForUpdate(ctx, id)
	if err != nil {
		return nil, clientErr(err, id)
	}

	return rowToClient(row), nil
}

// UpdateBalance writes the balance if the stored version still matches.
func (r *ClientRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, expectedVersion int64, updatedAt time.Time) error {
	q, err := queriesFor(tx)
	if err != nil {
		return err
	}

	n, err := q.UpdateClientBalance(ctx, generated.UpdateClientBalanceParams{
		ID:        id,
		Balance:   decimalToNumeric(balance),
		UpdatedAt: timeToPgTimestamptz(updatedAt),
		Version:   expectedVersion,
	})
	if err != nil {
		return err
	}

	if n == 0 {
		return fmt.Errorf("%w: client %s version %d", domain.ErrConcurrentModification, id, expectedVersion)
	}

	return nil
}

// SetActive toggles the active flag.
func (r *ClientRepository) SetActive(ctx context.Context, tx usecase.Transaction, id string, active bool, updatedAt time.Time) error {
	q, err := queriesFor(tx)
	if err != nil {
		return err
	}

	n, err := q.SetClientActive(ctx, generated.SetClientActiveParams{
		ID:        id,
		Active:    active,
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		return err
	}

	if n == 0 {
		return domain.ErrClientNotFound
	}

	return nil
}

// Delete removes the client. Invoices, transactions and history rows go
// with it through ON DELETE CASCADE.
func (r *ClientRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	q, err := queriesFor(tx)
	if err != nil {
		return err
	}

	n, err := q.DeleteClient(ctx, id)
	if err != nil {
		return err
	}

	if n == 0 {
		return domain.ErrClientNotFound
	}

	return nil
}

// List returns clients ordered by creation time.
func (r *ClientRepository) List(ctx context.Context, limit, offset int) ([]*domain.Client, error) {
	rows, err := r.queries.ListClients(ctx, generated.ListClientsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	clients := make([]*domain.Client, 0, len(rows))
	for _, row := range rows {
		clients = append(clients, rowToClient(row))
	}

	return clients, nil
}

func clientErr(err error, id string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", domain.ErrClientNotFound, id)
	}
	return err
}

func rowToClient(row generated.Client) *domain.Client {
	return &domain.Client{
		ID:        row.ID,
		Name:      row.Name,
		Type:      domain.ClientType(row.Type),
		Balance:   numericToDecimal(row.Balance),
		Active:    row.Active,
		Version:   row.Version,
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
}
