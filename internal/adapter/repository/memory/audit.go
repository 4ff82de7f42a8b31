package memory

import (
	"context"

	"github.com/iho/bizledger/internal/domain"
	"github.com/iho/bizledger/internal/usecase"
)

// AuditRepository implements usecase.AuditRepository.
type AuditRepository struct {
	s *Store
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(s *Store) *AuditRepository {
	return &AuditRepository{s: s}
}

// Create stores an audit log outside any transaction.
func (r *AuditRepository) Create(_ context.Context, log *domain.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.audit = append(r.s.audit, *log)
	return nil
}

// CreateTx stores an audit log that is dropped if tx rolls back.
func (r *AuditRepository) CreateTx(_ context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	t, err := asTx(r.s, tx)
	if err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.audit = append(r.s.audit, *log)
	id := log.ID
	t.onRollback(func() {
		for i := range r.s.audit {
			if r.s.audit[i].ID == id {
				r.s.audit = append(r.s.audit[:i], r.s.audit[i+1:]...)
				return
			}
		}
	})
	return nil
}

// List returns audit logs matching the filter, newest first.
func (r *AuditRepository) List(_ context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := make([]*domain.AuditLog, 0)
	for i := len(r.s.audit) - 1; i >= 0; i-- {
		log := r.s.audit[i]
		if !matches(log, filter) {
			continue
		}
		matched = append(matched, &log)
	}

	if filter.Offset >= len(matched) {
		return []*domain.AuditLog{}, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func matches(log domain.AuditLog, f domain.AuditFilter) bool {
	switch {
	case f.Action != "" && log.Action != f.Action:
		return false
	case f.ResourceType != "" && log.ResourceType != f.ResourceType:
		return false
	case f.ResourceID != "" && log.ResourceID != f.ResourceID:
		return false
	case f.Status != "" && log.Status != f.Status:
		return false
	case f.StartDate != nil && log.CreatedAt.Before(*f.StartDate):
		return false
	case f.EndDate != nil && log.CreatedAt.After(*f.EndDate):
		return false
	}
	return true
}

var (
	_ usecase.ClientRepository         = (*ClientRepository)(nil)
	_ usecase.InvoiceRepository        = (*InvoiceRepository)(nil)
	_ usecase.TransactionRepository    = (*TransactionRepository)(nil)
	_ usecase.BalanceHistoryRepository = (*BalanceHistoryRepository)(nil)
	_ usecase.LedgerRepository         = (*LedgerRepository)(nil)
	_ usecase.OutboxRepository         = (*OutboxRepository)(nil)
	_ usecase.AuditRepository          = (*AuditRepository)(nil)
	_ usecase.TransactionManager       = (*Store)(nil)
)
