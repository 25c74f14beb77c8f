package service

import (
	"context"

	"github.com/google/uuid"

	"cryptofolio/internal/application/port"
	"cryptofolio/internal/domain"
)

// TransactionService is the read/delete surface over the transaction log.
// New records only ever come from LedgerService.ApplyTransaction.
type TransactionService struct {
	repo port.TransactionRepository
}

func NewTransactionService(repo port.TransactionRepository) *TransactionService {
	return &TransactionService{repo: repo}
}

// ListByOwner returns the owner's transactions, newest first.
func (s *TransactionService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Transaction, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *TransactionService) GetByID(ctx context.Context, id uuid.UUID) (domain.Transaction, error) {
	return s.repo.GetByID(ctx, id)
}

// Delete removes an audit record. Deleting a transaction does not adjust the
// portfolio balances it once produced.
func (s *TransactionService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
