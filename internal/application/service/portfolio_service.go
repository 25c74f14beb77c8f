package service

import (
	"context"

	"github.com/google/uuid"

	"cryptofolio/internal/application/port"
	"cryptofolio/internal/domain"
)

// PortfolioService covers portfolio lifecycle. Asset positions are never
// mutated here; that is the ledger's job.
type PortfolioService struct {
	repo port.PortfolioRepository
}

func NewPortfolioService(repo port.PortfolioRepository) *PortfolioService {
	return &PortfolioService{repo: repo}
}

func (s *PortfolioService) Create(ctx context.Context, ownerID uuid.UUID, name, description string) (*domain.Portfolio, error) {
	p := &domain.Portfolio{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PortfolioService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Portfolio, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *PortfolioService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Portfolio, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *PortfolioService) UpdateMeta(ctx context.Context, id uuid.UUID, name, description string) error {
	return s.repo.UpdateMeta(ctx, id, name, description)
}

func (s *PortfolioService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
