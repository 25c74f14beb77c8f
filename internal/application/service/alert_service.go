package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cryptofolio/internal/application/port"
	"cryptofolio/internal/domain"
)

// AlertService stores price alert definitions. Nothing evaluates or triggers
// them yet; this is the storage surface only.
type AlertService struct {
	repo port.AlertRepository
}

func NewAlertService(repo port.AlertRepository) *AlertService {
	return &AlertService{repo: repo}
}

func (s *AlertService) Create(ctx context.Context, ownerID uuid.UUID, symbol string, targetPrice decimal.Decimal, direction domain.AlertDirection) (*domain.PriceAlert, error) {
	a := &domain.PriceAlert{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Symbol:      domain.PairSymbol(symbol),
		TargetPrice: targetPrice,
		Direction:   direction,
		Status:      domain.AlertPending,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// ListPendingByOwner returns the owner's alerts that have not triggered.
func (s *AlertService) ListPendingByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.PriceAlert, error) {
	return s.repo.ListPendingByOwner(ctx, ownerID)
}

// ListAll returns every alert regardless of owner or status.
func (s *AlertService) ListAll(ctx context.Context) ([]domain.PriceAlert, error) {
	return s.repo.ListAll(ctx)
}

func (s *AlertService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
