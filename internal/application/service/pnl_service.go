package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cryptofolio/internal/application/port"
	"cryptofolio/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// PNLService computes unrealized profit/loss from held positions and the
// durable price history. The volatile cache is deliberately not consulted:
// valuation follows what has actually been flushed to storage.
type PNLService struct {
	portfolios port.PortfolioRepository
	history    port.PriceHistory
}

func NewPNLService(portfolios port.PortfolioRepository, history port.PriceHistory) *PNLService {
	return &PNLService{portfolios: portfolios, history: history}
}

// ComputePNL returns one row per priced position across all of the owner's
// portfolios, in portfolio then position insertion order. Positions without a
// known price are skipped, as are positions with a zero cost basis (which
// would otherwise divide by zero).
func (s *PNLService) ComputePNL(ctx context.Context, ownerID uuid.UUID) ([]domain.PNLResult, error) {
	portfolios, err := s.portfolios.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	results := []domain.PNLResult{}
	for _, portfolio := range portfolios {
		for _, asset := range portfolio.Assets {
			paired := domain.PairSymbol(asset.Symbol)

			latest, err := s.history.Latest(ctx, paired)
			if errors.Is(err, domain.ErrPriceUnavailable) {
				continue
			}
			if err != nil {
				return nil, err
			}
			if asset.PurchasePrice.IsZero() {
				continue
			}

			diff := latest.Price.Sub(asset.PurchasePrice)
			results = append(results, domain.PNLResult{
				Symbol:            asset.Symbol,
				Amount:            asset.Amount,
				PurchasePrice:     asset.PurchasePrice,
				LatestPrice:       latest.Price,
				ProfitLoss:        diff.Mul(asset.Amount),
				ProfitLossPercent: diff.Div(asset.PurchasePrice).Mul(hundred).StringFixed(2) + "%",
			})
		}
	}
	return results, nil
}
