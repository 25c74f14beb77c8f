package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"cryptofolio/internal/domain"
)

// PriceHistory is the durable, append-only record of price observations.
type PriceHistory interface {
	Append(ctx context.Context, p domain.PricePoint) error
	// Latest returns the most recent observation for the quote-paired
	// symbol, or domain.ErrPriceUnavailable when none exists.
	Latest(ctx context.Context, symbol string) (domain.PricePoint, error)
	Range(ctx context.Context, symbol string, from, to time.Time) ([]domain.PricePoint, error)
}

// LedgerTx is the set of operations available inside one atomic ledger unit.
type LedgerTx interface {
	InsertTransaction(ctx context.Context, tx domain.Transaction) error
	// GetPortfolio loads the portfolio with its positions in insertion
	// order, or domain.ErrPortfolioNotFound.
	GetPortfolio(ctx context.Context, id uuid.UUID) (*domain.Portfolio, error)
	SavePortfolio(ctx context.Context, p *domain.Portfolio) error
}

// LedgerStore runs fn inside an atomic unit scoped to one portfolio and the
// transaction log. Any error from fn aborts the whole unit; both the
// transaction record and the portfolio persist together or not at all.
type LedgerStore interface {
	Update(ctx context.Context, portfolioID uuid.UUID, fn func(tx LedgerTx) error) error
}

// PortfolioRepository covers portfolio CRUD outside the ledger unit. Asset
// positions are mutated only through LedgerStore.
type PortfolioRepository interface {
	Create(ctx context.Context, p *domain.Portfolio) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Portfolio, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Portfolio, error)
	// UpdateMeta changes name and description only.
	UpdateMeta(ctx context.Context, id uuid.UUID, name, description string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// TransactionRepository reads the immutable transaction log.
type TransactionRepository interface {
	// ListByOwner returns the owner's transactions, newest first.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Transaction, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Transaction, error)
	// Delete removes an audit record without rebalancing positions.
	Delete(ctx context.Context, id uuid.UUID) error
}

// AlertRepository stores price alert definitions.
type AlertRepository interface {
	Create(ctx context.Context, a *domain.PriceAlert) error
	ListPendingByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.PriceAlert, error)
	ListAll(ctx context.Context) ([]domain.PriceAlert, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
