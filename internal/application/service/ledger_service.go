package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cryptofolio/internal/application/port"
	"cryptofolio/internal/domain"
)

// LedgerService applies buy/sell/transfer requests to a portfolio. The
// transaction record and the position change form one atomic unit: the store
// commits both or neither. On top of the store transaction, a per-portfolio
// mutex serializes concurrent mutations of the same portfolio so two SELLs
// cannot both pass the balance check; different portfolios run in parallel.
type LedgerService struct {
	store port.LedgerStore

	mu    sync.Mutex
	locks map[uuid.UUID]*portfolioLock
}

// portfolioLock is refcounted; the entry is removed once the last holder
// releases it, so the table stays bounded by in-flight mutations rather than
// growing with every portfolio the process has ever touched.
type portfolioLock struct {
	mu   sync.Mutex
	refs int
}

func NewLedgerService(store port.LedgerStore) *LedgerService {
	return &LedgerService{
		store: store,
		locks: make(map[uuid.UUID]*portfolioLock),
	}
}

func (s *LedgerService) lockPortfolio(id uuid.UUID) *portfolioLock {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &portfolioLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return l
}

func (s *LedgerService) unlockPortfolio(id uuid.UUID, l *portfolioLock) {
	l.mu.Unlock()

	s.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(s.locks, id)
	}
	s.mu.Unlock()
}

// ApplyTransaction records one transaction and mutates the portfolio's
// positions accordingly.
//
// BUY adds to an existing position or creates one with unitPrice as cost
// basis (an existing basis is kept, not re-averaged). SELL must be covered by
// the held amount or the whole unit aborts with ErrInsufficientBalance; a
// position drained to exactly zero is removed. TRANSFER is recorded in the
// log with no position effect.
func (s *LedgerService) ApplyTransaction(ctx context.Context, ownerID, portfolioID uuid.UUID, symbol string, typ domain.TransactionType, amount, unitPrice decimal.Decimal) (*domain.Transaction, error) {
	if !typ.Valid() {
		return nil, fmt.Errorf("%w: unknown type %q", domain.ErrInvalidTransaction, typ)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidTransaction)
	}
	if !unitPrice.IsPositive() {
		return nil, fmt.Errorf("%w: unit price must be positive", domain.ErrInvalidTransaction)
	}

	sym := domain.NormalizeSymbol(symbol)
	if sym == "" {
		return nil, fmt.Errorf("%w: symbol empty", domain.ErrInvalidTransaction)
	}

	record := domain.Transaction{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		PortfolioID: portfolioID,
		Symbol:      sym,
		Type:        typ,
		Amount:      amount,
		UnitPrice:   unitPrice,
		Total:       amount.Mul(unitPrice),
		OccurredAt:  time.Now(),
	}

	lock := s.lockPortfolio(portfolioID)
	defer s.unlockPortfolio(portfolioID, lock)

	err := s.store.Update(ctx, portfolioID, func(tx port.LedgerTx) error {
		if err := tx.InsertTransaction(ctx, record); err != nil {
			return err
		}

		portfolio, err := tx.GetPortfolio(ctx, portfolioID)
		if err != nil {
			return err
		}

		switch typ {
		case domain.TransactionBuy:
			portfolio.ApplyBuy(sym, amount, unitPrice)
		case domain.TransactionSell:
			if err := portfolio.ApplySell(sym, amount); err != nil {
				return err
			}
		case domain.TransactionTransfer:
			// audit record only
		}

		return tx.SavePortfolio(ctx, portfolio)
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}
