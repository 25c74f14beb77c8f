package service

import (
	"context"
	"time"

	"cryptofolio/internal/application/port"
	"cryptofolio/internal/domain"
)

// PriceService is the fast-path price lookup surface over the cache, with
// history queries for callers that need flushed data.
type PriceService struct {
	cache   port.PriceCache
	history port.PriceHistory
}

func NewPriceService(cache port.PriceCache, history port.PriceHistory) *PriceService {
	return &PriceService{cache: cache, history: history}
}

// GetCachedPrice returns the latest cached entry for the quote-paired symbol,
// or domain.ErrPriceUnavailable when the feed has not seen it yet.
func (s *PriceService) GetCachedPrice(ctx context.Context, symbol string) (domain.CacheEntry, error) {
	entry, ok, err := s.cache.Get(ctx, domain.PairSymbol(symbol))
	if err != nil {
		return domain.CacheEntry{}, err
	}
	if !ok {
		return domain.CacheEntry{}, domain.ErrPriceUnavailable
	}
	return entry, nil
}

// LatestHistoryPrice returns the freshest durable observation for the symbol.
func (s *PriceService) LatestHistoryPrice(ctx context.Context, symbol string) (domain.PricePoint, error) {
	return s.history.Latest(ctx, domain.PairSymbol(symbol))
}

// HistoryRange returns observations between from and to, oldest first.
func (s *PriceService) HistoryRange(ctx context.Context, symbol string, from, to time.Time) ([]domain.PricePoint, error) {
	return s.history.Range(ctx, domain.PairSymbol(symbol), from, to)
}
