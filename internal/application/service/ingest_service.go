package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"cryptofolio/internal/application/port"
	"cryptofolio/internal/domain"
)

// IngestService consumes the upstream tick stream and keeps the price cache
// and the durable history current. Cache updates happen inline on the tick
// path; history writes are handed to a separate persistence worker through a
// buffered queue so storage latency never stalls tick processing.
type IngestService struct {
	feed      port.PriceFeed
	cache     port.PriceCache
	history   port.PriceHistory
	symbols   []string
	queueSize int
}

func NewIngestService(feed port.PriceFeed, cache port.PriceCache, history port.PriceHistory, symbols []string, queueSize int) *IngestService {
	if queueSize <= 0 {
		queueSize = 1024
	}
	return &IngestService{
		feed:      feed,
		cache:     cache,
		history:   history,
		symbols:   symbols,
		queueSize: queueSize,
	}
}

// Run blocks until ctx is cancelled. Feed and persistence failures are logged
// and contained here; they never propagate to ledger or PNL callers.
func (s *IngestService) Run(ctx context.Context) error {
	ticks, err := s.feed.Subscribe(ctx, s.symbols)
	if err != nil {
		return err
	}

	writes := make(chan domain.PricePoint, s.queueSize)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		// detached from cancellation: the drain after close must still
		// reach storage
		s.persistLoop(context.WithoutCancel(ctx), writes)
	}()

	for tick := range ticks {
		if err := s.cache.Put(ctx, tick.Symbol, tick.Price, tick.At); err != nil {
			log.Error().Err(err).Str("symbol", tick.Symbol).Msg("cache update failed")
		}

		point := domain.PricePoint{Symbol: tick.Symbol, Price: tick.Price, ObservedAt: tick.At}
		select {
		case writes <- point:
		default:
			// queue full: drop the history write, the cache already has the tick
			log.Warn().Str("symbol", tick.Symbol).Msg("history queue full, dropping write")
		}
	}

	close(writes)
	wg.Wait()
	return ctx.Err()
}

// persistLoop drains queued history writes. Failures are logged and swallowed;
// at-most-once delivery to the durable store is the contract here.
func (s *IngestService) persistLoop(ctx context.Context, writes <-chan domain.PricePoint) {
	for p := range writes {
		if err := s.history.Append(ctx, p); err != nil {
			log.Error().Err(err).Str("symbol", p.Symbol).Msg("history write failed")
		}
	}
}
