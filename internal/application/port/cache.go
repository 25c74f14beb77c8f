package port

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"cryptofolio/internal/domain"
)

// PriceCache holds the latest observed price per symbol. Entries are
// overwritten unconditionally and never expire; a stale entry from a dead
// feed looks like a live one, so freshness-sensitive callers must check
// LastUpdated. Implementations must be safe for concurrent use by the
// ingestion goroutine and arbitrarily many readers.
type PriceCache interface {
	Put(ctx context.Context, symbol string, price decimal.Decimal, at time.Time) error
	// Get returns the cached entry for symbol, or ok=false when absent.
	Get(ctx context.Context, symbol string) (entry domain.CacheEntry, ok bool, err error)
}
