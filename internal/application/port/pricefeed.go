package port

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Tick is one inbound price update from the upstream feed.
type Tick struct {
	Symbol   string          // quote-paired, lower-case, e.g. "btcusdt"
	PriceStr string          // raw string as received
	Price    decimal.Decimal // parsed price
	At       time.Time
}

// PriceFeed is a live subscription to an upstream streaming price source.
// The returned channel stays open across reconnects and closes only when ctx
// is cancelled.
type PriceFeed interface {
	Subscribe(ctx context.Context, symbols []string) (<-chan Tick, error)
}
