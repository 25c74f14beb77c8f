package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PricePoint is one observed price for a trading pair. Rows are append-only;
// the history table is never updated in place.
type PricePoint struct {
	Symbol     string // quote-paired, lower-case, e.g. "btcusdt"
	Price      decimal.Decimal
	ObservedAt time.Time
}

// CacheEntry is the volatile latest-price record kept per symbol. It is lost
// on restart; callers that care about freshness must check LastUpdated.
type CacheEntry struct {
	Symbol      string
	Price       decimal.Decimal
	LastUpdated time.Time
}

// AssetPosition is one held asset inside a portfolio. Amount is never
// negative; a position whose amount reaches exactly zero is removed from the
// portfolio instead of being kept around.
type AssetPosition struct {
	Symbol        string
	Amount        decimal.Decimal
	PurchasePrice decimal.Decimal
}

// Portfolio groups the asset positions of one owner. Assets keep insertion
// order and hold at most one position per symbol.
type Portfolio struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Name        string
	Description string
	Assets      []AssetPosition
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TransactionType is the kind of ledger mutation requested.
type TransactionType string

const (
	TransactionBuy      TransactionType = "BUY"
	TransactionSell     TransactionType = "SELL"
	TransactionTransfer TransactionType = "TRANSFER"
)

// Valid reports whether t is one of the accepted transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionBuy, TransactionSell, TransactionTransfer:
		return true
	}
	return false
}

// Transaction is the immutable audit record written in lock-step with the
// position change it caused.
type Transaction struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	PortfolioID uuid.UUID
	Symbol      string
	Type        TransactionType
	Amount      decimal.Decimal
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
	OccurredAt  time.Time
}

// PNLResult is a derived row of the profit/loss report. It is recomputed on
// every request and never persisted.
type PNLResult struct {
	Symbol            string
	Amount            decimal.Decimal
	PurchasePrice     decimal.Decimal
	LatestPrice       decimal.Decimal
	ProfitLoss        decimal.Decimal
	ProfitLossPercent string
}

// AlertDirection tells which way the price must cross the target.
type AlertDirection string

const (
	AlertAbove AlertDirection = "above"
	AlertBelow AlertDirection = "below"
)

// AlertStatus is the lifecycle state of a price alert.
type AlertStatus string

const (
	AlertPending   AlertStatus = "pending"
	AlertTriggered AlertStatus = "triggered"
)

// PriceAlert is a stored alert definition. Evaluation and delivery are out of
// scope; records are only created and listed.
type PriceAlert struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Symbol      string
	TargetPrice decimal.Decimal
	Direction   AlertDirection
	Status      AlertStatus
	CreatedAt   time.Time
}
