package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"cryptofolio/internal/application/port"
	"cryptofolio/internal/domain"
)

// Repo is the sqlite-backed durable store: price history, portfolios with
// their asset positions, the transaction log and price alerts. Decimals are
// stored as TEXT to avoid float drift; timestamps as unix milliseconds.
// Per-entity views are exposed through Portfolios/Transactions/Alerts.
type Repo struct {
	db *sql.DB
}

func New(path string) (*Repo, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		_ = os.MkdirAll(dir, 0o755)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// modernc sqlite is single-writer; one connection also serializes the
	// ledger units at the database level.
	db.SetMaxOpenConns(1)

	r := &Repo{db: db}
	if err := r.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) Portfolios() *PortfolioRepo     { return &PortfolioRepo{db: r.db} }
func (r *Repo) Transactions() *TransactionRepo { return &TransactionRepo{db: r.db} }
func (r *Repo) Alerts() *AlertRepo             { return &AlertRepo{db: r.db} }

func (r *Repo) migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS price_history (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  symbol TEXT NOT NULL,
  price TEXT NOT NULL,
  observed_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_price_history_symbol_ts ON price_history(symbol, observed_at);

CREATE TABLE IF NOT EXISTS portfolios (
  id TEXT PRIMARY KEY,
  owner_id TEXT NOT NULL,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_portfolios_owner ON portfolios(owner_id);

CREATE TABLE IF NOT EXISTS portfolio_assets (
  portfolio_id TEXT NOT NULL,
  symbol TEXT NOT NULL,
  amount TEXT NOT NULL,
  purchase_price TEXT NOT NULL,
  ord INTEGER NOT NULL,
  PRIMARY KEY (portfolio_id, symbol)
);

CREATE TABLE IF NOT EXISTS transactions (
  id TEXT PRIMARY KEY,
  owner_id TEXT NOT NULL,
  portfolio_id TEXT NOT NULL,
  symbol TEXT NOT NULL,
  type TEXT NOT NULL,
  amount TEXT NOT NULL,
  unit_price TEXT NOT NULL,
  total TEXT NOT NULL,
  occurred_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transactions_owner ON transactions(owner_id, occurred_at);
CREATE INDEX IF NOT EXISTS idx_transactions_portfolio ON transactions(portfolio_id);

CREATE TABLE IF NOT EXISTS price_alerts (
  id TEXT PRIMARY KEY,
  owner_id TEXT NOT NULL,
  symbol TEXT NOT NULL,
  target_price TEXT NOT NULL,
  direction TEXT NOT NULL,
  status TEXT NOT NULL,
  created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_price_alerts_owner ON price_alerts(owner_id, status);
`)
	return err
}

func (r *Repo) Append(ctx context.Context, p domain.PricePoint) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO price_history(symbol, price, observed_at) VALUES(?, ?, ?)`,
		p.Symbol, p.Price.String(), p.ObservedAt.UnixMilli())
	return err
}

func (r *Repo) Latest(ctx context.Context, symbol string) (domain.PricePoint, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT price, observed_at FROM price_history WHERE symbol=? ORDER BY observed_at DESC, id DESC LIMIT 1`,
		symbol)

	var priceStr string
	var ts int64
	if err := row.Scan(&priceStr, &ts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.PricePoint{}, domain.ErrPriceUnavailable
		}
		return domain.PricePoint{}, err
	}
	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return domain.PricePoint{}, fmt.Errorf("parse stored price: %w", err)
	}
	return domain.PricePoint{Symbol: symbol, Price: price, ObservedAt: time.UnixMilli(ts)}, nil
}

func (r *Repo) Range(ctx context.Context, symbol string, from, to time.Time) ([]domain.PricePoint, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT price, observed_at FROM price_history
		 WHERE symbol=? AND observed_at>=? AND observed_at<=?
		 ORDER BY observed_at ASC, id ASC`,
		symbol, from.UnixMilli(), to.UnixMilli())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PricePoint
	for rows.Next() {
		var priceStr string
		var ts int64
		if err := rows.Scan(&priceStr, &ts); err != nil {
			return nil, err
		}
		price, err := decimal.NewFromString(priceStr)
		if err != nil {
			return nil, fmt.Errorf("parse stored price: %w", err)
		}
		out = append(out, domain.PricePoint{Symbol: symbol, Price: price, ObservedAt: time.UnixMilli(ts)})
	}
	return out, rows.Err()
}

var _ port.PriceHistory = (*Repo)(nil)
