package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"

	"cryptofolio/internal/application/port"
	"cryptofolio/internal/domain"
)

// Repo is a postgres-backed price history, used as a second durable sink
// behind the composite writer or as the primary history on shared deployments.
type Repo struct {
	db *sql.DB
}

func New(dsn string) (*Repo, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	r := &Repo{db: db}
	if err := r.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS price_history (
  id BIGSERIAL PRIMARY KEY,
  symbol TEXT NOT NULL,
  price NUMERIC NOT NULL,
  observed_at BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_price_history_symbol_ts ON price_history(symbol, observed_at);
`)
	return err
}

func (r *Repo) Append(ctx context.Context, p domain.PricePoint) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO price_history(symbol, price, observed_at) VALUES($1, $2, $3)`,
		p.Symbol, p.Price.String(), p.ObservedAt.UnixMilli())
	return err
}

func (r *Repo) Latest(ctx context.Context, symbol string) (domain.PricePoint, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT price, observed_at FROM price_history WHERE symbol=$1 ORDER BY observed_at DESC, id DESC LIMIT 1`,
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
		 WHERE symbol=$1 AND observed_at>=$2 AND observed_at<=$3
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
