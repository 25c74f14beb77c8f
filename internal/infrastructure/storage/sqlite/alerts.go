package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cryptofolio/internal/application/port"
	"cryptofolio/internal/domain"
)

// AlertRepo stores price alert definitions. No evaluation runs against these
// rows; they are written and listed only.
type AlertRepo struct {
	db *sql.DB
}

func (r *AlertRepo) Create(ctx context.Context, a *domain.PriceAlert) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO price_alerts(id, owner_id, symbol, target_price, direction, status, created_at)
		 VALUES(?, ?, ?, ?, ?, ?, ?)`,
		a.ID.String(), a.OwnerID.String(), a.Symbol, a.TargetPrice.String(),
		string(a.Direction), string(a.Status), a.CreatedAt.UnixMilli())
	return err
}

func (r *AlertRepo) ListPendingByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.PriceAlert, error) {
	return r.list(ctx,
		`SELECT id, owner_id, symbol, target_price, direction, status, created_at
		 FROM price_alerts WHERE owner_id=? AND status=? ORDER BY created_at ASC, id ASC`,
		ownerID.String(), string(domain.AlertPending))
}

func (r *AlertRepo) ListAll(ctx context.Context) ([]domain.PriceAlert, error) {
	return r.list(ctx,
		`SELECT id, owner_id, symbol, target_price, direction, status, created_at
		 FROM price_alerts ORDER BY created_at ASC, id ASC`)
}

func (r *AlertRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM price_alerts WHERE id=?`, id.String())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrAlertNotFound
	}
	return nil
}

func (r *AlertRepo) list(ctx context.Context, query string, args ...any) ([]domain.PriceAlert, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PriceAlert
	for rows.Next() {
		var a domain.PriceAlert
		var id, owner, target, direction, status string
		var ts int64
		if err := rows.Scan(&id, &owner, &a.Symbol, &target, &direction, &status, &ts); err != nil {
			return nil, err
		}
		if a.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		if a.OwnerID, err = uuid.Parse(owner); err != nil {
			return nil, err
		}
		if a.TargetPrice, err = decimal.NewFromString(target); err != nil {
			return nil, fmt.Errorf("parse stored target price: %w", err)
		}
		a.Direction = domain.AlertDirection(direction)
		a.Status = domain.AlertStatus(status)
		a.CreatedAt = time.UnixMilli(ts)
		out = append(out, a)
	}
	return out, rows.Err()
}

var _ port.AlertRepository = (*AlertRepo)(nil)
