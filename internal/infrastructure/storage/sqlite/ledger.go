package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cryptofolio/internal/application/port"
	"cryptofolio/internal/domain"
)

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx, so the
// portfolio load/save code can run both inside and outside a ledger unit.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Update runs fn inside one sql transaction. The transaction record and the
// portfolio mutation commit together or roll back together.
func (r *Repo) Update(ctx context.Context, portfolioID uuid.UUID, fn func(tx port.LedgerTx) error) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ledger unit: %w", err)
	}
	defer dbTx.Rollback()

	if err := fn(&ledgerTx{tx: dbTx}); err != nil {
		return err
	}
	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("commit ledger unit: %w", err)
	}
	return nil
}

type ledgerTx struct {
	tx *sql.Tx
}

func (l *ledgerTx) InsertTransaction(ctx context.Context, t domain.Transaction) error {
	return insertTransaction(ctx, l.tx, t)
}

func (l *ledgerTx) GetPortfolio(ctx context.Context, id uuid.UUID) (*domain.Portfolio, error) {
	return loadPortfolio(ctx, l.tx, id)
}

func (l *ledgerTx) SavePortfolio(ctx context.Context, p *domain.Portfolio) error {
	return savePortfolio(ctx, l.tx, p)
}

var _ port.LedgerTx = (*ledgerTx)(nil)
var _ port.LedgerStore = (*Repo)(nil)

func insertTransaction(ctx context.Context, q querier, t domain.Transaction) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO transactions(id, owner_id, portfolio_id, symbol, type, amount, unit_price, total, occurred_at)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID.String(), t.OwnerID.String(), t.PortfolioID.String(), t.Symbol, string(t.Type),
		t.Amount.String(), t.UnitPrice.String(), t.Total.String(), t.OccurredAt.UnixMilli())
	return err
}

func loadPortfolio(ctx context.Context, q querier, id uuid.UUID) (*domain.Portfolio, error) {
	row := q.QueryRowContext(ctx,
		`SELECT owner_id, name, description, created_at, updated_at FROM portfolios WHERE id=?`,
		id.String())

	var owner string
	var created, updated int64
	p := &domain.Portfolio{ID: id}
	if err := row.Scan(&owner, &p.Name, &p.Description, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPortfolioNotFound
		}
		return nil, err
	}
	ownerID, err := uuid.Parse(owner)
	if err != nil {
		return nil, err
	}
	p.OwnerID = ownerID
	p.CreatedAt = time.UnixMilli(created)
	p.UpdatedAt = time.UnixMilli(updated)

	rows, err := q.QueryContext(ctx,
		`SELECT symbol, amount, purchase_price FROM portfolio_assets WHERE portfolio_id=? ORDER BY ord ASC`,
		id.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var a domain.AssetPosition
		var amount, purchase string
		if err := rows.Scan(&a.Symbol, &amount, &purchase); err != nil {
			return nil, err
		}
		if a.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse stored amount: %w", err)
		}
		if a.PurchasePrice, err = decimal.NewFromString(purchase); err != nil {
			return nil, fmt.Errorf("parse stored purchase price: %w", err)
		}
		p.Assets = append(p.Assets, a)
	}
	return p, rows.Err()
}

// savePortfolio rewrites the asset rows wholesale. Portfolios hold a handful
// of positions, so replace-all is simpler than diffing and keeps ord dense.
func savePortfolio(ctx context.Context, q querier, p *domain.Portfolio) error {
	now := time.Now()
	res, err := q.ExecContext(ctx,
		`UPDATE portfolios SET name=?, description=?, updated_at=? WHERE id=?`,
		p.Name, p.Description, now.UnixMilli(), p.ID.String())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrPortfolioNotFound
	}

	if _, err := q.ExecContext(ctx, `DELETE FROM portfolio_assets WHERE portfolio_id=?`, p.ID.String()); err != nil {
		return err
	}
	for i, a := range p.Assets {
		if _, err := q.ExecContext(ctx,
			`INSERT INTO portfolio_assets(portfolio_id, symbol, amount, purchase_price, ord) VALUES(?, ?, ?, ?, ?)`,
			p.ID.String(), a.Symbol, a.Amount.String(), a.PurchasePrice.String(), i); err != nil {
			return err
		}
	}
	p.UpdatedAt = now
	return nil
}

// PortfolioRepo covers portfolio CRUD outside the ledger unit.
type PortfolioRepo struct {
	db *sql.DB
}

func (r *PortfolioRepo) Create(ctx context.Context, p *domain.Portfolio) error {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO portfolios(id, owner_id, name, description, created_at, updated_at) VALUES(?, ?, ?, ?, ?, ?)`,
		p.ID.String(), p.OwnerID.String(), p.Name, p.Description, now.UnixMilli(), now.UnixMilli())
	if err != nil {
		return err
	}
	for i, a := range p.Assets {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO portfolio_assets(portfolio_id, symbol, amount, purchase_price, ord) VALUES(?, ?, ?, ?, ?)`,
			p.ID.String(), a.Symbol, a.Amount.String(), a.PurchasePrice.String(), i); err != nil {
			return err
		}
	}
	return nil
}

func (r *PortfolioRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Portfolio, error) {
	return loadPortfolio(ctx, r.db, id)
}

func (r *PortfolioRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Portfolio, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM portfolios WHERE owner_id=? ORDER BY created_at ASC, id ASC`,
		ownerID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]*domain.Portfolio, 0, len(ids))
	for _, id := range ids {
		p, err := loadPortfolio(ctx, r.db, id)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *PortfolioRepo) UpdateMeta(ctx context.Context, id uuid.UUID, name, description string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE portfolios SET name=?, description=?, updated_at=? WHERE id=?`,
		name, description, time.Now().UnixMilli(), id.String())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrPortfolioNotFound
	}
	return nil
}

func (r *PortfolioRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM portfolios WHERE id=?`, id.String())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrPortfolioNotFound
	}
	_, err = r.db.ExecContext(ctx, `DELETE FROM portfolio_assets WHERE portfolio_id=?`, id.String())
	return err
}

var _ port.PortfolioRepository = (*PortfolioRepo)(nil)

// TransactionRepo reads the immutable transaction log.
type TransactionRepo struct {
	db *sql.DB
}

const transactionColumns = `id, owner_id, portfolio_id, symbol, type, amount, unit_price, total, occurred_at`

func (r *TransactionRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE owner_id=? ORDER BY occurred_at DESC, id DESC`,
		ownerID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *TransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id=?`, id.String())
	if err != nil {
		return domain.Transaction{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return domain.Transaction{}, err
		}
		return domain.Transaction{}, domain.ErrTransactionNotFound
	}
	return scanTransaction(rows)
}

func (r *TransactionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id=?`, id.String())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

func scanTransaction(rows *sql.Rows) (domain.Transaction, error) {
	var t domain.Transaction
	var id, owner, portfolio, typ, amount, unitPrice, total string
	var ts int64
	if err := rows.Scan(&id, &owner, &portfolio, &t.Symbol, &typ, &amount, &unitPrice, &total, &ts); err != nil {
		return domain.Transaction{}, err
	}
	var err error
	if t.ID, err = uuid.Parse(id); err != nil {
		return domain.Transaction{}, err
	}
	if t.OwnerID, err = uuid.Parse(owner); err != nil {
		return domain.Transaction{}, err
	}
	if t.PortfolioID, err = uuid.Parse(portfolio); err != nil {
		return domain.Transaction{}, err
	}
	t.Type = domain.TransactionType(typ)
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return domain.Transaction{}, fmt.Errorf("parse stored amount: %w", err)
	}
	if t.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
		return domain.Transaction{}, fmt.Errorf("parse stored unit price: %w", err)
	}
	if t.Total, err = decimal.NewFromString(total); err != nil {
		return domain.Transaction{}, fmt.Errorf("parse stored total: %w", err)
	}
	t.OccurredAt = time.UnixMilli(ts)
	return t, nil
}

var _ port.TransactionRepository = (*TransactionRepo)(nil)
