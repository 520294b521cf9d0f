package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("Service not found")

type Repo struct {
	pg *pgxpool.Pool
}

func NewRepo(pg *pgxpool.Pool) *Repo {
	return &Repo{pg: pg}
}

const serviceColumns = `
  id, name, type, description, stock, unit, price, currency, status, created_at, updated_at`

func scanService(row pgx.Row) (*Service, error) {
	var s Service
	err := row.Scan(&s.ID, &s.Name, &s.Type, &s.Description, &s.Stock, &s.Unit, &s.Price, &s.Currency, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *Repo) List(ctx context.Context) ([]Service, error) {
	rows, err := r.pg.Query(ctx, `SELECT`+serviceColumns+` FROM services ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, id int64) (*Service, error) {
	return scanService(r.pg.QueryRow(ctx, `SELECT`+serviceColumns+` FROM services WHERE id = $1`, id))
}

// ActiveByType returns the newest active service of a type.
func (r *Repo) ActiveByType(ctx context.Context, serviceType string) (*Service, error) {
	const q = `SELECT` + serviceColumns + ` FROM services
WHERE type = $1 AND status = 'active'
ORDER BY created_at DESC, id DESC
LIMIT 1`
	return scanService(r.pg.QueryRow(ctx, q, serviceType))
}

type Params struct {
	Name        string
	Type        string
	Description string
	Stock       int
	Unit        string
	Price       float64
	Currency    string
	Status      string
}

func (r *Repo) Create(ctx context.Context, p Params) (*Service, error) {
	const q = `
INSERT INTO services (name, type, description, stock, unit, price, currency, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING` + serviceColumns
	return scanService(r.pg.QueryRow(ctx, q, p.Name, p.Type, p.Description, p.Stock, p.Unit, p.Price, p.Currency, p.Status))
}

func (r *Repo) Update(ctx context.Context, id int64, p Params) (*Service, error) {
	const q = `
UPDATE services
SET name = $2, type = $3, description = $4, stock = $5, unit = $6,
    price = $7, currency = $8, status = $9, updated_at = now()
WHERE id = $1
RETURNING` + serviceColumns
	return scanService(r.pg.QueryRow(ctx, q, id, p.Name, p.Type, p.Description, p.Stock, p.Unit, p.Price, p.Currency, p.Status))
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pg.Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) Prices(ctx context.Context, serviceType string) (Prices, error) {
	rows, err := r.pg.Query(ctx, `SELECT code, price FROM service_prices WHERE service_type = $1`, serviceType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := Prices{}
	for rows.Next() {
		var code string
		var price float64
		if err := rows.Scan(&code, &price); err != nil {
			return nil, err
		}
		out[code] = price
	}
	return out, rows.Err()
}

// SetPrices upserts the given option prices in one transaction.
func (r *Repo) SetPrices(ctx context.Context, serviceType string, prices Prices) error {
	tx, err := r.pg.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const q = `
INSERT INTO service_prices (service_type, code, price) VALUES ($1, $2, $3)
ON CONFLICT (service_type, code) DO UPDATE SET price = EXCLUDED.price, updated_at = now()`
	for code, price := range prices {
		if _, err := tx.Exec(ctx, q, serviceType, code, price); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// StockByType sums the stock of active services per type.
func (r *Repo) StockByType(ctx context.Context) (map[string]int, error) {
	rows, err := r.pg.Query(ctx, `SELECT type, COALESCE(SUM(stock), 0) FROM services WHERE status = 'active' GROUP BY type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var t string
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return nil, err
		}
		out[t] = n
	}
	return out, rows.Err()
}
