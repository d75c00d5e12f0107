package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const AllScope = "ALL"

type RateRepo struct {
	db *pgxpool.Pool
}

func NewRateRepo(db *pgxpool.Pool) *RateRepo {
	return &RateRepo{db: db}
}

// ReplaceAll atomically swaps the entire rate book for a new one, so a
// rate sheet upload can never leave the table half-written.
func (r *RateRepo) ReplaceAll(ctx context.Context, rates []Rate) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM rates`); err != nil {
		return err
	}
	for _, rate := range rates {
		if _, err := tx.Exec(ctx, `
			INSERT INTO rates (product, scope, rate_amt) VALUES ($1, $2, $3)
		`, rate.Product, rate.Scope, rate.RateAmt); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *RateRepo) All(ctx context.Context) ([]Rate, error) {
	rows, err := r.db.Query(ctx, `SELECT product, scope, rate_amt FROM rates ORDER BY product, scope`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Rate
	for rows.Next() {
		var rt Rate
		if err := rows.Scan(&rt.Product, &rt.Scope, &rt.RateAmt); err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

// ForProduct returns every rate row (ALL-scoped and provider-scoped)
// defined for a given product, case-insensitively.
func (r *RateRepo) ForProduct(ctx context.Context, product string) ([]Rate, error) {
	rows, err := r.db.Query(ctx, `SELECT product, scope, rate_amt FROM rates WHERE lower(product) = lower($1)`, product)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Rate
	for rows.Next() {
		var rt Rate
		if err := rows.Scan(&rt.Product, &rt.Scope, &rt.RateAmt); err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}
