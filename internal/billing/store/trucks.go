package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TruckRepo struct {
	db *pgxpool.Pool
}

func NewTruckRepo(db *pgxpool.Pool) *TruckRepo {
	return &TruckRepo{db: db}
}

// Upsert creates or re-parents a truck under a provider. It reports
// whether a new row was created.
func (r *TruckRepo) Upsert(ctx context.Context, id string, providerID int64) (created bool, err error) {
	var existed bool
	err = r.db.QueryRow(ctx, `SELECT true FROM trucks WHERE id=$1`, id).Scan(&existed)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}
	existed = err == nil

	_, err = r.db.Exec(ctx, `
		INSERT INTO trucks (id, provider_id) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET provider_id = EXCLUDED.provider_id
	`, id, providerID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return false, ErrProviderNotFound
		}
		return false, err
	}
	return !existed, nil
}

func (r *TruckRepo) GetByID(ctx context.Context, id string) (*Truck, error) {
	var t Truck
	err := r.db.QueryRow(ctx, `SELECT id, provider_id FROM trucks WHERE id=$1`, id).Scan(&t.ID, &t.ProviderID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TruckRepo) ByProvider(ctx context.Context, providerID int64) ([]Truck, error) {
	rows, err := r.db.Query(ctx, `SELECT id, provider_id FROM trucks WHERE provider_id=$1 ORDER BY id`, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Truck
	for rows.Next() {
		var t Truck
		if err := rows.Scan(&t.ID, &t.ProviderID); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

var ErrProviderNotFound = errors.New("provider does not exist")
