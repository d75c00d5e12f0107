package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProviderRepo struct {
	db *pgxpool.Pool
}

func NewProviderRepo(db *pgxpool.Pool) *ProviderRepo {
	return &ProviderRepo{db: db}
}

func (r *ProviderRepo) Create(ctx context.Context, name string) (Provider, error) {
	var p Provider
	err := r.db.QueryRow(ctx, `INSERT INTO providers (name) VALUES ($1) RETURNING id, name`, name).Scan(&p.ID, &p.Name)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Provider{}, ErrDuplicateName
		}
		return Provider{}, err
	}
	return p, nil
}

func (r *ProviderRepo) GetByID(ctx context.Context, id int64) (*Provider, error) {
	var p Provider
	err := r.db.QueryRow(ctx, `SELECT id, name FROM providers WHERE id=$1`, id).Scan(&p.ID, &p.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProviderRepo) Update(ctx context.Context, id int64, name string) (*Provider, error) {
	var p Provider
	err := r.db.QueryRow(ctx, `UPDATE providers SET name=$1 WHERE id=$2 RETURNING id, name`, name, id).Scan(&p.ID, &p.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateName
		}
		return nil, err
	}
	return &p, nil
}

var ErrDuplicateName = errors.New("provider name already in use")
