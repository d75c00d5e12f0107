// Package store holds the shift service's pgx-backed repository for
// operator shift records (C13, an out-of-core collaborator carried
// for suite completeness).
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Shift struct {
	ID        int64      `json:"id"`
	Operator  string     `json:"operator"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	Notes     string     `json:"notes,omitempty"`
}

type Repo struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, operator, notes string) (Shift, error) {
	var s Shift
	err := r.db.QueryRow(ctx, `
		INSERT INTO shifts (operator, started_at, notes)
		VALUES ($1, now(), $2)
		RETURNING id, operator, started_at, ended_at, notes
	`, operator, notes).Scan(&s.ID, &s.Operator, &s.StartedAt, &s.EndedAt, &s.Notes)
	return s, err
}

func (r *Repo) End(ctx context.Context, id int64) (*Shift, error) {
	var s Shift
	err := r.db.QueryRow(ctx, `
		UPDATE shifts SET ended_at = now() WHERE id = $1
		RETURNING id, operator, started_at, ended_at, notes
	`, id).Scan(&s.ID, &s.Operator, &s.StartedAt, &s.EndedAt, &s.Notes)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Shift, error) {
	var s Shift
	err := r.db.QueryRow(ctx, `
		SELECT id, operator, started_at, ended_at, notes FROM shifts WHERE id = $1
	`, id).Scan(&s.ID, &s.Operator, &s.StartedAt, &s.EndedAt, &s.Notes)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repo) All(ctx context.Context) ([]Shift, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, operator, started_at, ended_at, notes FROM shifts ORDER BY started_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Shift
	for rows.Next() {
		var s Shift
		if err := rows.Scan(&s.ID, &s.Operator, &s.StartedAt, &s.EndedAt, &s.Notes); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
