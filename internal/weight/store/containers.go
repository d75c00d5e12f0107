package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ContainerRepo struct {
	db *pgxpool.Pool
}

func NewContainerRepo(db *pgxpool.Pool) *ContainerRepo {
	return &ContainerRepo{db: db}
}

// Upsert inserts a new container, or overwrites an existing one when
// allowUpdate is true. Returns created=false and an error when the id
// already exists and allowUpdate is false.
func (r *ContainerRepo) Upsert(ctx context.Context, id string, weightKg *int, unit string, allowUpdate bool) (created bool, err error) {
	var existed bool
	if err := r.db.QueryRow(ctx, `SELECT true FROM registered_containers WHERE id=$1`, id).Scan(&existed); err == nil {
		if !allowUpdate {
			return false, errors.New("container already registered")
		}
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO registered_containers (id, weight_kg, unit, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE SET weight_kg = $2, unit = $3, updated_at = now()
	`, id, weightKg, unit)
	if err != nil {
		return false, err
	}
	return !existed, nil
}

func (r *ContainerRepo) Get(ctx context.Context, id string) (*RegisteredContainer, error) {
	var c RegisteredContainer
	err := r.db.QueryRow(ctx, `SELECT id, weight_kg, unit, updated_at FROM registered_containers WHERE id=$1`, id).
		Scan(&c.ID, &c.WeightKg, &c.Unit, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// WeightInfo looks up multiple container ids, flagging which are
// known (registered with a non-null tare).
func (r *ContainerRepo) WeightInfo(ctx context.Context, ids []string) ([]ContainerWeightInfo, error) {
	rows, err := r.db.Query(ctx, `SELECT id, weight_kg FROM registered_containers WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	known := map[string]*int{}
	for rows.Next() {
		var id string
		var w *int
		if err := rows.Scan(&id, &w); err != nil {
			return nil, err
		}
		known[id] = w
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]ContainerWeightInfo, 0, len(ids))
	for _, id := range ids {
		w, ok := known[id]
		out = append(out, ContainerWeightInfo{
			ContainerID: id,
			WeightInKg:  w,
			IsKnown:     ok && w != nil,
		})
	}
	return out, nil
}

func (r *ContainerRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM registered_containers WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ContainerRepo) All(ctx context.Context) ([]RegisteredContainer, error) {
	rows, err := r.db.Query(ctx, `SELECT id, weight_kg, unit, updated_at FROM registered_containers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RegisteredContainer
	for rows.Next() {
		var c RegisteredContainer
		if err := rows.Scan(&c.ID, &c.WeightKg, &c.Unit, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
