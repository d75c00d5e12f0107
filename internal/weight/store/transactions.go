package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TransactionRepo struct {
	db *pgxpool.Pool
}

func NewTransactionRepo(db *pgxpool.Pool) *TransactionRepo {
	return &TransactionRepo{db: db}
}

type NewTransaction struct {
	SessionID  string
	Direction  Direction
	Truck      *string
	Containers []string
	Bruto      int
	Produce    *string
}

// CreateTx inserts a transaction row through q, which may be the pool
// or a caller's pgx.Tx (callers needing atomic back-fill pass a pgx.Tx
// so the INSERT and the paired UPDATE commit together).
func (r *TransactionRepo) CreateTx(ctx context.Context, q Querier, in NewTransaction) (*Transaction, error) {
	var t Transaction
	err := q.QueryRow(ctx, `
		INSERT INTO transactions (session_id, datetime, direction, truck, containers, bruto, produce)
		VALUES ($1, now(), $2, $3, $4, $5, $6)
		RETURNING id, session_id, datetime, direction, truck, containers, bruto, truck_tara, neto, produce
	`, in.SessionID, in.Direction, in.Truck, in.Containers, in.Bruto, in.Produce).
		Scan(&t.ID, &t.SessionID, &t.Datetime, &t.Direction, &t.Truck, &t.Containers, &t.Bruto, &t.TruckTara, &t.Neto, &t.Produce)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateCalculated back-fills truck_tara and neto on an existing row
// (used both for the OUT row itself and to back-fill the matching IN).
func (r *TransactionRepo) UpdateCalculated(ctx context.Context, q Querier, id int64, truckTara, neto int) error {
	_, err := q.Exec(ctx, `UPDATE transactions SET truck_tara=$1, neto=$2 WHERE id=$3`, truckTara, neto, id)
	return err
}

// FindMatchingIn returns the most recent open IN transaction (no OUT
// yet recorded against its session) with the same truck and container
// multiset, or nil if none exists. The returned row is locked FOR
// UPDATE until q's transaction ends.
func (r *TransactionRepo) FindMatchingIn(ctx context.Context, q Querier, truck *string, containers []string) (*Transaction, error) {
	var t Transaction
	err := q.QueryRow(ctx, `
		SELECT t.id, t.session_id, t.datetime, t.direction, t.truck, t.containers, t.bruto, t.truck_tara, t.neto, t.produce
		FROM transactions t
		WHERE t.direction = 'in'
		  AND (t.truck = $1 OR (t.truck IS NULL AND $1 IS NULL))
		  AND (SELECT array_agg(c ORDER BY c) FROM unnest(t.containers) AS c)
		    = (SELECT array_agg(c ORDER BY c) FROM unnest($2::text[]) AS c)
		  AND NOT EXISTS (
		    SELECT 1 FROM transactions o
		    WHERE o.direction = 'out' AND o.session_id = t.session_id
		  )
		ORDER BY t.datetime DESC
		LIMIT 1
		FOR UPDATE OF t
	`, truck, containers).
		Scan(&t.ID, &t.SessionID, &t.Datetime, &t.Direction, &t.Truck, &t.Containers, &t.Bruto, &t.TruckTara, &t.Neto, &t.Produce)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepo) BySessionID(ctx context.Context, sessionID string) ([]Transaction, error) {
	return r.queryAll(ctx, `
		SELECT id, session_id, datetime, direction, truck, containers, bruto, truck_tara, neto, produce
		FROM transactions WHERE session_id=$1 ORDER BY datetime ASC
	`, sessionID)
}

func (r *TransactionRepo) ByID(ctx context.Context, id int64) (*Transaction, error) {
	var t Transaction
	err := r.db.QueryRow(ctx, `
		SELECT id, session_id, datetime, direction, truck, containers, bruto, truck_tara, neto, produce
		FROM transactions WHERE id=$1
	`, id).Scan(&t.ID, &t.SessionID, &t.Datetime, &t.Direction, &t.Truck, &t.Containers, &t.Bruto, &t.TruckTara, &t.Neto, &t.Produce)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// InWindow returns transactions in [from,to] optionally filtered to a
// set of directions (empty = no filter).
func (r *TransactionRepo) InWindow(ctx context.Context, from, to time.Time, directions []Direction) ([]Transaction, error) {
	if len(directions) == 0 {
		return r.queryAll(ctx, `
			SELECT id, session_id, datetime, direction, truck, containers, bruto, truck_tara, neto, produce
			FROM transactions WHERE datetime >= $1 AND datetime <= $2 ORDER BY datetime ASC
		`, from, to)
	}
	return r.queryAll(ctx, `
		SELECT id, session_id, datetime, direction, truck, containers, bruto, truck_tara, neto, produce
		FROM transactions WHERE datetime >= $1 AND datetime <= $2 AND direction = ANY($3) ORDER BY datetime ASC
	`, from, to, directions)
}

func (r *TransactionRepo) ByTruckInWindow(ctx context.Context, truck string, from, to time.Time) ([]Transaction, error) {
	return r.queryAll(ctx, `
		SELECT id, session_id, datetime, direction, truck, containers, bruto, truck_tara, neto, produce
		FROM transactions WHERE truck=$1 AND datetime >= $2 AND datetime <= $3 ORDER BY datetime ASC
	`, truck, from, to)
}

func (r *TransactionRepo) ByContainerInWindow(ctx context.Context, containerID string, from, to time.Time) ([]Transaction, error) {
	return r.queryAll(ctx, `
		SELECT id, session_id, datetime, direction, truck, containers, bruto, truck_tara, neto, produce
		FROM transactions WHERE $1 = ANY(containers) AND datetime >= $2 AND datetime <= $3 ORDER BY datetime ASC
	`, containerID, from, to)
}

// CountAsTruck returns how many transactions (across all history) used
// id as a truck license, for the truck/container classifier.
func (r *TransactionRepo) CountAsTruck(ctx context.Context, id string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM transactions WHERE truck=$1`, id).Scan(&n)
	return n, err
}

// CountAsContainer returns how many transactions (across all history)
// carried id in their container list, for the truck/container classifier.
func (r *TransactionRepo) CountAsContainer(ctx context.Context, id string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM transactions WHERE $1 = ANY(containers)`, id).Scan(&n)
	return n, err
}

// UnknownContainers returns container ids referenced in [from,to] with
// no registered tare.
func (r *TransactionRepo) UnknownContainers(ctx context.Context, from, to time.Time) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT c
		FROM transactions t, unnest(t.containers) AS c
		LEFT JOIN registered_containers rc ON rc.id = c
		WHERE t.datetime >= $1 AND t.datetime <= $2 AND (rc.id IS NULL OR rc.weight_kg IS NULL)
		ORDER BY 1
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *TransactionRepo) queryAll(ctx context.Context, sql string, args ...any) ([]Transaction, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.SessionID, &t.Datetime, &t.Direction, &t.Truck, &t.Containers, &t.Bruto, &t.TruckTara, &t.Neto, &t.Produce); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Querier abstracts over *pgxpool.Pool and pgx.Tx so repository methods
// compose inside a caller-managed transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}
