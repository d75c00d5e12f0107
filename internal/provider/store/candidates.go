package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrDuplicateEmail         = errors.New("contact email already registered")
	ErrConcurrentModification = errors.New("candidate was modified concurrently")
)

type CandidateRepo struct {
	db *pgxpool.Pool
}

func NewCandidateRepo(db *pgxpool.Pool) *CandidateRepo {
	return &CandidateRepo{db: db}
}

type NewCandidate struct {
	CompanyName     string
	ContactEmail    string
	Phone           *string
	Products        []string
	TruckCount      int
	CapacityTonsDay int
	Location        *string
}

func (r *CandidateRepo) Create(ctx context.Context, in NewCandidate) (Candidate, error) {
	id := uuid.NewString()
	now := time.Now().UTC()

	var c Candidate
	err := r.db.QueryRow(ctx, `
		INSERT INTO candidates
			(id, company_name, contact_email, phone, products, truck_count,
			 capacity_tons_per_day, location, status, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'pending', $9, $9, 1)
		RETURNING id, company_name, contact_email, phone, products, truck_count,
			capacity_tons_per_day, location, status, created_at, updated_at,
			provider_id, version, rejection_reason
	`, id, in.CompanyName, in.ContactEmail, in.Phone, in.Products, in.TruckCount,
		in.CapacityTonsDay, in.Location, now).Scan(
		&c.ID, &c.CompanyName, &c.ContactEmail, &c.Phone, &c.Products, &c.TruckCount,
		&c.CapacityTonsDay, &c.Location, &c.Status, &c.CreatedAt, &c.UpdatedAt,
		&c.ProviderID, &c.Version, &c.RejectionReason,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Candidate{}, ErrDuplicateEmail
		}
		return Candidate{}, err
	}
	return c, nil
}

func (r *CandidateRepo) GetByID(ctx context.Context, id string) (*Candidate, error) {
	var c Candidate
	err := r.db.QueryRow(ctx, `
		SELECT id, company_name, contact_email, phone, products, truck_count,
			capacity_tons_per_day, location, status, created_at, updated_at,
			provider_id, version, rejection_reason
		FROM candidates WHERE id = $1
	`, id).Scan(
		&c.ID, &c.CompanyName, &c.ContactEmail, &c.Phone, &c.Products, &c.TruckCount,
		&c.CapacityTonsDay, &c.Location, &c.Status, &c.CreatedAt, &c.UpdatedAt,
		&c.ProviderID, &c.Version, &c.RejectionReason,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

type ListFilter struct {
	Status  *Status
	Product *string
	Limit   int
	Offset  int
}

// List filters by optional status and product using strictly
// parameter-bound queries; product membership is tested via array
// containment, never string concatenation.
func (r *CandidateRepo) List(ctx context.Context, f ListFilter) ([]Candidate, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, company_name, contact_email, phone, products, truck_count,
			capacity_tons_per_day, location, status, created_at, updated_at,
			provider_id, version, rejection_reason
		FROM candidates
		WHERE ($1::text IS NULL OR status = $1)
		  AND ($2::text IS NULL OR products @> ARRAY[$2]::text[])
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, f.Status, f.Product, f.Limit, f.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Candidate
	for rows.Next() {
		var c Candidate
		if err := rows.Scan(
			&c.ID, &c.CompanyName, &c.ContactEmail, &c.Phone, &c.Products, &c.TruckCount,
			&c.CapacityTonsDay, &c.Location, &c.Status, &c.CreatedAt, &c.UpdatedAt,
			&c.ProviderID, &c.Version, &c.RejectionReason,
		); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Approve applies the version-guarded transition to approved, setting
// provider_id. Zero rows affected surfaces as ErrConcurrentModification.
func (r *CandidateRepo) Approve(ctx context.Context, id string, expectedVersion int, providerID int64) (*Candidate, error) {
	return r.transition(ctx, id, expectedVersion, `
		UPDATE candidates
		   SET status = 'approved', provider_id = $3, version = version + 1, updated_at = $4
		 WHERE id = $1 AND status = 'pending' AND version = $2
		RETURNING id, company_name, contact_email, phone, products, truck_count,
			capacity_tons_per_day, location, status, created_at, updated_at,
			provider_id, version, rejection_reason
	`, providerID)
}

// Reject applies the version-guarded transition to rejected, setting
// rejection_reason.
func (r *CandidateRepo) Reject(ctx context.Context, id string, expectedVersion int, reason *string) (*Candidate, error) {
	return r.transition(ctx, id, expectedVersion, `
		UPDATE candidates
		   SET status = 'rejected', rejection_reason = $3, version = version + 1, updated_at = $4
		 WHERE id = $1 AND status = 'pending' AND version = $2
		RETURNING id, company_name, contact_email, phone, products, truck_count,
			capacity_tons_per_day, location, status, created_at, updated_at,
			provider_id, version, rejection_reason
	`, reason)
}

func (r *CandidateRepo) transition(ctx context.Context, id string, expectedVersion int, sql string, sideField any) (*Candidate, error) {
	var c Candidate
	err := r.db.QueryRow(ctx, sql, id, expectedVersion, sideField, time.Now().UTC()).Scan(
		&c.ID, &c.CompanyName, &c.ContactEmail, &c.Phone, &c.Products, &c.TruckCount,
		&c.CapacityTonsDay, &c.Location, &c.Status, &c.CreatedAt, &c.UpdatedAt,
		&c.ProviderID, &c.Version, &c.RejectionReason,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrConcurrentModification
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
