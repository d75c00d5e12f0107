// Package candidates implements the candidate intake store (C10) and
// the optimistic-lock approval workflow (C11).
package candidates

import (
	"context"
	"errors"
	"strings"

	"ganshmuel/platform/internal/apperr"
	"ganshmuel/platform/internal/provider/billingclient"
	"ganshmuel/platform/internal/provider/store"
)

var allowedProducts = map[string]bool{
	"apples": true, "oranges": true, "grapes": true, "bananas": true, "mangoes": true,
}

type Service struct {
	repo      *store.CandidateRepo
	billingCl *billingclient.Client
}

func New(repo *store.CandidateRepo, billingCl *billingclient.Client) *Service {
	return &Service{repo: repo, billingCl: billingCl}
}

type CreateInput struct {
	CompanyName     string
	ContactEmail    string
	Phone           *string
	Products        []string
	TruckCount      int
	CapacityTonsDay int
	Location        *string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (store.Candidate, error) {
	name := strings.TrimSpace(in.CompanyName)
	if name == "" {
		return store.Candidate{}, apperr.Validation("company_name is required")
	}
	email := strings.TrimSpace(in.ContactEmail)
	if email == "" || !strings.Contains(email, "@") {
		return store.Candidate{}, apperr.Validation("contact_email must be a valid address")
	}
	if len(in.Products) == 0 {
		return store.Candidate{}, apperr.Validation("products must be non-empty")
	}
	for _, p := range in.Products {
		if !allowedProducts[strings.ToLower(p)] {
			return store.Candidate{}, apperr.Validation("unsupported product %q", p)
		}
	}
	if in.TruckCount <= 0 {
		return store.Candidate{}, apperr.Validation("truck_count must be positive")
	}
	if in.CapacityTonsDay <= 0 {
		return store.Candidate{}, apperr.Validation("capacity_tons_per_day must be positive")
	}

	c, err := s.repo.Create(ctx, store.NewCandidate{
		CompanyName:     name,
		ContactEmail:    email,
		Phone:           in.Phone,
		Products:        in.Products,
		TruckCount:      in.TruckCount,
		CapacityTonsDay: in.CapacityTonsDay,
		Location:        in.Location,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return store.Candidate{}, apperr.Duplicate("contact email %q already registered", email)
		}
		return store.Candidate{}, err
	}
	return c, nil
}

type ListInput struct {
	Status   *string
	Product  *string
	Page     int
	PageSize int
}

func (s *Service) List(ctx context.Context, in ListInput) ([]store.Candidate, error) {
	var status *store.Status
	if in.Status != nil {
		st := store.Status(*in.Status)
		status = &st
	}
	pageSize := in.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	page := in.Page
	if page <= 0 {
		page = 1
	}
	return s.repo.List(ctx, store.ListFilter{
		Status:  status,
		Product: in.Product,
		Limit:   pageSize,
		Offset:  (page - 1) * pageSize,
	})
}

func (s *Service) Get(ctx context.Context, id string) (*store.Candidate, error) {
	return s.repo.GetByID(ctx, id)
}

// Approve implements §4.11: read, provision a Billing-side provider
// via the outbound client, then apply the versioned state transition.
// If the local UPDATE loses the optimistic race after the Billing POST
// already succeeded, the orphaned provider id is surfaced for manual
// reconciliation rather than retried.
func (s *Service) Approve(ctx context.Context, id string) (*store.Candidate, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.NotFound("candidate %s not found", id)
	}
	if c.Status != store.StatusPending {
		return nil, apperr.Validation("candidate %s is not pending", id)
	}

	providerID, err := s.billingCl.CreateProvider(ctx, c.CompanyName)
	if err != nil {
		return nil, apperr.UpstreamUnavailable("could not provision provider: %v", err)
	}

	updated, err := s.repo.Approve(ctx, id, c.Version, providerID)
	if err != nil {
		if errors.Is(err, store.ErrConcurrentModification) {
			return nil, apperr.ConcurrentModification(
				"candidate %s was modified concurrently (orphaned provider id %d requires manual reconciliation)",
				id, providerID)
		}
		return nil, err
	}
	return updated, nil
}

func (s *Service) Reject(ctx context.Context, id string, reason *string) (*store.Candidate, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.NotFound("candidate %s not found", id)
	}
	if c.Status != store.StatusPending {
		return nil, apperr.Validation("candidate %s is not pending", id)
	}

	updated, err := s.repo.Reject(ctx, id, c.Version, reason)
	if err != nil {
		if errors.Is(err, store.ErrConcurrentModification) {
			return nil, apperr.ConcurrentModification("candidate %s was modified concurrently", id)
		}
		return nil, err
	}
	return updated, nil
}
