// Package registry implements provider and truck management (C7):
// thin validation wrapped around the store repositories.
package registry

import (
	"context"
	"errors"
	"strings"

	"ganshmuel/platform/internal/apperr"
	"ganshmuel/platform/internal/billing/store"
)

type Service struct {
	providers *store.ProviderRepo
	trucks    *store.TruckRepo
}

func New(providers *store.ProviderRepo, trucks *store.TruckRepo) *Service {
	return &Service{providers: providers, trucks: trucks}
}

func (s *Service) CreateProvider(ctx context.Context, name string) (store.Provider, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return store.Provider{}, apperr.Validation("provider name is required")
	}
	if len(name) > 255 {
		return store.Provider{}, apperr.Validation("provider name must be at most 255 characters")
	}
	p, err := s.providers.Create(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateName) {
			return store.Provider{}, apperr.Duplicate("provider %q already exists", name)
		}
		return store.Provider{}, err
	}
	return p, nil
}

func (s *Service) GetProvider(ctx context.Context, id int64) (*store.Provider, error) {
	return s.providers.GetByID(ctx, id)
}

func (s *Service) RenameProvider(ctx context.Context, id int64, name string) (*store.Provider, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("provider name is required")
	}
	if len(name) > 255 {
		return nil, apperr.Validation("provider name must be at most 255 characters")
	}
	p, err := s.providers.Update(ctx, id, name)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateName) {
			return nil, apperr.Duplicate("provider %q already exists", name)
		}
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("provider %d not found", id)
	}
	return p, nil
}

// UpsertTruck creates or re-parents a truck under a provider.
func (s *Service) UpsertTruck(ctx context.Context, id string, providerID int64) (created bool, err error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return false, apperr.Validation("truck id is required")
	}
	if len(id) > 10 {
		return false, apperr.Validation("truck id must be at most 10 characters")
	}
	created, err = s.trucks.Upsert(ctx, id, providerID)
	if err != nil {
		if errors.Is(err, store.ErrProviderNotFound) {
			return false, apperr.NotFound("provider %d does not exist", providerID)
		}
		return false, err
	}
	return created, nil
}

func (s *Service) GetTruck(ctx context.Context, id string) (*store.Truck, error) {
	return s.trucks.GetByID(ctx, id)
}

func (s *Service) TrucksByProvider(ctx context.Context, providerID int64) ([]store.Truck, error) {
	return s.trucks.ByProvider(ctx, providerID)
}
