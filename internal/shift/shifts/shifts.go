// Package shifts implements the shallow operator shift CRUD that sits
// alongside the core weighing/billing subsystems (C13).
package shifts

import (
	"context"
	"strings"

	"ganshmuel/platform/internal/apperr"
	"ganshmuel/platform/internal/shift/store"
)

type Service struct {
	repo *store.Repo
}

func New(repo *store.Repo) *Service {
	return &Service{repo: repo}
}

func (s *Service) Start(ctx context.Context, operator, notes string) (store.Shift, error) {
	operator = strings.TrimSpace(operator)
	if operator == "" {
		return store.Shift{}, apperr.Validation("operator is required")
	}
	return s.repo.Create(ctx, operator, notes)
}

func (s *Service) End(ctx context.Context, id int64) (*store.Shift, error) {
	shift, err := s.repo.End(ctx, id)
	if err != nil {
		return nil, err
	}
	if shift == nil {
		return nil, apperr.NotFound("shift %d not found", id)
	}
	return shift, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*store.Shift, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]store.Shift, error) {
	return s.repo.All(ctx)
}
