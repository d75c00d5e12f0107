// Package containers implements the Container Registry (C2): single-row
// upsert, batch ingest, and lookups used by the weighing engine.
package containers

import (
	"context"
	"strings"

	"ganshmuel/platform/internal/apperr"
	"ganshmuel/platform/internal/weight/store"
	"ganshmuel/platform/internal/weight/weighmath"
)

const (
	maxIDLen = 15
)

type Service struct {
	repo *store.ContainerRepo
}

func New(repo *store.ContainerRepo) *Service {
	return &Service{repo: repo}
}

func validateID(id string) error {
	if id == "" || len(id) > maxIDLen {
		return apperr.Validation("container id must be 1-%d characters", maxIDLen)
	}
	for _, c := range id {
		ok := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' || c == '_'
		if !ok {
			return apperr.Validation("container id %q contains invalid characters", id)
		}
	}
	return nil
}

// Upsert registers or overwrites a single container's tare weight.
func (s *Service) Upsert(ctx context.Context, id string, weight int, unit string, allowUpdate bool) (created bool, err error) {
	id = strings.TrimSpace(id)
	if err := validateID(id); err != nil {
		return false, err
	}
	kg, err := weighmath.Normalize(weight, unit)
	if err != nil {
		return false, apperr.Validation("%v", err)
	}
	if err := weighmath.Validate(kg); err != nil {
		return false, apperr.Validation("%v", err)
	}

	created, err = s.repo.Upsert(ctx, id, &kg, unit, allowUpdate)
	if err != nil {
		if !allowUpdate {
			return false, apperr.Duplicate("container %q already registered", id)
		}
		return false, err
	}
	return created, nil
}

type BatchRow struct {
	ID     string
	Weight int
	Unit   string
}

type BatchResult struct {
	Processed int
	Updated   int
	Skipped   int
	Errors    []string
}

// BatchUpsert validates each row independently; a failed row produces
// a diagnostic and does not abort the batch. The batch only fails
// outright if every row failed.
func (s *Service) BatchUpsert(ctx context.Context, rows []BatchRow, allowUpdates, skipDuplicates bool) (BatchResult, error) {
	var res BatchResult
	for _, row := range rows {
		created, err := s.Upsert(ctx, row.ID, row.Weight, row.Unit, allowUpdates)
		if err != nil {
			if apperr.KindOf(err) == apperr.KindDuplicate && skipDuplicates {
				res.Skipped++
				continue
			}
			res.Errors = append(res.Errors, row.ID+": "+err.Error())
			continue
		}
		res.Processed++
		if !created {
			res.Updated++
		}
	}
	if res.Processed == 0 && res.Skipped == 0 {
		return res, apperr.Validation("all %d rows in batch failed validation", len(rows))
	}
	return res, nil
}

func (s *Service) Lookup(ctx context.Context, ids []string) ([]store.ContainerWeightInfo, error) {
	return s.repo.WeightInfo(ctx, ids)
}

func (s *Service) All(ctx context.Context) ([]store.RegisteredContainer, error) {
	return s.repo.All(ctx)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperr.NotFound("container %q not found", id)
	}
	return nil
}
