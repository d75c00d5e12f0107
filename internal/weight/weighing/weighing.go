// Package weighing implements the Weighing Engine (C4): the IN/OUT/NONE
// session state machine described in spec §4.4, mirroring the teacher's
// Begin/defer-Rollback/FOR-UPDATE transaction idiom for the OUT-
// completion back-fill of the matching IN row.
package weighing

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"ganshmuel/platform/internal/apperr"
	"ganshmuel/platform/internal/weight/store"
	"ganshmuel/platform/internal/weight/weighmath"
)

type Request struct {
	Direction  string
	Truck      string // "na" means no truck
	Containers []string
	Weight     int
	Unit       string
	Produce    string // "na" means no produce
	Force      bool
}

type Response struct {
	ID         string
	SessionID  string
	Direction  string
	Truck      string
	Bruto      int
	TruckTara  *int
	Neto       *int // nil serialises to "na" at the HTTP edge
}

type Engine struct {
	db         *pgxpool.Pool
	containers *store.ContainerRepo
	tx         *store.TransactionRepo
}

func New(db *pgxpool.Pool, containers *store.ContainerRepo, tx *store.TransactionRepo) *Engine {
	return &Engine{db: db, containers: containers, tx: tx}
}

func normalizeSentinel(s string) *string {
	if s == "" || s == "na" {
		return nil
	}
	v := s
	return &v
}

func cleanContainers(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, c := range raw {
		c = strings.TrimSpace(c)
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// Record runs the full weighing operation for one request.
func (e *Engine) Record(ctx context.Context, req Request) (Response, error) {
	unit := req.Unit
	brutoKg, err := weighmath.Normalize(req.Weight, unit)
	if err != nil {
		return Response{}, apperr.Validation("%v", err)
	}
	if err := weighmath.Validate(brutoKg); err != nil {
		return Response{}, apperr.Validation("%v", err)
	}

	containers := cleanContainers(req.Containers)
	if len(containers) == 0 {
		return Response{}, apperr.Validation("container list cannot be empty")
	}
	truck := normalizeSentinel(req.Truck)
	produce := normalizeSentinel(req.Produce)

	switch req.Direction {
	case "in":
		return e.handleIn(ctx, truck, containers, brutoKg, produce, req.Force)
	case "out":
		return e.handleOut(ctx, truck, containers, brutoKg, produce, req.Force)
	case "none":
		return e.handleNone(ctx, truck, containers, brutoKg, produce)
	default:
		return Response{}, apperr.Validation("unknown direction %q", req.Direction)
	}
}

func (e *Engine) handleIn(ctx context.Context, truck *string, containers []string, brutoKg int, produce *string, force bool) (Response, error) {
	tx, err := e.db.Begin(ctx)
	if err != nil {
		return Response{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if !force {
		existing, err := e.tx.FindMatchingIn(ctx, tx, truck, containers)
		if err != nil {
			return Response{}, err
		}
		if existing != nil {
			return Response{}, apperr.SequenceViolation("IN transaction already exists for this truck/containers")
		}
	}

	sessionID := uuid.New().String()
	_, err = e.tx.CreateTx(ctx, tx, store.NewTransaction{
		SessionID:  sessionID,
		Direction:  store.DirectionIn,
		Truck:      truck,
		Containers: containers,
		Bruto:      brutoKg,
		Produce:    produce,
	})
	if err != nil {
		return Response{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Response{}, err
	}

	return Response{
		ID:        sessionID,
		SessionID: sessionID,
		Direction: "in",
		Truck:     derefOr(truck, "na"),
		Bruto:     brutoKg,
	}, nil
}

func (e *Engine) handleOut(ctx context.Context, truck *string, containers []string, brutoOutKg int, produce *string, force bool) (Response, error) {
	tx, err := e.db.Begin(ctx)
	if err != nil {
		return Response{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	matchingIn, err := e.tx.FindMatchingIn(ctx, tx, truck, containers)
	if err != nil {
		return Response{}, err
	}

	if matchingIn == nil {
		if !force {
			return Response{}, apperr.SequenceViolation("no matching IN transaction found")
		}
		resp, err := e.standaloneOut(ctx, tx, truck, containers, brutoOutKg, produce)
		if err != nil {
			return Response{}, err
		}
		if err := tx.Commit(ctx); err != nil {
			return Response{}, err
		}
		return resp, nil
	}

	infos, err := e.containers.WeightInfo(ctx, containers)
	if err != nil {
		return Response{}, err
	}
	var unknown []string
	totalTara := 0
	for _, info := range infos {
		if !info.IsKnown {
			unknown = append(unknown, info.ContainerID)
			continue
		}
		totalTara += *info.WeightInKg
	}
	if len(unknown) > 0 {
		return Response{}, apperr.ContainerUnknown("unknown container weights for calculation: %s", strings.Join(unknown, ", "))
	}

	truckTara := weighmath.TruckTara(brutoOutKg, totalTara)
	neto := weighmath.NetWeight(matchingIn.Bruto, brutoOutKg)

	if err := e.tx.UpdateCalculated(ctx, tx, matchingIn.ID, truckTara, neto); err != nil {
		return Response{}, err
	}

	out, err := e.tx.CreateTx(ctx, tx, store.NewTransaction{
		SessionID:  matchingIn.SessionID,
		Direction:  store.DirectionOut,
		Truck:      truck,
		Containers: containers,
		Bruto:      brutoOutKg,
		Produce:    produce,
	})
	if err != nil {
		return Response{}, err
	}
	if err := e.tx.UpdateCalculated(ctx, tx, out.ID, truckTara, neto); err != nil {
		return Response{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Response{}, err
	}

	return Response{
		ID:        matchingIn.SessionID,
		SessionID: matchingIn.SessionID,
		Direction: "out",
		Truck:     derefOr(truck, "na"),
		Bruto:     brutoOutKg,
		TruckTara: &truckTara,
		Neto:      &neto,
	}, nil
}

func (e *Engine) standaloneOut(ctx context.Context, tx store.Querier, truck *string, containers []string, brutoKg int, produce *string) (Response, error) {
	sessionID := uuid.New().String()
	_, err := e.tx.CreateTx(ctx, tx, store.NewTransaction{
		SessionID:  sessionID,
		Direction:  store.DirectionOut,
		Truck:      truck,
		Containers: containers,
		Bruto:      brutoKg,
		Produce:    produce,
	})
	if err != nil {
		return Response{}, err
	}
	return Response{
		ID:        sessionID,
		SessionID: sessionID,
		Direction: "out",
		Truck:     derefOr(truck, "na"),
		Bruto:     brutoKg,
	}, nil
}

func (e *Engine) handleNone(ctx context.Context, truck *string, containers []string, brutoKg int, produce *string) (Response, error) {
	sessionID := uuid.New().String()
	tx, err := e.db.Begin(ctx)
	if err != nil {
		return Response{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = e.tx.CreateTx(ctx, tx, store.NewTransaction{
		SessionID:  sessionID,
		Direction:  store.DirectionNone,
		Truck:      truck,
		Containers: containers,
		Bruto:      brutoKg,
		Produce:    produce,
	})
	if err != nil {
		return Response{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Response{}, err
	}

	return Response{
		ID:        sessionID,
		SessionID: sessionID,
		Direction: "none",
		Truck:     derefOr(truck, "na"),
		Bruto:     brutoKg,
	}, nil
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
