// Package query implements the Query/Reporting component (C5): time-
// windowed listing, truck/container rollups, and the truck-vs-container
// disambiguation classifier.
package query

import (
	"context"
	"time"

	"ganshmuel/platform/internal/weight/store"
)

type Service struct {
	tx         *store.TransactionRepo
	containers *store.ContainerRepo
}

func New(tx *store.TransactionRepo, containers *store.ContainerRepo) *Service {
	return &Service{tx: tx, containers: containers}
}

func (s *Service) InWindow(ctx context.Context, from, to time.Time, directions []store.Direction) ([]store.Transaction, error) {
	return s.tx.InWindow(ctx, from, to, directions)
}

type TruckInfo struct {
	SessionIDs     []string
	AvgTruckTaraKg *float64 // nil serialises to "na"
}

func (s *Service) TruckInfo(ctx context.Context, truck string, from, to time.Time) (TruckInfo, error) {
	txs, err := s.tx.ByTruckInWindow(ctx, truck, from, to)
	if err != nil {
		return TruckInfo{}, err
	}
	var info TruckInfo
	seen := map[string]bool{}
	sum, count := 0, 0
	for _, t := range txs {
		if !seen[t.SessionID] {
			seen[t.SessionID] = true
			info.SessionIDs = append(info.SessionIDs, t.SessionID)
		}
		if t.TruckTara != nil {
			sum += *t.TruckTara
			count++
		}
	}
	if count > 0 {
		avg := float64(sum) / float64(count)
		info.AvgTruckTaraKg = &avg
	}
	return info, nil
}

type ContainerInfo struct {
	TareKg     *int // nil serialises to "na"
	SessionIDs []string
}

func (s *Service) ContainerInfo(ctx context.Context, id string, from, to time.Time) (ContainerInfo, error) {
	txs, err := s.tx.ByContainerInWindow(ctx, id, from, to)
	if err != nil {
		return ContainerInfo{}, err
	}
	var info ContainerInfo
	seen := map[string]bool{}
	for _, t := range txs {
		if !seen[t.SessionID] {
			seen[t.SessionID] = true
			info.SessionIDs = append(info.SessionIDs, t.SessionID)
		}
	}

	c, err := s.containers.Get(ctx, id)
	if err != nil {
		return ContainerInfo{}, err
	}
	if c != nil {
		info.TareKg = c.WeightKg
	}
	return info, nil
}

// UsageCounts is the raw tally ClassifyItem needs: how many
// transactions used the id as a truck license, and how many used it as
// a carried container.
type UsageCounts struct {
	AsTruck     int
	AsContainer int
}

// ItemKind is the result of the truck/container disambiguation.
type ItemKind int

const (
	KindUnknown ItemKind = iota
	KindTruck
	KindContainer
)

// ClassifyItem is a pure function implementing spec §4.5/§9's
// truck-vs-container heuristic: a registered tare makes it a
// container outright; otherwise classify by whichever role has
// transactions, preferring container on ties.
func ClassifyItem(isRegisteredContainer bool, usage UsageCounts) ItemKind {
	if isRegisteredContainer {
		return KindContainer
	}
	switch {
	case usage.AsContainer == 0 && usage.AsTruck == 0:
		return KindUnknown
	case usage.AsContainer >= usage.AsTruck:
		return KindContainer
	default:
		return KindTruck
	}
}

// Classify resolves an item id to truck/container/unknown per
// ClassifyItem, backed by the registered-container lookup and real
// truck/container usage counts across all transactions.
func (s *Service) Classify(ctx context.Context, id string) (ItemKind, error) {
	c, err := s.containers.Get(ctx, id)
	if err != nil {
		return KindUnknown, err
	}
	asTruck, err := s.tx.CountAsTruck(ctx, id)
	if err != nil {
		return KindUnknown, err
	}
	asContainer, err := s.tx.CountAsContainer(ctx, id)
	if err != nil {
		return KindUnknown, err
	}
	return ClassifyItem(c != nil, UsageCounts{AsTruck: asTruck, AsContainer: asContainer}), nil
}

func (s *Service) UnknownContainers(ctx context.Context, from, to time.Time) ([]string, error) {
	return s.tx.UnknownContainers(ctx, from, to)
}
