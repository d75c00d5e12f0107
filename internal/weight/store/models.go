// Package store holds the weight service's pgx-backed repositories for
// registered containers (C2) and the transaction log (C3).
package store

import "time"

type Direction string

const (
	DirectionIn   Direction = "in"
	DirectionOut  Direction = "out"
	DirectionNone Direction = "none"
)

// RegisteredContainer is a row in the container tare registry.
type RegisteredContainer struct {
	ID        string
	WeightKg  *int
	Unit      string
	UpdatedAt time.Time
}

// ContainerWeightInfo answers "do we know this container's tare".
type ContainerWeightInfo struct {
	ContainerID string
	WeightInKg  *int
	IsKnown     bool
}

// Transaction is one row of the append-only weighing log.
type Transaction struct {
	ID         int64     `json:"id"`
	SessionID  string    `json:"session_id"`
	Datetime   time.Time `json:"datetime"`
	Direction  Direction `json:"direction"`
	Truck      *string   `json:"truck"`
	Containers []string  `json:"containers"`
	Bruto      int       `json:"bruto"`
	TruckTara  *int      `json:"truck_tara"`
	Neto       *int      `json:"neto"`
	Produce    *string   `json:"produce"`
}
