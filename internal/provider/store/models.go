// Package store holds the provider-registration service's pgx-backed
// candidate repository (C10).
package store

import "time"

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

type Candidate struct {
	ID               string
	CompanyName      string
	ContactEmail     string
	Phone            *string
	Products         []string
	TruckCount       int
	CapacityTonsDay  int
	Location         *string
	Status           Status
	CreatedAt        time.Time
	UpdatedAt        time.Time
	ProviderID       *int64
	Version          int
	RejectionReason  *string
}
