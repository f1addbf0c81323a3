package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ContractRepository defines the interface for contract lookups.
// Persistence itself lives outside the engine; implementations must return
// ErrContractNotFound (possibly wrapped) on a miss.
type ContractRepository interface {
	// GetByID retrieves a contract by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*Contract, error)
}

// SpotPriceRepository defines the interface for reading stored hourly spot
// prices. Rows are returned ordered by timestamp ascending.
type SpotPriceRepository interface {
	// ListRange retrieves rows for a region with from <= TS < to
	ListRange(ctx context.Context, region string, from, to time.Time) ([]SpotPriceHour, error)

	// ListDay retrieves the rows of one local calendar day
	ListDay(ctx context.Context, region string, day time.Time, loc *time.Location) ([]SpotPriceHour, error)
}
