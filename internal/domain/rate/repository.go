package rate

import (
	"context"
	"time"

	"github.com/freightcore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ContractListQuery narrows a contract listing
type ContractListQuery struct {
	shared.Filter
	CustomerID *uuid.UUID
	Status     ContractStatus
}

// ContractRepository defines the interface for rate contract persistence
type ContractRepository interface {
	ContractFinder

	// FindByID finds a contract with its slabs within an organization
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*RateContract, error)

	// List returns a page of contracts for an organization
	List(ctx context.Context, orgID uuid.UUID, q ContractListQuery) (*shared.Paginated[RateContract], error)

	// ExistsByNumber checks the per-organization contract number uniqueness
	ExistsByNumber(ctx context.Context, orgID uuid.UUID, number string) (bool, error)

	// Create inserts a contract with its slabs and pending events
	Create(ctx context.Context, contract *RateContract) error

	// Save updates a contract with optimistic locking, inserting new slabs
	Save(ctx context.Context, contract *RateContract) error

	// ExpireEnded marks active contracts whose window ended before the given day
	ExpireEnded(ctx context.Context, today time.Time) (int64, error)
}
