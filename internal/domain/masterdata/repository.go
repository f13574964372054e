package masterdata

import (
	"context"

	"github.com/freightcore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OrganizationRepository defines the interface for organization persistence
type OrganizationRepository interface {
	Create(ctx context.Context, org *Organization) error
	FindByID(ctx context.Context, id uuid.UUID) (*Organization, error)
}

// BranchRepository defines the interface for branch persistence
type BranchRepository interface {
	Create(ctx context.Context, branch *Branch) error
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*Branch, error)
	List(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[Branch], error)
	ExistsByCode(ctx context.Context, orgID uuid.UUID, code string) (bool, error)
}

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	Create(ctx context.Context, customer *Customer) error
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*Customer, error)
	List(ctx context.Context, orgID uuid.UUID, branchID *uuid.UUID, filter shared.Filter) (*shared.Paginated[Customer], error)
}

// ArticleRepository defines the interface for article persistence
type ArticleRepository interface {
	Create(ctx context.Context, article *Article) error
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*Article, error)
	List(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[Article], error)
}
