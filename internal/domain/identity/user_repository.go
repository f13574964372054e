package identity

import (
	"context"

	"github.com/freightcore/backend/internal/domain/shared"
	"github.com/freightcore/backend/internal/domain/tenancy"
	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *User) error

	// Save updates a user with optimistic locking
	Save(ctx context.Context, user *User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByUsername finds a user by login name
	FindByUsername(ctx context.Context, username string) (*User, error)

	// ExistsByUsername checks if a username is taken
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// List returns users visible in the given scope
	List(ctx context.Context, scope tenancy.ListFilter, filter shared.Filter) (*shared.Paginated[User], error)
}
