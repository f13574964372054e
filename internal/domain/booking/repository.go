package booking

import (
	"context"
	"time"

	"github.com/freightcore/backend/internal/domain/shared"
	"github.com/freightcore/backend/internal/domain/tenancy"
	"github.com/google/uuid"
)

// ListQuery narrows a booking listing
type ListQuery struct {
	shared.Filter
	Status   Status
	FromDate *time.Time
	ToDate   *time.Time
}

// Repository defines the interface for booking persistence. Every write is
// one transaction that also stores the aggregate's pending events.
type Repository interface {
	// Create allocates the LR number and inserts the header with its lines
	Create(ctx context.Context, b *Booking) error

	// FindByID loads a booking with its lines; callers authorize the result
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByLRNumber loads a booking by LR number inside the caller's scope
	FindByLRNumber(ctx context.Context, scope tenancy.ListFilter, lrNumber string) (*Booking, error)

	// List returns a page of bookings narrowed to the caller's scope
	List(ctx context.Context, scope tenancy.ListFilter, q ListQuery) (*shared.Paginated[Booking], error)

	// UpdateStatus writes the new status if the row still has status `from`
	// and the booking's version, and records the history entry
	UpdateStatus(ctx context.Context, b *Booking, from Status, change StatusChange) error

	// SaveArticles inserts added lines and the new total under a version lock
	SaveArticles(ctx context.Context, b *Booking, added []Article) error

	// History returns the status changes of a booking, oldest first
	History(ctx context.Context, bookingID uuid.UUID) ([]StatusChange, error)
}
