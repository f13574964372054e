package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/freightcore/backend/internal/domain/booking"
	"github.com/freightcore/backend/internal/domain/shared"
	"github.com/freightcore/backend/internal/domain/tenancy"
	"github.com/freightcore/backend/internal/infrastructure/persistence/datascope"
	"github.com/freightcore/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBookingRepository implements booking.Repository using GORM
type GormBookingRepository struct {
	db     *gorm.DB
	outbox shared.OutboxEventSaver
	format booking.LRNumberFormat
}

// NewGormBookingRepository creates a new GormBookingRepository. outbox may be
// nil, in which case domain events are dropped after the write.
func NewGormBookingRepository(db *gorm.DB, outbox shared.OutboxEventSaver, format booking.LRNumberFormat) *GormBookingRepository {
	return &GormBookingRepository{db: db, outbox: outbox, format: format}
}

// Create allocates the LR number and inserts the booking, its lines and its
// events in one transaction
func (r *GormBookingRepository) Create(ctx context.Context, b *booking.Booking) error {
	if len(b.Articles) == 0 {
		return shared.NewValidationError("a booking needs at least one article")
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		prefix := r.format.Prefix(b.FromLocation, b.CreatedAt)
		seq, err := r.nextSequence(tx, b.OrgID, prefix)
		if err != nil {
			return fmt.Errorf("allocate lr number: %w", err)
		}
		if err := b.AssignLRNumber(r.format.Format(prefix, seq)); err != nil {
			return err
		}

		if err := tx.Create(models.BookingModelFromDomain(b)).Error; err != nil {
			return translateError(err)
		}
		return r.saveEvents(ctx, tx, b.GetDomainEvents())
	})
	if err != nil {
		b.LRNumber = ""
		b.ClearDomainEvents()
		return err
	}
	b.ClearDomainEvents()
	return nil
}

// nextSequence increments the (org, prefix) counter. The UPDATE row lock
// serializes concurrent allocators until the transaction ends.
func (r *GormBookingRepository) nextSequence(tx *gorm.DB, orgID uuid.UUID, prefix string) (int64, error) {
	now := time.Now()
	seed := &models.LRSequenceModel{OrgID: orgID, Prefix: prefix, LastValue: 0, UpdatedAt: now}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(seed).Error; err != nil {
		return 0, err
	}

	result := tx.Model(&models.LRSequenceModel{}).
		Where("org_id = ? AND prefix = ?", orgID, prefix).
		Updates(map[string]any{
			"last_value": gorm.Expr("last_value + 1"),
			"updated_at": now,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, fmt.Errorf("lr sequence %s missing after upsert", prefix)
	}

	var value int64
	if err := tx.Model(&models.LRSequenceModel{}).
		Where("org_id = ? AND prefix = ?", orgID, prefix).
		Select("last_value").
		Scan(&value).Error; err != nil {
		return 0, err
	}
	return value, nil
}

// FindByID loads a booking with its lines
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	var m models.BookingModel
	if err := r.withLines(r.db.WithContext(ctx)).
		First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// FindByLRNumber loads a booking by LR number inside the caller's scope
func (r *GormBookingRepository) FindByLRNumber(ctx context.Context, scope tenancy.ListFilter, lrNumber string) (*booking.Booking, error) {
	var m models.BookingModel
	if err := r.withLines(r.db.WithContext(ctx)).
		Scopes(datascope.BookingScope(scope)).
		Where("lr_number = ?", lrNumber).
		First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// List returns a page of booking headers narrowed to the caller's scope
func (r *GormBookingRepository) List(ctx context.Context, scope tenancy.ListFilter, q booking.ListQuery) (*shared.Paginated[booking.Booking], error) {
	filter := q.Filter.Normalize()

	query := r.db.WithContext(ctx).Model(&models.BookingModel{}).
		Scopes(datascope.BookingScope(scope))
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.FromDate != nil {
		query = query.Where("pickup_date >= ?", *q.FromDate)
	}
	if q.ToDate != nil {
		query = query.Where("pickup_date <= ?", *q.ToDate)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(
			`LOWER(lr_number) LIKE ? ESCAPE '\' OR LOWER(from_location) LIKE ? ESCAPE '\' OR LOWER(to_location) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern)
	}

	var rows []models.BookingModel
	total, err := paginate(query, filter, orderClause(filter, BookingSortFields, "created_at"), &rows)
	if err != nil {
		return nil, err
	}

	items := make([]booking.Booking, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// UpdateStatus writes b.Status if the stored row still has status `from` and
// b's version, then records the history row and events
func (r *GormBookingRepository) UpdateStatus(ctx context.Context, b *booking.Booking, from booking.Status, change booking.StatusChange) error {
	next := b.Version + 1
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.BookingModel{}).
			Where("id = ? AND status = ? AND version = ?", b.ID, from, b.Version).
			Updates(map[string]any{
				"status":     b.Status,
				"version":    next,
				"updated_at": b.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		if err := tx.Create(models.BookingStatusHistoryModelFromDomain(change)).Error; err != nil {
			return err
		}
		return r.saveEvents(ctx, tx, b.GetDomainEvents())
	})
	if err != nil {
		return err
	}
	b.Version = next
	b.ClearDomainEvents()
	return nil
}

// SaveArticles inserts the added lines and the new header total under a
// version lock
func (r *GormBookingRepository) SaveArticles(ctx context.Context, b *booking.Booking, added []booking.Article) error {
	if len(added) == 0 {
		return nil
	}
	next := b.Version + 1
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.BookingModel{}).
			Where("id = ? AND version = ?", b.ID, b.Version).
			Updates(map[string]any{
				"total_amount": b.TotalAmount,
				"rate_source":  b.RateSource,
				"version":      next,
				"updated_at":   b.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		lines := make([]models.BookingArticleModel, len(added))
		for i := range added {
			added[i].BookingID = b.ID
			lines[i] = *models.BookingArticleModelFromDomain(&added[i])
		}
		if err := tx.Create(&lines).Error; err != nil {
			return translateError(err)
		}
		return r.saveEvents(ctx, tx, b.GetDomainEvents())
	})
	if err != nil {
		return err
	}
	b.Version = next
	b.ClearDomainEvents()
	return nil
}

// History returns the status changes of a booking, oldest first
func (r *GormBookingRepository) History(ctx context.Context, bookingID uuid.UUID) ([]booking.StatusChange, error) {
	var rows []models.BookingStatusHistoryModel
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("changed_at ASC, id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	changes := make([]booking.StatusChange, len(rows))
	for i := range rows {
		changes[i] = rows[i].ToDomain()
	}
	return changes, nil
}

func (r *GormBookingRepository) withLines(db *gorm.DB) *gorm.DB {
	return db.Preload("Articles", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC, id")
	})
}

func (r *GormBookingRepository) saveEvents(ctx context.Context, tx *gorm.DB, events []shared.DomainEvent) error {
	if r.outbox == nil || len(events) == 0 {
		return nil
	}
	return r.outbox.SaveEvents(ctx, tx, events...)
}

// Ensure GormBookingRepository implements booking.Repository
var _ booking.Repository = (*GormBookingRepository)(nil)
