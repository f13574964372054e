package persistence

import (
	"context"
	"strings"

	"github.com/freightcore/backend/internal/domain/identity"
	"github.com/freightcore/backend/internal/domain/shared"
	"github.com/freightcore/backend/internal/domain/tenancy"
	"github.com/freightcore/backend/internal/infrastructure/persistence/datascope"
	"github.com/freightcore/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormUserRepository implements identity.UserRepository using GORM
type GormUserRepository struct {
	db     *gorm.DB
	outbox shared.OutboxEventSaver
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB, outbox shared.OutboxEventSaver) *GormUserRepository {
	return &GormUserRepository{db: db, outbox: outbox}
}

// Create creates a new user
func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(models.UserModelFromDomain(user)).Error; err != nil {
			return translateError(err)
		}
		return r.saveEvents(ctx, tx, user.GetDomainEvents())
	})
	if err != nil {
		return err
	}
	user.ClearDomainEvents()
	return nil
}

// Save updates a user with optimistic locking
func (r *GormUserRepository) Save(ctx context.Context, user *identity.User) error {
	next := user.Version + 1
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.UserModel{}).
			Where("id = ? AND version = ?", user.ID, user.Version).
			Updates(map[string]any{
				"display_name":    user.DisplayName,
				"password_hash":   user.PasswordHash,
				"role":            user.Role,
				"status":          user.Status,
				"last_login_at":   user.LastLoginAt,
				"failed_attempts": user.FailedAttempts,
				"locked_until":    user.LockedUntil,
				"version":         next,
				"updated_at":      user.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return r.saveEvents(ctx, tx, user.GetDomainEvents())
	})
	if err != nil {
		return err
	}
	user.Version = next
	user.ClearDomainEvents()
	return nil
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var m models.UserModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// FindByUsername finds a user by login name, case-insensitively
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	var m models.UserModel
	if err := r.db.WithContext(ctx).
		Where("username = ?", strings.ToLower(strings.TrimSpace(username))).
		First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// ExistsByUsername checks if a username is taken
func (r *GormUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Where("username = ?", strings.ToLower(strings.TrimSpace(username))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns users visible in the given scope
func (r *GormUserRepository) List(ctx context.Context, scope tenancy.ListFilter, filter shared.Filter) (*shared.Paginated[identity.User], error) {
	filter = filter.Normalize()

	query := r.db.WithContext(ctx).Model(&models.UserModel{}).
		Scopes(datascope.Apply(scope, datascope.ResourceUser))
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(`LOWER(username) LIKE ? ESCAPE '\' OR LOWER(display_name) LIKE ? ESCAPE '\'`, pattern, pattern)
	}

	var rows []models.UserModel
	total, err := paginate(query, filter, orderClause(filter, UserSortFields, "created_at"), &rows)
	if err != nil {
		return nil, err
	}
	items := make([]identity.User, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

func (r *GormUserRepository) saveEvents(ctx context.Context, tx *gorm.DB, events []shared.DomainEvent) error {
	if r.outbox == nil || len(events) == 0 {
		return nil
	}
	return r.outbox.SaveEvents(ctx, tx, events...)
}

// Ensure GormUserRepository implements identity.UserRepository
var _ identity.UserRepository = (*GormUserRepository)(nil)
