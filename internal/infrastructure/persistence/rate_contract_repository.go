package persistence

import (
	"context"
	"time"

	"github.com/freightcore/backend/internal/domain/rate"
	"github.com/freightcore/backend/internal/domain/shared"
	"github.com/freightcore/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRateContractRepository implements rate.ContractRepository using GORM
type GormRateContractRepository struct {
	db     *gorm.DB
	outbox shared.OutboxEventSaver
}

// NewGormRateContractRepository creates a new GormRateContractRepository
func NewGormRateContractRepository(db *gorm.DB, outbox shared.OutboxEventSaver) *GormRateContractRepository {
	return &GormRateContractRepository{db: db, outbox: outbox}
}

// FindActiveForCustomer loads the active contracts of a customer whose
// validity window contains the given day, with their active slabs
func (r *GormRateContractRepository) FindActiveForCustomer(ctx context.Context, orgID, customerID uuid.UUID, on time.Time) ([]*rate.RateContract, error) {
	day := rate.DateOf(on)
	var rows []models.RateContractModel
	if err := r.db.WithContext(ctx).
		Preload("Slabs", "is_active = ?", true).
		Where("org_id = ? AND customer_id = ? AND status = ?", orgID, customerID, rate.ContractStatusActive).
		Where("valid_from <= ? AND valid_until >= ?", day, day).
		Order("valid_from DESC, id").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	contracts := make([]*rate.RateContract, len(rows))
	for i := range rows {
		contracts[i] = rows[i].ToDomain()
	}
	return contracts, nil
}

// FindByID finds a contract with all its slabs within an organization
func (r *GormRateContractRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*rate.RateContract, error) {
	var m models.RateContractModel
	if err := r.db.WithContext(ctx).
		Preload("Slabs", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id")
		}).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// List returns a page of contract headers for an organization
func (r *GormRateContractRepository) List(ctx context.Context, orgID uuid.UUID, q rate.ContractListQuery) (*shared.Paginated[rate.RateContract], error) {
	filter := q.Filter.Normalize()

	query := r.db.WithContext(ctx).Model(&models.RateContractModel{}).Where("org_id = ?", orgID)
	if q.CustomerID != nil {
		query = query.Where("customer_id = ?", *q.CustomerID)
	}
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if filter.Search != "" {
		query = query.Where(`LOWER(contract_number) LIKE ? ESCAPE '\'`, likePattern(filter.Search))
	}

	var rows []models.RateContractModel
	total, err := paginate(query, filter, orderClause(filter, ContractSortFields, "created_at"), &rows)
	if err != nil {
		return nil, err
	}
	items := make([]rate.RateContract, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// ExistsByNumber checks the per-organization contract number uniqueness
func (r *GormRateContractRepository) ExistsByNumber(ctx context.Context, orgID uuid.UUID, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.RateContractModel{}).
		Where("org_id = ? AND contract_number = ?", orgID, number).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a contract with its slabs and pending events
func (r *GormRateContractRepository) Create(ctx context.Context, contract *rate.RateContract) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(models.RateContractModelFromDomain(contract)).Error; err != nil {
			return translateError(err)
		}
		return r.saveEvents(ctx, tx, contract.GetDomainEvents())
	})
	if err != nil {
		return err
	}
	contract.ClearDomainEvents()
	return nil
}

// Save updates the header with optimistic locking and upserts the slabs.
// Existing slabs only take their active flag; pricing fields never change.
func (r *GormRateContractRepository) Save(ctx context.Context, contract *rate.RateContract) error {
	next := contract.Version + 1
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.RateContractModel{}).
			Where("id = ? AND org_id = ? AND version = ?", contract.ID, contract.OrgID, contract.Version).
			Updates(map[string]any{
				"valid_from":               contract.ValidFrom,
				"valid_until":              contract.ValidUntil,
				"payment_terms":            contract.PaymentTerms,
				"credit_limit":             contract.CreditLimit,
				"base_discount_percentage": contract.BaseDiscountPercentage,
				"status":                   contract.Status,
				"version":                  next,
				"updated_at":               contract.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		if len(contract.Slabs) > 0 {
			slabs := make([]models.RateSlabModel, len(contract.Slabs))
			for i := range contract.Slabs {
				slabs[i] = models.RateSlabModelFromDomain(contract.Slabs[i])
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"is_active", "updated_at"}),
			}).Create(&slabs).Error; err != nil {
				return err
			}
		}
		return r.saveEvents(ctx, tx, contract.GetDomainEvents())
	})
	if err != nil {
		return err
	}
	contract.Version = next
	contract.ClearDomainEvents()
	return nil
}

// ExpireEnded marks active contracts whose window ended before today as expired
func (r *GormRateContractRepository) ExpireEnded(ctx context.Context, today time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.RateContractModel{}).
		Where("status = ? AND valid_until < ?", rate.ContractStatusActive, rate.DateOf(today)).
		Updates(map[string]any{
			"status":     rate.ContractStatusExpired,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

func (r *GormRateContractRepository) saveEvents(ctx context.Context, tx *gorm.DB, events []shared.DomainEvent) error {
	if r.outbox == nil || len(events) == 0 {
		return nil
	}
	return r.outbox.SaveEvents(ctx, tx, events...)
}

// Ensure GormRateContractRepository implements rate.ContractRepository
var _ rate.ContractRepository = (*GormRateContractRepository)(nil)
