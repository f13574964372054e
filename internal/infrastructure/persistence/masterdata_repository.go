package persistence

import (
	"context"
	"strings"

	"github.com/freightcore/backend/internal/domain/masterdata"
	"github.com/freightcore/backend/internal/domain/shared"
	"github.com/freightcore/backend/internal/domain/tenancy"
	"github.com/freightcore/backend/internal/infrastructure/persistence/datascope"
	"github.com/freightcore/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrganizationRepository implements masterdata.OrganizationRepository using GORM
type GormOrganizationRepository struct {
	db *gorm.DB
}

// NewGormOrganizationRepository creates a new GormOrganizationRepository
func NewGormOrganizationRepository(db *gorm.DB) *GormOrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

// Create creates a new organization
func (r *GormOrganizationRepository) Create(ctx context.Context, org *masterdata.Organization) error {
	return translateError(r.db.WithContext(ctx).Create(models.OrganizationModelFromDomain(org)).Error)
}

// FindByID finds an organization by ID
func (r *GormOrganizationRepository) FindByID(ctx context.Context, id uuid.UUID) (*masterdata.Organization, error) {
	var m models.OrganizationModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// GormBranchRepository implements masterdata.BranchRepository using GORM
type GormBranchRepository struct {
	db *gorm.DB
}

// NewGormBranchRepository creates a new GormBranchRepository
func NewGormBranchRepository(db *gorm.DB) *GormBranchRepository {
	return &GormBranchRepository{db: db}
}

// Create creates a new branch
func (r *GormBranchRepository) Create(ctx context.Context, branch *masterdata.Branch) error {
	return translateError(r.db.WithContext(ctx).Create(models.BranchModelFromDomain(branch)).Error)
}

// FindByID finds a branch within an organization
func (r *GormBranchRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*masterdata.Branch, error) {
	var m models.BranchModel
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// List returns a page of branches of an organization
func (r *GormBranchRepository) List(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[masterdata.Branch], error) {
	filter = filter.Normalize()
	query := searchByName(r.db.WithContext(ctx).Model(&models.BranchModel{}).Where("org_id = ?", orgID), filter)

	var rows []models.BranchModel
	total, err := paginate(query, filter, orderClause(filter, BranchSortFields, "created_at"), &rows)
	if err != nil {
		return nil, err
	}
	items := make([]masterdata.Branch, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// ExistsByCode checks the per-organization branch code uniqueness
func (r *GormBranchRepository) ExistsByCode(ctx context.Context, orgID uuid.UUID, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.BranchModel{}).
		Where("org_id = ? AND code = ?", orgID, strings.ToUpper(strings.TrimSpace(code))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GormCustomerRepository implements masterdata.CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// Create creates a new customer
func (r *GormCustomerRepository) Create(ctx context.Context, customer *masterdata.Customer) error {
	return translateError(r.db.WithContext(ctx).Create(models.CustomerModelFromDomain(customer)).Error)
}

// FindByID finds a customer within an organization
func (r *GormCustomerRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*masterdata.Customer, error) {
	var m models.CustomerModel
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// List returns customers of an organization. With a branch, only that
// branch's customers and the org-wide ones are returned.
func (r *GormCustomerRepository) List(ctx context.Context, orgID uuid.UUID, branchID *uuid.UUID, filter shared.Filter) (*shared.Paginated[masterdata.Customer], error) {
	filter = filter.Normalize()
	scope := tenancy.ListFilter{OrgID: orgID, BranchID: branchID}
	query := searchByName(r.db.WithContext(ctx).Model(&models.CustomerModel{}).
		Scopes(datascope.Apply(scope, datascope.ResourceCustomer)), filter)

	var rows []models.CustomerModel
	total, err := paginate(query, filter, orderClause(filter, MasterDataSortFields, "created_at"), &rows)
	if err != nil {
		return nil, err
	}
	items := make([]masterdata.Customer, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// GormArticleRepository implements masterdata.ArticleRepository using GORM
type GormArticleRepository struct {
	db *gorm.DB
}

// NewGormArticleRepository creates a new GormArticleRepository
func NewGormArticleRepository(db *gorm.DB) *GormArticleRepository {
	return &GormArticleRepository{db: db}
}

// Create creates a new article
func (r *GormArticleRepository) Create(ctx context.Context, article *masterdata.Article) error {
	return translateError(r.db.WithContext(ctx).Create(models.ArticleModelFromDomain(article)).Error)
}

// FindByID finds an article within an organization
func (r *GormArticleRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*masterdata.Article, error) {
	var m models.ArticleModel
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// List returns a page of articles of an organization
func (r *GormArticleRepository) List(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[masterdata.Article], error) {
	filter = filter.Normalize()
	query := searchByName(r.db.WithContext(ctx).Model(&models.ArticleModel{}).Where("org_id = ?", orgID), filter)

	var rows []models.ArticleModel
	total, err := paginate(query, filter, orderClause(filter, MasterDataSortFields, "created_at"), &rows)
	if err != nil {
		return nil, err
	}
	items := make([]masterdata.Article, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

func searchByName(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search == "" {
		return query
	}
	return query.Where(`LOWER(name) LIKE ? ESCAPE '\'`, likePattern(filter.Search))
}

// Ensure the GORM repositories implement the master data interfaces
var (
	_ masterdata.OrganizationRepository = (*GormOrganizationRepository)(nil)
	_ masterdata.BranchRepository       = (*GormBranchRepository)(nil)
	_ masterdata.CustomerRepository     = (*GormCustomerRepository)(nil)
	_ masterdata.ArticleRepository      = (*GormArticleRepository)(nil)
)
