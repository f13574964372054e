package masterdata

import (
	"context"
	"testing"

	"github.com/freightcore/backend/internal/domain/masterdata"
	"github.com/freightcore/backend/internal/domain/rate"
	"github.com/freightcore/backend/internal/domain/shared"
	"github.com/freightcore/backend/internal/domain/tenancy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// =============================================================================
// Mocks
// =============================================================================

type MockBranchRepository struct {
	mock.Mock
}

func (m *MockBranchRepository) Create(ctx context.Context, branch *masterdata.Branch) error {
	args := m.Called(ctx, branch)
	return args.Error(0)
}

func (m *MockBranchRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*masterdata.Branch, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*masterdata.Branch), args.Error(1)
}

func (m *MockBranchRepository) List(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[masterdata.Branch], error) {
	args := m.Called(ctx, orgID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[masterdata.Branch]), args.Error(1)
}

func (m *MockBranchRepository) ExistsByCode(ctx context.Context, orgID uuid.UUID, code string) (bool, error) {
	args := m.Called(ctx, orgID, code)
	return args.Bool(0), args.Error(1)
}

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) Create(ctx context.Context, customer *masterdata.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*masterdata.Customer, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*masterdata.Customer), args.Error(1)
}

func (m *MockCustomerRepository) List(ctx context.Context, orgID uuid.UUID, branchID *uuid.UUID, filter shared.Filter) (*shared.Paginated[masterdata.Customer], error) {
	args := m.Called(ctx, orgID, branchID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[masterdata.Customer]), args.Error(1)
}

type MockArticleRepository struct {
	mock.Mock
}

func (m *MockArticleRepository) Create(ctx context.Context, article *masterdata.Article) error {
	args := m.Called(ctx, article)
	return args.Error(0)
}

func (m *MockArticleRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*masterdata.Article, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*masterdata.Article), args.Error(1)
}

func (m *MockArticleRepository) List(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[masterdata.Article], error) {
	args := m.Called(ctx, orgID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[masterdata.Article]), args.Error(1)
}

// =============================================================================
// Fixtures
// =============================================================================

var (
	testOrgID    = uuid.MustParse("0b0a6c36-6d2c-4a8e-9a57-6a0c1f5e0001")
	otherOrgID   = uuid.MustParse("0b0a6c36-6d2c-4a8e-9a57-6a0c1f5e0002")
	mumbaiBranch = uuid.MustParse("5d7e1b0e-2f44-4c1e-8f0e-1d3c5a7b0001")
)

func principal(role tenancy.Role) tenancy.Principal {
	return tenancy.Principal{UserID: uuid.New(), OrgID: testOrgID, BranchID: mumbaiBranch, Role: role}
}

func superAdmin() tenancy.Principal {
	return tenancy.Principal{UserID: uuid.New(), Role: tenancy.RoleSuperAdmin}
}

func emptyPage[T any]() *shared.Paginated[T] {
	page := shared.NewPaginated([]T{}, 0, 1, 20)
	return &page
}

// =============================================================================
// Branches
// =============================================================================

func TestBranchService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("admin creates a branch in their org", func(t *testing.T) {
		repo := new(MockBranchRepository)
		svc := NewBranchService(repo, tenancy.NewGuard(), zaptest.NewLogger(t))

		repo.On("ExistsByCode", ctx, testOrgID, "PUN").Return(false, nil)
		repo.On("Create", ctx, mock.AnythingOfType("*masterdata.Branch")).Return(nil)

		resp, err := svc.Create(ctx, principal(tenancy.RoleAdmin), CreateBranchInput{Name: "Pune", Code: "PUN", City: "Pune"})
		require.NoError(t, err)
		assert.Equal(t, testOrgID, resp.OrgID)
		assert.Equal(t, "PUN", resp.Code)
		assert.True(t, resp.IsActive)
		repo.AssertExpectations(t)
	})

	t.Run("duplicate code is rejected", func(t *testing.T) {
		repo := new(MockBranchRepository)
		svc := NewBranchService(repo, tenancy.NewGuard(), zaptest.NewLogger(t))
		repo.On("ExistsByCode", ctx, testOrgID, "PUN").Return(true, nil)

		_, err := svc.Create(ctx, principal(tenancy.RoleAdmin), CreateBranchInput{Name: "Pune", Code: "PUN"})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("operator may not create branches", func(t *testing.T) {
		repo := new(MockBranchRepository)
		svc := NewBranchService(repo, tenancy.NewGuard(), zaptest.NewLogger(t))

		_, err := svc.Create(ctx, principal(tenancy.RoleOperator), CreateBranchInput{Name: "Pune", Code: "PUN"})
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("admin cannot target another org", func(t *testing.T) {
		repo := new(MockBranchRepository)
		svc := NewBranchService(repo, tenancy.NewGuard(), zaptest.NewLogger(t))
		other := otherOrgID

		_, err := svc.Create(ctx, principal(tenancy.RoleAdmin), CreateBranchInput{OrgID: &other, Name: "Pune", Code: "PUN"})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("super admin must name the org", func(t *testing.T) {
		repo := new(MockBranchRepository)
		svc := NewBranchService(repo, tenancy.NewGuard(), zaptest.NewLogger(t))

		_, err := svc.Create(ctx, superAdmin(), CreateBranchInput{Name: "Pune", Code: "PUN"})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestBranchService_List(t *testing.T) {
	ctx := context.Background()
	repo := new(MockBranchRepository)
	svc := NewBranchService(repo, tenancy.NewGuard(), zaptest.NewLogger(t))

	branch, err := masterdata.NewBranch(testOrgID, "Mumbai", "MUM", "Mumbai")
	require.NoError(t, err)
	page := shared.NewPaginated([]masterdata.Branch{*branch}, 1, 1, 20)
	repo.On("List", ctx, testOrgID, mock.MatchedBy(func(f shared.Filter) bool {
		return f.PageSize == 20
	})).Return(&page, nil)

	resp, err := svc.List(ctx, principal(tenancy.RoleOperator), ListFilter{})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "MUM", resp.Items[0].Code)
	assert.Equal(t, int64(1), resp.Total)

	other := otherOrgID
	_, err = svc.List(ctx, principal(tenancy.RoleOperator), ListFilter{OrgID: &other})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = svc.List(ctx, tenancy.Principal{}, ListFilter{})
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

// =============================================================================
// Customers
// =============================================================================

func TestCustomerService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("branch customer", func(t *testing.T) {
		customers := new(MockCustomerRepository)
		branches := new(MockBranchRepository)
		svc := NewCustomerService(customers, branches, tenancy.NewGuard(), zaptest.NewLogger(t))
		branchID := mumbaiBranch

		branches.On("FindByID", ctx, testOrgID, mumbaiBranch).Return(&masterdata.Branch{}, nil)
		customers.On("Create", ctx, mock.AnythingOfType("*masterdata.Customer")).Return(nil)

		resp, err := svc.Create(ctx, principal(tenancy.RoleAdmin), CreateCustomerInput{
			BranchID: &branchID,
			Name:     "Shree Traders",
			Phone:    "+91 98200 12345",
			GSTIN:    " 27aapfu0939f1zv ",
		})
		require.NoError(t, err)
		assert.Equal(t, "27AAPFU0939F1ZV", resp.GSTIN)
		require.NotNil(t, resp.BranchID)
		assert.Equal(t, mumbaiBranch, *resp.BranchID)
		customers.AssertExpectations(t)
	})

	t.Run("unknown branch is a validation error", func(t *testing.T) {
		customers := new(MockCustomerRepository)
		branches := new(MockBranchRepository)
		svc := NewCustomerService(customers, branches, tenancy.NewGuard(), zaptest.NewLogger(t))
		branchID := uuid.New()

		branches.On("FindByID", ctx, testOrgID, branchID).Return(nil, shared.ErrNotFound)

		_, err := svc.Create(ctx, principal(tenancy.RoleAdmin), CreateCustomerInput{BranchID: &branchID, Name: "Shree Traders"})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
		customers.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("operator may not create customers", func(t *testing.T) {
		svc := NewCustomerService(new(MockCustomerRepository), new(MockBranchRepository), tenancy.NewGuard(), nil)

		_, err := svc.Create(ctx, principal(tenancy.RoleOperator), CreateCustomerInput{Name: "Shree Traders"})
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}

func TestCustomerService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("operator is narrowed to their branch", func(t *testing.T) {
		customers := new(MockCustomerRepository)
		svc := NewCustomerService(customers, new(MockBranchRepository), tenancy.NewGuard(), zaptest.NewLogger(t))

		customers.On("List", ctx, testOrgID, mock.MatchedBy(func(b *uuid.UUID) bool {
			return b != nil && *b == mumbaiBranch
		}), mock.Anything).Return(emptyPage[masterdata.Customer](), nil)

		_, err := svc.List(ctx, principal(tenancy.RoleOperator), ListFilter{})
		require.NoError(t, err)
		customers.AssertExpectations(t)
	})

	t.Run("admin sees the whole org", func(t *testing.T) {
		customers := new(MockCustomerRepository)
		svc := NewCustomerService(customers, new(MockBranchRepository), tenancy.NewGuard(), zaptest.NewLogger(t))

		customers.On("List", ctx, testOrgID, (*uuid.UUID)(nil), mock.Anything).Return(emptyPage[masterdata.Customer](), nil)

		resp, err := svc.List(ctx, principal(tenancy.RoleAdmin), ListFilter{})
		require.NoError(t, err)
		assert.Empty(t, resp.Items)
		customers.AssertExpectations(t)
	})
}

// =============================================================================
// Articles
// =============================================================================

func TestArticleService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("org-wide article with a weight rate", func(t *testing.T) {
		articles := new(MockArticleRepository)
		svc := NewArticleService(articles, new(MockBranchRepository), tenancy.NewGuard(), zaptest.NewLogger(t))
		articles.On("Create", ctx, mock.AnythingOfType("*masterdata.Article")).Return(nil)

		resp, err := svc.Create(ctx, principal(tenancy.RoleOrgAdmin), CreateArticleInput{
			Name:          "Cotton bales",
			Category:      "Textiles",
			BaseRatePerKg: decimal.NewFromInt(12),
		})
		require.NoError(t, err)
		assert.Equal(t, rate.ChargeBasisWeight, resp.ChargeBasis)
		assert.Equal(t, "textiles", resp.Category)
		assert.Nil(t, resp.BranchID)
		articles.AssertExpectations(t)
	})

	t.Run("operator may not create articles", func(t *testing.T) {
		svc := NewArticleService(new(MockArticleRepository), new(MockBranchRepository), tenancy.NewGuard(), nil)

		_, err := svc.Create(ctx, principal(tenancy.RoleOperator), CreateArticleInput{Name: "Cotton bales"})
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}

func TestArticleService_List(t *testing.T) {
	ctx := context.Background()
	articles := new(MockArticleRepository)
	svc := NewArticleService(articles, new(MockBranchRepository), tenancy.NewGuard(), zaptest.NewLogger(t))
	org := testOrgID

	articles.On("List", ctx, testOrgID, mock.Anything).Return(emptyPage[masterdata.Article](), nil)

	_, err := svc.List(ctx, superAdmin(), ListFilter{OrgID: &org})
	require.NoError(t, err)
	articles.AssertExpectations(t)
}
