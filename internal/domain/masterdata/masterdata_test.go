package masterdata

import (
	"testing"

	"github.com/freightcore/backend/internal/domain/rate"
	"github.com/freightcore/backend/internal/domain/shared"
	"github.com/freightcore/backend/internal/domain/tenancy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrganization(t *testing.T) {
	org, err := NewOrganization(" Shree Logistics ", "shree-01")
	require.NoError(t, err)
	assert.Equal(t, "Shree Logistics", org.Name)
	assert.Equal(t, "SHREE-01", org.Code)
	assert.True(t, org.IsActive)

	_, err = NewOrganization("X", "bad code")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	_, err = NewOrganization("", "X")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestNewBranch(t *testing.T) {
	orgID := uuid.New()
	b, err := NewBranch(orgID, "Andheri", "and", "Mumbai")
	require.NoError(t, err)
	scope := b.Scope()
	assert.Equal(t, tenancy.ResourceBranch, scope.Kind)
	assert.Equal(t, b.ID, scope.BranchID)

	_, err = NewBranch(uuid.Nil, "Andheri", "AND", "")
	assert.Error(t, err)
}

func TestNewCustomer(t *testing.T) {
	orgID, branchID := uuid.New(), uuid.New()

	c, err := NewCustomer(orgID, nil, "Acme Traders", "+91 98200-12345")
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, c.Scope().BranchID, "org-wide customer")

	c, err = NewCustomer(orgID, &branchID, "Acme Traders", "")
	require.NoError(t, err)
	assert.Equal(t, branchID, c.Scope().BranchID)

	_, err = NewCustomer(orgID, nil, "Acme", "call me")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestNewArticle(t *testing.T) {
	orgID := uuid.New()

	a, err := NewArticle(orgID, ArticleInput{
		Name:          "Cartons",
		Category:      " Electronics ",
		BaseRatePerKg: decimal.NewFromInt(12),
		MinimumCharge: decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	assert.Equal(t, rate.ChargeBasisWeight, a.ChargeBasis, "weight is the default basis")
	assert.Equal(t, "electronics", a.Category)
	assert.True(t, a.HasStandardRate())

	r := a.StandardRate()
	assert.True(t, r.PerKg.Equal(decimal.NewFromInt(12)))
	assert.True(t, r.MinimumCharge.Equal(decimal.NewFromInt(100)))

	_, err = NewArticle(orgID, ArticleInput{Name: "Glass", BaseRatePerKg: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = NewArticle(orgID, ArticleInput{Name: "Glass", ChargeBasis: "volume"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = NewArticle(orgID, ArticleInput{Name: "Glass", BaseRatePerKg: decimal.RequireFromString("1.23456")})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = NewArticle(orgID, ArticleInput{Name: "Glass", MinimumCharge: decimal.RequireFromString("10000000000000000")})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	empty, err := NewArticle(orgID, ArticleInput{Name: "Misc"})
	require.NoError(t, err)
	assert.False(t, empty.HasStandardRate())
}
