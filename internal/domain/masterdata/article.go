package masterdata

import (
	"strings"

	"github.com/freightcore/backend/internal/domain/rate"
	"github.com/freightcore/backend/internal/domain/shared"
	"github.com/freightcore/backend/internal/domain/tenancy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Article is a commodity type with its standard rate
type Article struct {
	shared.OrgAggregateRoot
	BranchID                *uuid.UUID
	Name                    string
	Category                string
	ChargeBasis             rate.ChargeBasis
	BaseRatePerKg           decimal.Decimal
	BaseRatePerUnit         decimal.Decimal
	MinimumCharge           decimal.Decimal
	RequiresSpecialHandling bool
	IsActive                bool
}

// ArticleInput carries the fields of a new article
type ArticleInput struct {
	BranchID                *uuid.UUID
	Name                    string
	Category                string
	ChargeBasis             rate.ChargeBasis
	BaseRatePerKg           decimal.Decimal
	BaseRatePerUnit         decimal.Decimal
	MinimumCharge           decimal.Decimal
	RequiresSpecialHandling bool
}

// NewArticle creates an active article
func NewArticle(orgID uuid.UUID, in ArticleInput) (*Article, error) {
	if orgID == uuid.Nil {
		return nil, shared.NewValidationError("org_id is required")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > 200 {
		return nil, shared.NewValidationError("article name must be 1 to 200 characters")
	}
	basis := in.ChargeBasis
	if basis == "" {
		basis = rate.ChargeBasisWeight
	}
	a := &Article{
		OrgAggregateRoot:        shared.NewOrgAggregateRoot(orgID),
		BranchID:                in.BranchID,
		Name:                    name,
		Category:                strings.ToLower(strings.TrimSpace(in.Category)),
		ChargeBasis:             basis,
		BaseRatePerKg:           in.BaseRatePerKg,
		BaseRatePerUnit:         in.BaseRatePerUnit,
		MinimumCharge:           in.MinimumCharge,
		RequiresSpecialHandling: in.RequiresSpecialHandling,
		IsActive:                true,
	}
	if err := a.StandardRate().Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// HasStandardRate reports whether the article carries any usable rate
func (a *Article) HasStandardRate() bool {
	return a.BaseRatePerKg.IsPositive() || a.BaseRatePerUnit.IsPositive()
}

// StandardRate returns the article's rate for bookings without a contract slab
func (a *Article) StandardRate() rate.Rate {
	return rate.Rate{
		Basis:         a.ChargeBasis,
		PerKg:         a.BaseRatePerKg,
		PerUnit:       a.BaseRatePerUnit,
		MinimumCharge: a.MinimumCharge,
	}
}

// Scope returns the tenancy footprint; org-wide articles have no branch
func (a *Article) Scope() tenancy.ResourceScope {
	if a.BranchID == nil {
		return tenancy.OrgScope(tenancy.ResourceArticle, a.OrgID)
	}
	return tenancy.BranchScope(tenancy.ResourceArticle, a.OrgID, *a.BranchID)
}
