package masterdata

import (
	"time"

	"github.com/freightcore/backend/internal/domain/masterdata"
	"github.com/freightcore/backend/internal/domain/rate"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ListFilter narrows a master data listing
type ListFilter struct {
	OrgID    *uuid.UUID
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
}

// CreateBranchInput contains the input for creating a branch
type CreateBranchInput struct {
	OrgID *uuid.UUID
	Name  string
	Code  string
	City  string
}

// CreateCustomerInput contains the input for creating a customer
type CreateCustomerInput struct {
	OrgID    *uuid.UUID
	BranchID *uuid.UUID
	Name     string
	Phone    string
	GSTIN    string
	Address  string
}

// CreateArticleInput contains the input for creating an article
type CreateArticleInput struct {
	OrgID                   *uuid.UUID
	BranchID                *uuid.UUID
	Name                    string
	Category                string
	ChargeBasis             rate.ChargeBasis
	BaseRatePerKg           decimal.Decimal
	BaseRatePerUnit         decimal.Decimal
	MinimumCharge           decimal.Decimal
	RequiresSpecialHandling bool
}

// BranchResponse is a branch
type BranchResponse struct {
	ID        uuid.UUID `json:"id"`
	OrgID     uuid.UUID `json:"org_id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	City      string    `json:"city,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// CustomerResponse is a customer
type CustomerResponse struct {
	ID        uuid.UUID  `json:"id"`
	OrgID     uuid.UUID  `json:"org_id"`
	BranchID  *uuid.UUID `json:"branch_id,omitempty"`
	Name      string     `json:"name"`
	Phone     string     `json:"phone,omitempty"`
	GSTIN     string     `json:"gstin,omitempty"`
	Address   string     `json:"address,omitempty"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
}

// ArticleResponse is an article with its standard rate
type ArticleResponse struct {
	ID                      uuid.UUID        `json:"id"`
	OrgID                   uuid.UUID        `json:"org_id"`
	BranchID                *uuid.UUID       `json:"branch_id,omitempty"`
	Name                    string           `json:"name"`
	Category                string           `json:"category,omitempty"`
	ChargeBasis             rate.ChargeBasis `json:"charge_basis"`
	BaseRatePerKg           decimal.Decimal  `json:"base_rate_per_kg"`
	BaseRatePerUnit         decimal.Decimal  `json:"base_rate_per_unit"`
	MinimumCharge           decimal.Decimal  `json:"minimum_charge"`
	RequiresSpecialHandling bool             `json:"requires_special_handling"`
	IsActive                bool             `json:"is_active"`
	CreatedAt               time.Time        `json:"created_at"`
}

// ToBranchResponse converts a domain branch
func ToBranchResponse(b *masterdata.Branch) BranchResponse {
	return BranchResponse{
		ID:        b.ID,
		OrgID:     b.OrgID,
		Name:      b.Name,
		Code:      b.Code,
		City:      b.City,
		IsActive:  b.IsActive,
		CreatedAt: b.CreatedAt,
	}
}

// ToCustomerResponse converts a domain customer
func ToCustomerResponse(c *masterdata.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		OrgID:     c.OrgID,
		BranchID:  c.BranchID,
		Name:      c.Name,
		Phone:     c.Phone,
		GSTIN:     c.GSTIN,
		Address:   c.Address,
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt,
	}
}

// ToArticleResponse converts a domain article
func ToArticleResponse(a *masterdata.Article) ArticleResponse {
	return ArticleResponse{
		ID:                      a.ID,
		OrgID:                   a.OrgID,
		BranchID:                a.BranchID,
		Name:                    a.Name,
		Category:                a.Category,
		ChargeBasis:             a.ChargeBasis,
		BaseRatePerKg:           a.BaseRatePerKg,
		BaseRatePerUnit:         a.BaseRatePerUnit,
		MinimumCharge:           a.MinimumCharge,
		RequiresSpecialHandling: a.RequiresSpecialHandling,
		IsActive:                a.IsActive,
		CreatedAt:               a.CreatedAt,
	}
}

func convertPage[T, R any](items []T, convert func(*T) R) []R {
	out := make([]R, len(items))
	for i := range items {
		out[i] = convert(&items[i])
	}
	return out
}
