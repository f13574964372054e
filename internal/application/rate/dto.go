package rate

import (
	"time"

	"github.com/freightcore/backend/internal/domain/rate"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateContractInput contains the input for creating a draft contract
type CreateContractInput struct {
	OrgID                  *uuid.UUID
	CustomerID             uuid.UUID
	ContractNumber         string
	ValidFrom              time.Time
	ValidUntil             time.Time
	PaymentTerms           string
	CreditLimit            decimal.Decimal
	BaseDiscountPercentage decimal.Decimal
	Slabs                  []rate.SlabInput
}

// ContractListFilter narrows a contract listing
type ContractListFilter struct {
	OrgID      *uuid.UUID
	Page       int
	PageSize   int
	OrderBy    string
	OrderDir   string
	Search     string
	CustomerID *uuid.UUID
	Status     rate.ContractStatus
}

// SlabResponse is one contract slab
type SlabResponse struct {
	ID              uuid.UUID        `json:"id"`
	FromLocation    string           `json:"from_location"`
	ToLocation      string           `json:"to_location"`
	ArticleID       *uuid.UUID       `json:"article_id,omitempty"`
	ArticleCategory string           `json:"article_category,omitempty"`
	WeightFrom      decimal.Decimal  `json:"weight_from"`
	WeightTo        decimal.Decimal  `json:"weight_to"`
	ChargeBasis     rate.ChargeBasis `json:"charge_basis"`
	RatePerKg       decimal.Decimal  `json:"rate_per_kg"`
	RatePerUnit     decimal.Decimal  `json:"rate_per_unit"`
	FixedAmount     decimal.Decimal  `json:"fixed_amount"`
	MinimumCharge   decimal.Decimal  `json:"minimum_charge"`
	IsActive        bool             `json:"is_active"`
}

// ContractResponse is a rate contract with its slabs
type ContractResponse struct {
	ID                     uuid.UUID       `json:"id"`
	OrgID                  uuid.UUID       `json:"org_id"`
	CustomerID             uuid.UUID       `json:"customer_id"`
	ContractNumber         string          `json:"contract_number"`
	ValidFrom              string          `json:"valid_from"`
	ValidUntil             string          `json:"valid_until"`
	PaymentTerms           string          `json:"payment_terms,omitempty"`
	CreditLimit            decimal.Decimal `json:"credit_limit"`
	BaseDiscountPercentage decimal.Decimal `json:"base_discount_percentage"`
	Status                 string          `json:"status"`
	Slabs                  []SlabResponse  `json:"slabs"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
	Version                int             `json:"version"`
}

// ToSlabResponse converts a domain slab
func ToSlabResponse(s *rate.RateSlab) SlabResponse {
	return SlabResponse{
		ID:              s.ID,
		FromLocation:    s.FromLocation,
		ToLocation:      s.ToLocation,
		ArticleID:       s.ArticleID,
		ArticleCategory: s.ArticleCategory,
		WeightFrom:      s.WeightFrom,
		WeightTo:        s.WeightTo,
		ChargeBasis:     s.ChargeBasis,
		RatePerKg:       s.RatePerKg,
		RatePerUnit:     s.RatePerUnit,
		FixedAmount:     s.FixedAmount,
		MinimumCharge:   s.MinimumCharge,
		IsActive:        s.IsActive,
	}
}

// ToContractResponse converts a domain contract, slabs included
func ToContractResponse(c *rate.RateContract) ContractResponse {
	slabs := make([]SlabResponse, len(c.Slabs))
	for i := range c.Slabs {
		slabs[i] = ToSlabResponse(&c.Slabs[i])
	}
	return ContractResponse{
		ID:                     c.ID,
		OrgID:                  c.OrgID,
		CustomerID:             c.CustomerID,
		ContractNumber:         c.ContractNumber,
		ValidFrom:              c.ValidFrom.Format(time.DateOnly),
		ValidUntil:             c.ValidUntil.Format(time.DateOnly),
		PaymentTerms:           c.PaymentTerms,
		CreditLimit:            c.CreditLimit,
		BaseDiscountPercentage: c.BaseDiscountPercentage,
		Status:                 c.Status.String(),
		Slabs:                  slabs,
		CreatedAt:              c.CreatedAt,
		UpdatedAt:              c.UpdatedAt,
		Version:                c.Version,
	}
}

// ToContractResponses converts a page of contracts
func ToContractResponses(items []rate.RateContract) []ContractResponse {
	out := make([]ContractResponse, len(items))
	for i := range items {
		out[i] = ToContractResponse(&items[i])
	}
	return out
}
