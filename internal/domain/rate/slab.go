package rate

import (
	"strings"
	"time"

	"github.com/freightcore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Specificity ranks how narrowly a slab targets an article
const (
	SpecificityWildcard = 1
	SpecificityCategory = 2
	SpecificityArticle  = 3
)

// RateSlab is a route- and weight-band pricing rule inside a contract
type RateSlab struct {
	ID              uuid.UUID
	ContractID      uuid.UUID
	FromLocation    string
	ToLocation      string
	ArticleID       *uuid.UUID
	ArticleCategory string
	WeightFrom      decimal.Decimal
	WeightTo        decimal.Decimal
	ChargeBasis     ChargeBasis
	RatePerKg       decimal.Decimal
	RatePerUnit     decimal.Decimal
	FixedAmount     decimal.Decimal
	MinimumCharge   decimal.Decimal
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SlabInput carries the fields needed to create a slab
type SlabInput struct {
	FromLocation    string
	ToLocation      string
	ArticleID       *uuid.UUID
	ArticleCategory string
	WeightFrom      decimal.Decimal
	WeightTo        decimal.Decimal
	ChargeBasis     ChargeBasis
	RatePerKg       decimal.Decimal
	RatePerUnit     decimal.Decimal
	FixedAmount     decimal.Decimal
	MinimumCharge   decimal.Decimal
}

// NewRateSlab validates input and creates an active slab
func NewRateSlab(contractID uuid.UUID, in SlabInput) (*RateSlab, error) {
	from := strings.TrimSpace(in.FromLocation)
	to := strings.TrimSpace(in.ToLocation)
	if from == "" || to == "" {
		return nil, shared.NewValidationError("slab route requires from_location and to_location")
	}
	if in.WeightFrom.IsNegative() {
		return nil, shared.NewValidationError("weight_from cannot be negative")
	}
	if !in.WeightTo.GreaterThan(in.WeightFrom) {
		return nil, shared.NewValidationError("weight_to must be greater than weight_from")
	}
	for name, v := range map[string]decimal.Decimal{"weight_from": in.WeightFrom, "weight_to": in.WeightTo} {
		if err := shared.WeightColumn.Check(name, v); err != nil {
			return nil, err
		}
	}
	category := strings.TrimSpace(in.ArticleCategory)
	if in.ArticleID != nil && category != "" {
		return nil, shared.NewValidationError("a slab targets either an article or a category, not both")
	}
	r := Rate{
		Basis:         in.ChargeBasis,
		PerKg:         in.RatePerKg,
		PerUnit:       in.RatePerUnit,
		FixedAmount:   in.FixedAmount,
		MinimumCharge: in.MinimumCharge,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	return &RateSlab{
		ID:              uuid.New(),
		ContractID:      contractID,
		FromLocation:    from,
		ToLocation:      to,
		ArticleID:       in.ArticleID,
		ArticleCategory: category,
		WeightFrom:      in.WeightFrom,
		WeightTo:        in.WeightTo,
		ChargeBasis:     in.ChargeBasis,
		RatePerKg:       in.RatePerKg,
		RatePerUnit:     in.RatePerUnit,
		FixedAmount:     in.FixedAmount,
		MinimumCharge:   in.MinimumCharge,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// Matches reports whether the slab applies to the query: active, same route,
// weight inside [WeightFrom, WeightTo), and a compatible article filter
func (s *RateSlab) Matches(q Query) bool {
	if !s.IsActive {
		return false
	}
	if !sameLocation(s.FromLocation, q.From) || !sameLocation(s.ToLocation, q.To) {
		return false
	}
	if q.Weight.LessThan(s.WeightFrom) || !q.Weight.LessThan(s.WeightTo) {
		return false
	}
	switch {
	case s.ArticleID != nil:
		return q.ArticleID != nil && *q.ArticleID == *s.ArticleID
	case s.ArticleCategory != "":
		return strings.EqualFold(s.ArticleCategory, strings.TrimSpace(q.ArticleCategory))
	default:
		return true
	}
}

// Specificity returns the article-targeting rank of the slab
func (s *RateSlab) Specificity() int {
	switch {
	case s.ArticleID != nil:
		return SpecificityArticle
	case s.ArticleCategory != "":
		return SpecificityCategory
	default:
		return SpecificityWildcard
	}
}

// WeightSpan is the width of the weight band; narrower wins ties
func (s *RateSlab) WeightSpan() decimal.Decimal {
	return s.WeightTo.Sub(s.WeightFrom)
}

// Rate returns the slab's figures as a resolved rate
func (s *RateSlab) Rate() Rate {
	return Rate{
		Basis:         s.ChargeBasis,
		PerKg:         s.RatePerKg,
		PerUnit:       s.RatePerUnit,
		FixedAmount:   s.FixedAmount,
		MinimumCharge: s.MinimumCharge,
	}
}

// Deactivate stops the slab from matching
func (s *RateSlab) Deactivate() {
	s.IsActive = false
	s.UpdatedAt = time.Now()
}

func sameLocation(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
