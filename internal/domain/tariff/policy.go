package tariff

import (
	"sort"

	"github.com/freightcore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// BulkTier grants a percentage discount from a minimum quantity upward
type BulkTier struct {
	MinQuantity int             `json:"min_quantity"`
	Percentage  decimal.Decimal `json:"percentage"`
}

// Policy holds the organization-wide pricing constants
type Policy struct {
	TaxPercentage             decimal.Decimal
	SpecialHandlingMultiplier decimal.Decimal
	VolumetricDivisor         decimal.Decimal
	BulkTiers                 []BulkTier
}

// DefaultPolicy returns 5% tax, a 1.5x special-handling multiplier, a 5000
// volumetric divisor and the 50/10 unit bulk tiers
func DefaultPolicy() Policy {
	return Policy{
		TaxPercentage:             decimal.NewFromInt(5),
		SpecialHandlingMultiplier: decimal.RequireFromString("1.5"),
		VolumetricDivisor:         decimal.NewFromInt(5000),
		BulkTiers: []BulkTier{
			{MinQuantity: 50, Percentage: decimal.NewFromInt(10)},
			{MinQuantity: 10, Percentage: decimal.NewFromInt(5)},
		},
	}
}

// Validate checks the policy and sorts tiers by descending threshold
func (p *Policy) Validate() error {
	if !isPercentage(p.TaxPercentage) {
		return shared.NewValidationError("tax percentage must be between 0 and 100")
	}
	if p.SpecialHandlingMultiplier.LessThan(decimal.NewFromInt(1)) {
		return shared.NewValidationError("special handling multiplier must be at least 1")
	}
	if !p.VolumetricDivisor.IsPositive() {
		return shared.NewValidationError("volumetric divisor must be positive")
	}
	for _, tier := range p.BulkTiers {
		if tier.MinQuantity <= 0 {
			return shared.NewValidationError("bulk tier min quantity must be positive")
		}
		if !isPercentage(tier.Percentage) {
			return shared.NewValidationError("bulk tier percentage must be between 0 and 100")
		}
	}
	sort.SliceStable(p.BulkTiers, func(i, j int) bool {
		return p.BulkTiers[i].MinQuantity > p.BulkTiers[j].MinQuantity
	})
	return nil
}

func isPercentage(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThanOrEqual(hundred)
}

func percentOf(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(hundred)
}
