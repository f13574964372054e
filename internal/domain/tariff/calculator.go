// Package tariff turns a resolved rate and line attributes into an itemized
// charge breakdown and aggregates line totals into a booking total.
package tariff

import (
	"fmt"

	"github.com/freightcore/backend/internal/domain/rate"
	"github.com/freightcore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of decimal places money is rounded to
const MoneyPlaces = 2

// Tolerance is the largest accepted gap between a declared and a computed total
var Tolerance = decimal.RequireFromString("0.01")

// Dimensions of one unit in centimetres
type Dimensions struct {
	LengthCm decimal.Decimal `json:"length_cm"`
	WidthCm  decimal.Decimal `json:"width_cm"`
	HeightCm decimal.Decimal `json:"height_cm"`
}

// Options are the per-line service charges and adjustments
type Options struct {
	LoadingRatePerUnit      decimal.Decimal
	UnloadingRatePerUnit    decimal.Decimal
	RequiresSpecialHandling bool
	FuelSurchargePct        decimal.Decimal
	UrgencySurchargePct     decimal.Decimal
	FragilitySurchargePct   decimal.Decimal
	SeasonalAdjustmentPct   decimal.Decimal
	Adjustment              decimal.Decimal
	LoyaltyDiscountPct      decimal.Decimal
}

// LineInput is one freight line to price. ActualWeight is the line's total weight.
type LineInput struct {
	Quantity     int
	ActualWeight decimal.Decimal
	Dimensions   *Dimensions
	Options      Options
}

// LineBreakdown is the itemized price of one line. Money fields are rounded
// to two places; Total is rounded from the unrounded components.
type LineBreakdown struct {
	Basis                  rate.ChargeBasis `json:"basis"`
	RateValue              decimal.Decimal  `json:"rate_value"`
	Quantity               int              `json:"quantity"`
	ActualWeight           decimal.Decimal  `json:"actual_weight"`
	ChargedWeight          decimal.Decimal  `json:"charged_weight"`
	BaseAmount             decimal.Decimal  `json:"base_amount"`
	MinimumApplied         bool             `json:"minimum_applied"`
	FreightAmount          decimal.Decimal  `json:"freight_amount"`
	LoadingCharge          decimal.Decimal  `json:"loading_charge"`
	UnloadingCharge        decimal.Decimal  `json:"unloading_charge"`
	FuelSurcharge          decimal.Decimal  `json:"fuel_surcharge"`
	UrgencySurcharge       decimal.Decimal  `json:"urgency_surcharge"`
	FragilitySurcharge     decimal.Decimal  `json:"fragility_surcharge"`
	SurchargeAmount        decimal.Decimal  `json:"surcharge_amount"`
	SeasonalAdjustment     decimal.Decimal  `json:"seasonal_adjustment"`
	Adjustment             decimal.Decimal  `json:"adjustment"`
	AdjustmentAmount       decimal.Decimal  `json:"adjustment_amount"`
	Subtotal               decimal.Decimal  `json:"subtotal"`
	BulkDiscountPercentage decimal.Decimal  `json:"bulk_discount_percentage"`
	BulkDiscount           decimal.Decimal  `json:"bulk_discount"`
	LoyaltyDiscount        decimal.Decimal  `json:"loyalty_discount"`
	DiscountAmount         decimal.Decimal  `json:"discount_amount"`
	TaxableAmount          decimal.Decimal  `json:"taxable_amount"`
	TaxAmount              decimal.Decimal  `json:"tax_amount"`
	Total                  decimal.Decimal  `json:"total"`
}

// BookingTotals summarizes all lines of a booking
type BookingTotals struct {
	LineCount       int             `json:"line_count"`
	FreightAmount   decimal.Decimal `json:"freight_amount"`
	LoadingCharges  decimal.Decimal `json:"loading_charges"`
	SurchargeAmount decimal.Decimal `json:"surcharge_amount"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
}

// Calculator prices lines under one policy. It is stateless and safe for
// concurrent use.
type Calculator struct {
	policy Policy
}

// NewCalculator validates the policy and creates a calculator
func NewCalculator(policy Policy) (*Calculator, error) {
	tiers := make([]BulkTier, len(policy.BulkTiers))
	copy(tiers, policy.BulkTiers)
	policy.BulkTiers = tiers
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{policy: policy}, nil
}

// Policy returns a copy of the calculator's policy
func (c *Calculator) Policy() Policy {
	p := c.policy
	p.BulkTiers = append([]BulkTier(nil), c.policy.BulkTiers...)
	return p
}

// ChargedWeight returns max(actual, volumetric); volumetric weight is
// L x W x H / divisor per unit times quantity, rounded up to whole grams
func (c *Calculator) ChargedWeight(quantity int, actual decimal.Decimal, dims *Dimensions) decimal.Decimal {
	if dims == nil {
		return actual
	}
	volumetric := dims.LengthCm.Mul(dims.WidthCm).Mul(dims.HeightCm).
		Div(c.policy.VolumetricDivisor).
		Mul(decimal.NewFromInt(int64(quantity))).
		RoundCeil(shared.WeightColumn.Scale)
	return decimal.Max(actual, volumetric)
}

// BulkDiscountPercentage returns the tier percentage for a quantity
func (c *Calculator) BulkDiscountPercentage(quantity int) decimal.Decimal {
	for _, tier := range c.policy.BulkTiers {
		if quantity >= tier.MinQuantity {
			return tier.Percentage
		}
	}
	return decimal.Zero
}

// PriceLine computes the breakdown in a fixed order: base, minimum floor,
// loading and unloading, surcharges, adjustments, discounts, tax.
func (c *Calculator) PriceLine(r rate.Rate, in LineInput) (LineBreakdown, error) {
	if err := validateLine(r, in); err != nil {
		return LineBreakdown{}, err
	}
	qty := decimal.NewFromInt(int64(in.Quantity))
	opts := in.Options

	charged := c.ChargedWeight(in.Quantity, in.ActualWeight, in.Dimensions)
	if err := shared.WeightColumn.Check("charged weight", charged); err != nil {
		return LineBreakdown{}, err
	}
	base, err := r.BaseAmount(in.Quantity, charged)
	if err != nil {
		return LineBreakdown{}, err
	}

	freight := base
	minimumApplied := false
	if freight.LessThan(r.MinimumCharge) {
		freight = r.MinimumCharge
		minimumApplied = true
	}

	loading := opts.LoadingRatePerUnit.Mul(qty)
	unloading := opts.UnloadingRatePerUnit.Mul(qty)
	if opts.RequiresSpecialHandling {
		loading = loading.Mul(c.policy.SpecialHandlingMultiplier)
		unloading = unloading.Mul(c.policy.SpecialHandlingMultiplier)
	}

	// Surcharges and the seasonal adjustment are percentages of the floored base.
	fuel := percentOf(freight, opts.FuelSurchargePct)
	urgency := percentOf(freight, opts.UrgencySurchargePct)
	fragility := percentOf(freight, opts.FragilitySurchargePct)
	surcharges := fuel.Add(urgency).Add(fragility)
	seasonal := percentOf(freight, opts.SeasonalAdjustmentPct)
	adjustments := seasonal.Add(opts.Adjustment)

	subtotal := freight.Add(loading).Add(unloading).Add(surcharges).Add(adjustments)

	bulkPct := c.BulkDiscountPercentage(in.Quantity)
	bulk, loyalty := decimal.Zero, decimal.Zero
	if subtotal.IsPositive() {
		bulk = percentOf(subtotal, bulkPct)
		loyalty = percentOf(subtotal, opts.LoyaltyDiscountPct)
	}
	discount := bulk.Add(loyalty)
	if discount.GreaterThan(subtotal) {
		discount = decimal.Max(subtotal, decimal.Zero)
	}
	taxable := decimal.Max(subtotal.Sub(discount), decimal.Zero)

	tax := percentOf(taxable, c.policy.TaxPercentage)
	total := taxable.Add(tax)

	return LineBreakdown{
		Basis:                  r.Basis,
		RateValue:              r.RateValue(),
		Quantity:               in.Quantity,
		ActualWeight:           in.ActualWeight,
		ChargedWeight:          charged,
		BaseAmount:             round(base),
		MinimumApplied:         minimumApplied,
		FreightAmount:          round(freight),
		LoadingCharge:          round(loading),
		UnloadingCharge:        round(unloading),
		FuelSurcharge:          round(fuel),
		UrgencySurcharge:       round(urgency),
		FragilitySurcharge:     round(fragility),
		SurchargeAmount:        round(surcharges),
		SeasonalAdjustment:     round(seasonal),
		Adjustment:             round(opts.Adjustment),
		AdjustmentAmount:       round(adjustments),
		Subtotal:               round(subtotal),
		BulkDiscountPercentage: bulkPct,
		BulkDiscount:           round(bulk),
		LoyaltyDiscount:        round(loyalty),
		DiscountAmount:         round(discount),
		TaxableAmount:          round(taxable),
		TaxAmount:              round(tax),
		Total:                  round(total),
	}, nil
}

// Aggregate sums the line totals into the booking total
func (c *Calculator) Aggregate(lines []LineBreakdown) BookingTotals {
	return Aggregate(lines)
}

// Aggregate sums rounded line totals and rounds the result half-up to two places
func Aggregate(lines []LineBreakdown) BookingTotals {
	totals := BookingTotals{LineCount: len(lines)}
	for _, l := range lines {
		totals.FreightAmount = totals.FreightAmount.Add(l.FreightAmount)
		totals.LoadingCharges = totals.LoadingCharges.Add(l.LoadingCharge).Add(l.UnloadingCharge)
		totals.SurchargeAmount = totals.SurchargeAmount.Add(l.SurchargeAmount)
		totals.DiscountAmount = totals.DiscountAmount.Add(l.DiscountAmount)
		totals.TaxAmount = totals.TaxAmount.Add(l.TaxAmount)
		totals.TotalAmount = totals.TotalAmount.Add(l.Total)
	}
	totals.TotalAmount = round(totals.TotalAmount)
	return totals
}

// VerifyDeclaredTotal rejects a caller-supplied total that disagrees with
// the computed one by a cent or more. A nil declared total is accepted.
func VerifyDeclaredTotal(declared *decimal.Decimal, totals BookingTotals) error {
	if declared == nil {
		return nil
	}
	if declared.Sub(totals.TotalAmount).Abs().GreaterThanOrEqual(Tolerance) {
		return shared.NewDomainError(shared.CodeTotalMismatch,
			fmt.Sprintf("declared total %s does not match computed total %s",
				declared.StringFixed(MoneyPlaces), totals.TotalAmount.StringFixed(MoneyPlaces)))
	}
	return nil
}

func validateLine(r rate.Rate, in LineInput) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if in.Quantity <= 0 {
		return shared.NewValidationError("quantity must be positive")
	}
	if !in.ActualWeight.IsPositive() {
		return shared.NewValidationError("weight must be positive")
	}
	if err := shared.WeightColumn.Check("weight", in.ActualWeight); err != nil {
		return err
	}
	if d := in.Dimensions; d != nil {
		if !d.LengthCm.IsPositive() || !d.WidthCm.IsPositive() || !d.HeightCm.IsPositive() {
			return shared.NewValidationError("dimensions must be positive")
		}
	}
	o := in.Options
	for name, v := range map[string]decimal.Decimal{
		"loading rate":   o.LoadingRatePerUnit,
		"unloading rate": o.UnloadingRatePerUnit,
	} {
		if v.IsNegative() {
			return shared.NewValidationError(name + " cannot be negative")
		}
	}
	for name, v := range map[string]decimal.Decimal{
		"fuel surcharge":      o.FuelSurchargePct,
		"urgency surcharge":   o.UrgencySurchargePct,
		"fragility surcharge": o.FragilitySurchargePct,
		"loyalty discount":    o.LoyaltyDiscountPct,
	} {
		if !isPercentage(v) {
			return shared.NewValidationError(name + " must be between 0 and 100 percent")
		}
	}
	if o.SeasonalAdjustmentPct.Abs().GreaterThan(hundred) {
		return shared.NewValidationError("seasonal adjustment must be between -100 and 100 percent")
	}
	return nil
}

func round(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}
