package tariff

import (
	"sync"
	"testing"

	"github.com/freightcore/backend/internal/domain/rate"
	"github.com/freightcore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newCalc(t *testing.T, mutate func(*Policy)) *Calculator {
	t.Helper()
	p := DefaultPolicy()
	if mutate != nil {
		mutate(&p)
	}
	c, err := NewCalculator(p)
	require.NoError(t, err)
	return c
}

func noTax(p *Policy) { p.TaxPercentage = decimal.Zero }

func assertDec(t *testing.T, expected string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	if len(msgAndArgs) == 0 {
		msgAndArgs = []interface{}{"expected %s, got %s", expected, got.String()}
	}
	assert.True(t, dec(expected).Equal(got), msgAndArgs...)
}

func TestCalculator_PriceLine_BaseAndMinimum(t *testing.T) {
	c := newCalc(t, noTax)

	t.Run("26kg at 50 per kg", func(t *testing.T) {
		line, err := c.PriceLine(rate.Rate{Basis: rate.ChargeBasisWeight, PerKg: dec("50")},
			LineInput{Quantity: 1, ActualWeight: dec("26")})
		require.NoError(t, err)
		assertDec(t, "1300", line.BaseAmount)
		assertDec(t, "1300", line.FreightAmount)
		assertDec(t, "1300", line.Total)
		assert.False(t, line.MinimumApplied)
	})

	t.Run("minimum charge floors the base", func(t *testing.T) {
		line, err := c.PriceLine(rate.Rate{Basis: rate.ChargeBasisWeight, PerKg: dec("5"), MinimumCharge: dec("200")},
			LineInput{Quantity: 1, ActualWeight: dec("10")})
		require.NoError(t, err)
		assertDec(t, "50", line.BaseAmount)
		assertDec(t, "200", line.FreightAmount)
		assert.True(t, line.MinimumApplied)
	})

	t.Run("volumetric weight raises charged weight", func(t *testing.T) {
		line, err := c.PriceLine(rate.Rate{Basis: rate.ChargeBasisWeight, PerKg: dec("10")},
			LineInput{
				Quantity:     2,
				ActualWeight: dec("10"),
				Dimensions:   &Dimensions{LengthCm: dec("50"), WidthCm: dec("50"), HeightCm: dec("40")},
			})
		require.NoError(t, err)
		// 50*50*40/5000 = 20 per unit, 40 for two
		assertDec(t, "40", line.ChargedWeight)
		assertDec(t, "400", line.BaseAmount)
	})

	t.Run("volumetric weight rounds up to the gram", func(t *testing.T) {
		// 7*7*7/5000 = 0.0686
		got := c.ChargedWeight(1, dec("0.01"), &Dimensions{LengthCm: dec("7"), WidthCm: dec("7"), HeightCm: dec("7")})
		assertDec(t, "0.069", got)
		got = c.ChargedWeight(3, dec("0.1"), &Dimensions{LengthCm: dec("10"), WidthCm: dec("10"), HeightCm: dec("11")})
		assertDec(t, "0.66", got)
	})

	t.Run("actual weight kept when heavier", func(t *testing.T) {
		got := c.ChargedWeight(1, dec("30"), &Dimensions{LengthCm: dec("10"), WidthCm: dec("10"), HeightCm: dec("10")})
		assertDec(t, "30", got)
	})
}

func TestCalculator_BulkDiscount(t *testing.T) {
	c := newCalc(t, noTax)
	fixed := rate.Rate{Basis: rate.ChargeBasisFixed, FixedAmount: dec("1000")}

	tests := []struct {
		qty      int
		discount string
		pct      string
	}{
		{55, "100", "10"},
		{50, "100", "10"},
		{12, "50", "5"},
		{10, "50", "5"},
		{5, "0", "0"},
	}
	for _, tt := range tests {
		line, err := c.PriceLine(fixed, LineInput{Quantity: tt.qty, ActualWeight: dec("1")})
		require.NoError(t, err)
		assertDec(t, "1000", line.Subtotal)
		assertDec(t, tt.discount, line.BulkDiscount, "qty %d", tt.qty)
		assertDec(t, tt.pct, line.BulkDiscountPercentage, "qty %d", tt.qty)
	}
}

func TestCalculator_PriceLine_FullOrder(t *testing.T) {
	c := newCalc(t, nil)

	line, err := c.PriceLine(rate.Rate{Basis: rate.ChargeBasisWeight, PerKg: dec("10"), MinimumCharge: dec("100")},
		LineInput{
			Quantity:     12,
			ActualWeight: dec("100"),
			Options: Options{
				LoadingRatePerUnit:      dec("10"),
				UnloadingRatePerUnit:    dec("5"),
				RequiresSpecialHandling: true,
				FuelSurchargePct:        dec("10"),
				UrgencySurchargePct:     dec("5"),
				FragilitySurchargePct:   dec("2"),
				SeasonalAdjustmentPct:   dec("-10"),
				Adjustment:              dec("30"),
				LoyaltyDiscountPct:      dec("3"),
			},
		})
	require.NoError(t, err)

	assertDec(t, "1000", line.FreightAmount)
	assertDec(t, "180", line.LoadingCharge)  // 10*12*1.5
	assertDec(t, "90", line.UnloadingCharge) // 5*12*1.5
	assertDec(t, "100", line.FuelSurcharge)
	assertDec(t, "50", line.UrgencySurcharge)
	assertDec(t, "20", line.FragilitySurcharge)
	assertDec(t, "170", line.SurchargeAmount)
	assertDec(t, "-100", line.SeasonalAdjustment)
	assertDec(t, "-70", line.AdjustmentAmount)
	// 1000 + 180 + 90 + 170 - 70
	assertDec(t, "1370", line.Subtotal)
	assertDec(t, "68.5", line.BulkDiscount)
	assertDec(t, "41.1", line.LoyaltyDiscount)
	assertDec(t, "109.6", line.DiscountAmount)
	assertDec(t, "1260.4", line.TaxableAmount)
	assertDec(t, "63.02", line.TaxAmount)
	assertDec(t, "1323.42", line.Total)
}

func TestCalculator_PriceLine_ClampsAtZero(t *testing.T) {
	c := newCalc(t, nil)
	line, err := c.PriceLine(rate.Rate{Basis: rate.ChargeBasisFixed, FixedAmount: dec("100")},
		LineInput{Quantity: 1, ActualWeight: dec("1"), Options: Options{Adjustment: dec("-250")}})
	require.NoError(t, err)
	assertDec(t, "-150", line.Subtotal)
	assertDec(t, "0", line.DiscountAmount)
	assertDec(t, "0", line.Total)

	line, err = c.PriceLine(rate.Rate{Basis: rate.ChargeBasisFixed, FixedAmount: dec("100")},
		LineInput{Quantity: 60, ActualWeight: dec("1"), Options: Options{LoyaltyDiscountPct: dec("100")}})
	require.NoError(t, err)
	assertDec(t, "100", line.DiscountAmount)
	assertDec(t, "0", line.Total)
}

func TestCalculator_PriceLine_RoundsHalfUp(t *testing.T) {
	c := newCalc(t, noTax)
	line, err := c.PriceLine(rate.Rate{Basis: rate.ChargeBasisWeight, PerKg: dec("0.5")},
		LineInput{Quantity: 1, ActualWeight: dec("0.01")})
	require.NoError(t, err)
	assertDec(t, "0.01", line.Total)
}

func TestCalculator_PriceLine_Validation(t *testing.T) {
	c := newCalc(t, nil)
	r := rate.Rate{Basis: rate.ChargeBasisWeight, PerKg: dec("1")}

	cases := map[string]LineInput{
		"zero quantity":       {Quantity: 0, ActualWeight: dec("1")},
		"negative weight":     {Quantity: 1, ActualWeight: dec("-1")},
		"zero dimension":      {Quantity: 1, ActualWeight: dec("1"), Dimensions: &Dimensions{LengthCm: dec("1"), WidthCm: dec("0"), HeightCm: dec("1")}},
		"negative loading":    {Quantity: 1, ActualWeight: dec("1"), Options: Options{LoadingRatePerUnit: dec("-1")}},
		"fuel above 100":      {Quantity: 1, ActualWeight: dec("1"), Options: Options{FuelSurchargePct: dec("101")}},
		"seasonal below -100": {Quantity: 1, ActualWeight: dec("1"), Options: Options{SeasonalAdjustmentPct: dec("-101")}},
		"weight below gram":   {Quantity: 1, ActualWeight: dec("0.0004")},
		"weight over column":  {Quantity: 1, ActualWeight: dec("10000000000")},
		"volumetric overflow": {Quantity: 1, ActualWeight: dec("1"), Dimensions: &Dimensions{LengthCm: dec("100000"), WidthCm: dec("100000"), HeightCm: dec("1000000")}},
	}
	for name, in := range cases {
		_, err := c.PriceLine(r, in)
		assert.ErrorIs(t, err, shared.ErrInvalidInput, name)
	}

	_, err := c.PriceLine(rate.Rate{Basis: "volume"}, LineInput{Quantity: 1, ActualWeight: dec("1")})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestAggregate(t *testing.T) {
	c := newCalc(t, nil)
	r := rate.Rate{Basis: rate.ChargeBasisWeight, PerKg: dec("33.333")}

	var lines []LineBreakdown
	sum := decimal.Zero
	for _, w := range []string{"1", "2.5", "7.25"} {
		line, err := c.PriceLine(r, LineInput{Quantity: 1, ActualWeight: dec(w)})
		require.NoError(t, err)
		lines = append(lines, line)
		sum = sum.Add(line.Total)
	}

	totals := c.Aggregate(lines)
	assert.Equal(t, 3, totals.LineCount)
	assert.True(t, totals.TotalAmount.Equal(sum))
	assert.True(t, totals.TotalAmount.Equal(totals.TotalAmount.Round(MoneyPlaces)))
}

func TestVerifyDeclaredTotal(t *testing.T) {
	totals := BookingTotals{TotalAmount: dec("1365.00")}

	assert.NoError(t, VerifyDeclaredTotal(nil, totals))

	exact := dec("1365")
	assert.NoError(t, VerifyDeclaredTotal(&exact, totals))

	near := dec("1365.009")
	assert.NoError(t, VerifyDeclaredTotal(&near, totals))

	off := dec("1364.99")
	err := VerifyDeclaredTotal(&off, totals)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrTotalMismatch)
	assert.Contains(t, err.Error(), "1364.99")
}

func TestNewCalculator(t *testing.T) {
	t.Run("sorts tiers by threshold", func(t *testing.T) {
		c := newCalc(t, func(p *Policy) {
			p.BulkTiers = []BulkTier{
				{MinQuantity: 10, Percentage: dec("5")},
				{MinQuantity: 100, Percentage: dec("15")},
				{MinQuantity: 50, Percentage: dec("10")},
			}
		})
		assertDec(t, "15", c.BulkDiscountPercentage(120))
		assertDec(t, "10", c.BulkDiscountPercentage(99))
		assertDec(t, "5", c.BulkDiscountPercentage(10))
		assertDec(t, "0", c.BulkDiscountPercentage(9))
	})

	t.Run("rejects bad policy", func(t *testing.T) {
		p := DefaultPolicy()
		p.VolumetricDivisor = decimal.Zero
		_, err := NewCalculator(p)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)

		p = DefaultPolicy()
		p.SpecialHandlingMultiplier = dec("0.5")
		_, err = NewCalculator(p)
		assert.Error(t, err)
	})

	t.Run("does not share the caller's tier slice", func(t *testing.T) {
		p := DefaultPolicy()
		c, err := NewCalculator(p)
		require.NoError(t, err)
		p.BulkTiers[0].Percentage = dec("99")
		assertDec(t, "10", c.BulkDiscountPercentage(60))
	})
}

func TestCalculator_ConcurrentUse(t *testing.T) {
	c := newCalc(t, nil)
	r := rate.Rate{Basis: rate.ChargeBasisWhicheverHigher, PerKg: dec("12"), PerUnit: dec("40")}

	var wg sync.WaitGroup
	results := make([]decimal.Decimal, 50)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			line, err := c.PriceLine(r, LineInput{Quantity: 11, ActualWeight: dec("37")})
			if err == nil {
				results[i] = line.Total
			}
		}(i)
	}
	wg.Wait()
	for _, got := range results {
		assert.True(t, results[0].Equal(got))
	}
}
