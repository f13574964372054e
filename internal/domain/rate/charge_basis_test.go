package rate

import (
	"testing"

	"github.com/freightcore/backend/internal/domain/shared"
	"github.com/freightcore/backend/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRate_BaseAmount(t *testing.T) {
	tests := []struct {
		name     string
		rate     Rate
		qty      int
		weight   string
		expected string
	}{
		{"weight basis uses charged weight", Rate{Basis: ChargeBasisWeight, PerKg: dec("50")}, 3, "26", "1300"},
		{"unit basis uses quantity", Rate{Basis: ChargeBasisUnit, PerUnit: dec("40")}, 3, "26", "120"},
		{"fixed basis ignores quantity and weight", Rate{Basis: ChargeBasisFixed, FixedAmount: dec("750")}, 9, "400", "750"},
		{"whichever higher picks weight", Rate{Basis: ChargeBasisWhicheverHigher, PerKg: dec("10"), PerUnit: dec("5")}, 2, "30", "300"},
		{"whichever higher picks unit", Rate{Basis: ChargeBasisWhicheverHigher, PerKg: dec("1"), PerUnit: dec("100")}, 4, "30", "400"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.rate.BaseAmount(tt.qty, dec(tt.weight))
			require.NoError(t, err)
			assert.True(t, dec(tt.expected).Equal(got), "expected %s, got %s", tt.expected, got)
		})
	}

	t.Run("unknown basis is a validation error", func(t *testing.T) {
		_, err := Rate{Basis: "volume"}.BaseAmount(1, dec("1"))
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestRate_Validate(t *testing.T) {
	assert.NoError(t, Rate{Basis: ChargeBasisWeight, PerKg: dec("1")}.Validate())
	assert.Error(t, Rate{Basis: "bogus"}.Validate())

	err := Rate{Basis: ChargeBasisUnit, PerUnit: dec("-1")}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate_per_unit cannot be negative")

	err = Rate{Basis: ChargeBasisWeight, PerKg: dec("12.34567")}.Validate()
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	err = Rate{Basis: ChargeBasisFixed, FixedAmount: dec("10.005")}.Validate()
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	err = Rate{Basis: ChargeBasisUnit, PerUnit: dec("100000000000000")}.Validate()
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	assert.NoError(t, Rate{Basis: ChargeBasisWeight, PerKg: dec("99999999999999.9999")}.Validate())
}

func TestRate_RateValue(t *testing.T) {
	r := Rate{PerKg: dec("1"), PerUnit: dec("2"), FixedAmount: dec("3")}

	r.Basis = ChargeBasisWeight
	assert.True(t, r.RateValue().Equal(dec("1")))
	r.Basis = ChargeBasisUnit
	assert.True(t, r.RateValue().Equal(dec("2")))
	r.Basis = ChargeBasisFixed
	assert.True(t, r.RateValue().Equal(dec("3")))
	r.Basis = ChargeBasisWhicheverHigher
	assert.True(t, r.RateValue().Equal(dec("1")))
}

type perPalletRule struct{ strategy.BaseStrategy }

func (perPalletRule) Basis() ChargeBasis { return "pallet" }
func (perPalletRule) BaseAmount(r Rate, qty int, _ decimal.Decimal) decimal.Decimal {
	return r.PerUnit.Mul(decimal.NewFromInt(int64((qty + 9) / 10)))
}

func TestChargeRuleRegistry(t *testing.T) {
	t.Run("built-in bases are registered", func(t *testing.T) {
		reg := NewChargeRuleRegistry()
		assert.Equal(t, []ChargeBasis{
			ChargeBasisFixed, ChargeBasisUnit, ChargeBasisWeight, ChargeBasisWhicheverHigher,
		}, reg.Bases())

		rule, err := reg.Get(ChargeBasisWeight)
		require.NoError(t, err)
		assert.Equal(t, strategy.StrategyTypeChargeBasis, rule.Type())
	})

	t.Run("new basis can be registered without touching resolution", func(t *testing.T) {
		reg := NewChargeRuleRegistry()
		rule := perPalletRule{strategy.NewBaseStrategy("pallet", strategy.StrategyTypeChargeBasis, "per started pallet of ten")}
		require.NoError(t, reg.Register(rule))

		got, err := reg.Get("pallet")
		require.NoError(t, err)
		amount := got.BaseAmount(Rate{PerUnit: dec("100")}, 25, decimal.Zero)
		assert.True(t, amount.Equal(dec("300")))
	})

	t.Run("duplicate registration fails", func(t *testing.T) {
		reg := NewChargeRuleRegistry()
		err := reg.Register(weightRule{})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})
}
