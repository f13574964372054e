package rate

import (
	"fmt"
	"sort"
	"sync"

	"github.com/freightcore/backend/internal/domain/shared"
	"github.com/freightcore/backend/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// ChargeBasis selects how a line's base amount is computed
type ChargeBasis string

const (
	ChargeBasisWeight          ChargeBasis = "weight"
	ChargeBasisUnit            ChargeBasis = "unit"
	ChargeBasisFixed           ChargeBasis = "fixed"
	ChargeBasisWhicheverHigher ChargeBasis = "whichever_higher"
)

// String returns the string representation of the charge basis
func (b ChargeBasis) String() string {
	return string(b)
}

// IsValid reports whether a rule is registered for the basis in the default registry
func (b ChargeBasis) IsValid() bool {
	_, err := DefaultChargeRules().Get(b)
	return err == nil
}

// Rate is a resolved price source: one charge basis plus the figures it needs
type Rate struct {
	Basis         ChargeBasis     `json:"charge_basis"`
	PerKg         decimal.Decimal `json:"rate_per_kg"`
	PerUnit       decimal.Decimal `json:"rate_per_unit"`
	FixedAmount   decimal.Decimal `json:"fixed_amount"`
	MinimumCharge decimal.Decimal `json:"minimum_charge"`
}

// Validate checks that the basis is known and no figure is negative
func (r Rate) Validate() error {
	if !r.Basis.IsValid() {
		return shared.NewValidationError(fmt.Sprintf("unknown charge basis %q", r.Basis))
	}
	for name, v := range map[string]decimal.Decimal{
		"rate_per_kg":    r.PerKg,
		"rate_per_unit":  r.PerUnit,
		"fixed_amount":   r.FixedAmount,
		"minimum_charge": r.MinimumCharge,
	} {
		if v.IsNegative() {
			return shared.NewValidationError(name + " cannot be negative")
		}
	}
	for name, v := range map[string]decimal.Decimal{
		"rate_per_kg":   r.PerKg,
		"rate_per_unit": r.PerUnit,
	} {
		if err := shared.RateColumn.Check(name, v); err != nil {
			return err
		}
	}
	for name, v := range map[string]decimal.Decimal{
		"fixed_amount":   r.FixedAmount,
		"minimum_charge": r.MinimumCharge,
	} {
		if err := shared.MoneyColumn.Check(name, v); err != nil {
			return err
		}
	}
	return nil
}

// RateValue is the headline figure shown on a booking line for this basis
func (r Rate) RateValue() decimal.Decimal {
	switch r.Basis {
	case ChargeBasisUnit:
		return r.PerUnit
	case ChargeBasisFixed:
		return r.FixedAmount
	default:
		return r.PerKg
	}
}

// BaseAmount computes the pre-minimum base amount using the default rules
func (r Rate) BaseAmount(quantity int, chargedWeight decimal.Decimal) (decimal.Decimal, error) {
	rule, err := DefaultChargeRules().Get(r.Basis)
	if err != nil {
		return decimal.Zero, err
	}
	return rule.BaseAmount(r, quantity, chargedWeight), nil
}

// ChargeRule computes the base amount for one charge basis. Adding a basis
// means registering a rule; resolution never inspects the basis.
type ChargeRule interface {
	strategy.Strategy
	Basis() ChargeBasis
	BaseAmount(r Rate, quantity int, chargedWeight decimal.Decimal) decimal.Decimal
}

type weightRule struct{ strategy.BaseStrategy }

func (weightRule) Basis() ChargeBasis { return ChargeBasisWeight }
func (weightRule) BaseAmount(r Rate, _ int, w decimal.Decimal) decimal.Decimal {
	return r.PerKg.Mul(w)
}

type unitRule struct{ strategy.BaseStrategy }

func (unitRule) Basis() ChargeBasis { return ChargeBasisUnit }
func (unitRule) BaseAmount(r Rate, qty int, _ decimal.Decimal) decimal.Decimal {
	return r.PerUnit.Mul(decimal.NewFromInt(int64(qty)))
}

type fixedRule struct{ strategy.BaseStrategy }

func (fixedRule) Basis() ChargeBasis { return ChargeBasisFixed }
func (fixedRule) BaseAmount(r Rate, _ int, _ decimal.Decimal) decimal.Decimal {
	return r.FixedAmount
}

type whicheverHigherRule struct{ strategy.BaseStrategy }

func (whicheverHigherRule) Basis() ChargeBasis { return ChargeBasisWhicheverHigher }
func (whicheverHigherRule) BaseAmount(r Rate, qty int, w decimal.Decimal) decimal.Decimal {
	return decimal.Max(
		weightRule{}.BaseAmount(r, qty, w),
		unitRule{}.BaseAmount(r, qty, w),
	)
}

// ChargeRuleRegistry maps charge bases to their rules
type ChargeRuleRegistry struct {
	mu    sync.RWMutex
	rules map[ChargeBasis]ChargeRule
}

// NewChargeRuleRegistry creates a registry preloaded with the built-in bases
func NewChargeRuleRegistry() *ChargeRuleRegistry {
	reg := &ChargeRuleRegistry{rules: make(map[ChargeBasis]ChargeRule)}
	for _, rule := range []ChargeRule{
		weightRule{strategy.NewBaseStrategy("weight", strategy.StrategyTypeChargeBasis, "rate per kg times charged weight")},
		unitRule{strategy.NewBaseStrategy("unit", strategy.StrategyTypeChargeBasis, "rate per unit times quantity")},
		fixedRule{strategy.NewBaseStrategy("fixed", strategy.StrategyTypeChargeBasis, "flat amount per line")},
		whicheverHigherRule{strategy.NewBaseStrategy("whichever_higher", strategy.StrategyTypeChargeBasis, "greater of weight and unit amounts")},
	} {
		reg.rules[rule.Basis()] = rule
	}
	return reg
}

// Register adds a rule; a basis can only be registered once
func (r *ChargeRuleRegistry) Register(rule ChargeRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rules[rule.Basis()]; exists {
		return fmt.Errorf("%w: charge rule '%s' already registered", shared.ErrAlreadyExists, rule.Basis())
	}
	r.rules[rule.Basis()] = rule
	return nil
}

// Get returns the rule for a basis
func (r *ChargeRuleRegistry) Get(basis ChargeBasis) (ChargeRule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rule, ok := r.rules[basis]
	if !ok {
		return nil, shared.NewValidationError(fmt.Sprintf("unknown charge basis %q", basis))
	}
	return rule, nil
}

// Bases lists the registered bases in name order
func (r *ChargeRuleRegistry) Bases() []ChargeBasis {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ChargeBasis, 0, len(r.rules))
	for b := range r.rules {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

var (
	defaultRulesOnce sync.Once
	defaultRules     *ChargeRuleRegistry
)

// DefaultChargeRules returns the process-wide registry
func DefaultChargeRules() *ChargeRuleRegistry {
	defaultRulesOnce.Do(func() {
		defaultRules = NewChargeRuleRegistry()
	})
	return defaultRules
}
