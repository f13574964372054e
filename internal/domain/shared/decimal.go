package shared

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Column is the precision and scale of a stored DECIMAL column
type Column struct {
	Precision int32
	Scale     int32
}

// Stored column shapes
var (
	WeightColumn  = Column{Precision: 12, Scale: 3}
	RateColumn    = Column{Precision: 18, Scale: 4}
	MoneyColumn   = Column{Precision: 18, Scale: 2}
	PercentColumn = Column{Precision: 5, Scale: 2}
)

// Limit is the smallest magnitude the column cannot hold
func (c Column) Limit() decimal.Decimal {
	return decimal.New(1, c.Precision-c.Scale)
}

// Check returns a VALIDATION_ERROR naming field when d carries more decimal
// places than the column's scale or does not fit below its limit.
func (c Column) Check(field string, d decimal.Decimal) error {
	if !d.Equal(d.Truncate(c.Scale)) {
		return NewValidationError(fmt.Sprintf("%s cannot have more than %d decimal places", field, c.Scale))
	}
	if d.Abs().GreaterThanOrEqual(c.Limit()) {
		return NewValidationError(fmt.Sprintf("%s must be less than %s", field, c.Limit().String()))
	}
	return nil
}
