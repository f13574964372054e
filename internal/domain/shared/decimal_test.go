package shared

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumn_Check(t *testing.T) {
	tests := []struct {
		name    string
		column  Column
		value   string
		wantErr string
	}{
		{"weight in grams fits", WeightColumn, "12.345", ""},
		{"weight largest value fits", WeightColumn, "999999999.999", ""},
		{"weight finer than a gram", WeightColumn, "0.0004", "weight cannot have more than 3 decimal places"},
		{"weight at the limit", WeightColumn, "1000000000", "weight must be less than 1000000000"},
		{"trailing zeros are not extra places", WeightColumn, "1.5000", ""},
		{"rate with four places fits", RateColumn, "0.0001", ""},
		{"rate with five places", RateColumn, "0.00001", "weight cannot have more than 4 decimal places"},
		{"money above the limit", MoneyColumn, "10000000000000000", "weight must be less than 10000000000000000"},
		{"negative money checks magnitude", MoneyColumn, "-10000000000000000", "weight must be less than 10000000000000000"},
		{"percent with two places fits", PercentColumn, "12.50", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.column.Check("weight", decimal.RequireFromString(tt.value))
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}
