package persistence

import (
	"errors"
	"testing"

	"github.com/freightcore/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string returns DESC", "", "DESC"},
		{"ASC uppercase returns ASC", "ASC", "ASC"},
		{"asc lowercase returns ASC", "asc", "ASC"},
		{"desc lowercase returns DESC", "desc", "DESC"},
		{"invalid value returns DESC", "INVALID", "DESC"},
		{"sql injection attempt returns DESC", "ASC; DROP TABLE bookings;--", "DESC"},
		{"whitespace around ASC returns ASC", "  asc  ", "ASC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortOrder(tt.input))
		})
	}
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string returns default", "", "created_at"},
		{"valid field returns field", "lr_number", "lr_number"},
		{"invalid field returns default", "sender_id", "created_at"},
		{"sql injection attempt returns default", "id; DROP TABLE bookings;--", "created_at"},
		{"case sensitive", "LR_NUMBER", "created_at"},
		{"whitespace around valid field returns field", "  status  ", "status"},
		{"subquery returns default", "id, (SELECT password_hash FROM users)", "created_at"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortField(tt.input, BookingSortFields, "created_at"))
		})
	}
}

func TestSortFieldsWhitelists(t *testing.T) {
	whitelists := map[string]map[string]bool{
		"BookingSortFields":    BookingSortFields,
		"ContractSortFields":   ContractSortFields,
		"BranchSortFields":     BranchSortFields,
		"MasterDataSortFields": MasterDataSortFields,
		"UserSortFields":       UserSortFields,
	}

	for name, whitelist := range whitelists {
		t.Run(name+" contains common fields", func(t *testing.T) {
			for field := range CommonSortFields {
				assert.True(t, whitelist[field], "%s should contain '%s'", name, field)
			}
		})
	}
}

func TestOrderClause(t *testing.T) {
	f := shared.Filter{OrderBy: "pickup_date", OrderDir: "asc"}
	assert.Equal(t, "pickup_date ASC, id", orderClause(f, BookingSortFields, "created_at"))

	f = shared.Filter{OrderBy: "password_hash"}
	assert.Equal(t, "created_at DESC, id", orderClause(f, UserSortFields, "created_at"))

	f = shared.Filter{OrderBy: "id", OrderDir: "desc"}
	assert.Equal(t, "id DESC", orderClause(f, CommonSortFields, "created_at"))
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%del-26%", likePattern("  DEL-26 "))
	assert.Equal(t, `%50\%\_off%`, likePattern("50%_off"))
}

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))
	assert.ErrorIs(t, translateError(gorm.ErrRecordNotFound), shared.ErrNotFound)
	assert.ErrorIs(t, translateError(gorm.ErrDuplicatedKey), shared.ErrAlreadyExists)

	other := errors.New("connection reset")
	assert.Equal(t, other, translateError(other))
}
