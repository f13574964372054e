// Package masterdata holds the tenant hierarchy and the reference records
// bookings point at: organizations, branches, customers and articles.
package masterdata

import (
	"regexp"
	"strings"

	"github.com/freightcore/backend/internal/domain/shared"
)

var codePattern = regexp.MustCompile(`^[A-Z0-9_-]+$`)

// Organization is the tenant root
type Organization struct {
	shared.BaseAggregateRoot
	Name     string
	Code     string
	IsActive bool
}

// NewOrganization creates an active organization
func NewOrganization(name, code string) (*Organization, error) {
	name, code, err := normalizeNameCode(name, code)
	if err != nil {
		return nil, err
	}
	return &Organization{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Code:              code,
		IsActive:          true,
	}, nil
}

func normalizeNameCode(name, code string) (string, string, error) {
	name = strings.TrimSpace(name)
	code = strings.ToUpper(strings.TrimSpace(code))
	if name == "" {
		return "", "", shared.NewValidationError("name cannot be empty")
	}
	if len(name) > 200 {
		return "", "", shared.NewValidationError("name cannot exceed 200 characters")
	}
	if code == "" || len(code) > 20 {
		return "", "", shared.NewValidationError("code must be 1 to 20 characters")
	}
	if !codePattern.MatchString(code) {
		return "", "", shared.NewValidationError("code can only contain letters, numbers, underscores, and hyphens")
	}
	return name, code, nil
}
