package masterdata

import (
	"github.com/freightcore/backend/internal/domain/shared"
	"github.com/freightcore/backend/internal/domain/tenancy"
	"github.com/google/uuid"
)

// Branch is an operating location of an organization
type Branch struct {
	shared.OrgAggregateRoot
	Name     string
	Code     string
	City     string
	IsActive bool
}

// NewBranch creates an active branch
func NewBranch(orgID uuid.UUID, name, code, city string) (*Branch, error) {
	if orgID == uuid.Nil {
		return nil, shared.NewValidationError("org_id is required")
	}
	name, code, err := normalizeNameCode(name, code)
	if err != nil {
		return nil, err
	}
	return &Branch{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		Name:             name,
		Code:             code,
		City:             city,
		IsActive:         true,
	}, nil
}

// Scope returns the tenancy footprint of the branch; its own id is its branch
func (b *Branch) Scope() tenancy.ResourceScope {
	return tenancy.BranchScope(tenancy.ResourceBranch, b.OrgID, b.ID)
}
