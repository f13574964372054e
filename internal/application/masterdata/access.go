// Package masterdata manages the reference records bookings point at:
// branches, customers and articles.
package masterdata

import (
	"errors"
	"fmt"

	"github.com/freightcore/backend/internal/domain/shared"
	"github.com/freightcore/backend/internal/domain/tenancy"
	"github.com/google/uuid"
)

// access applies the master data rules: admins write, every member of the
// organization reads
type access struct {
	guard *tenancy.Guard
}

func (a access) write(p tenancy.Principal, explicit *uuid.UUID, kind tenancy.ResourceKind, branchID *uuid.UUID) (uuid.UUID, error) {
	if err := a.guard.RequireRole(p, tenancy.RoleAdmin); err != nil {
		return uuid.Nil, err
	}
	orgID := p.OrgFor(explicit)
	if orgID == uuid.Nil {
		return uuid.Nil, shared.NewValidationError("org_id is required")
	}
	scope := tenancy.OrgScope(kind, orgID)
	if branchID != nil {
		scope = tenancy.BranchScope(kind, orgID, *branchID)
	}
	if err := a.guard.Check(p, tenancy.ActionCreate, scope); err != nil {
		return uuid.Nil, err
	}
	return orgID, nil
}

func (a access) read(p tenancy.Principal, explicit *uuid.UUID, kind tenancy.ResourceKind) (uuid.UUID, error) {
	if !p.Valid() {
		return uuid.Nil, shared.ErrUnauthorized
	}
	orgID := p.OrgFor(explicit)
	if orgID == uuid.Nil {
		return uuid.Nil, shared.NewValidationError("org_id is required")
	}
	// the caller's own branch in the target org: any member passes
	if err := a.guard.Check(p, tenancy.ActionRead, tenancy.BranchScope(kind, orgID, p.BranchID)); err != nil {
		return uuid.Nil, err
	}
	return orgID, nil
}

func referenceError(err error, kind string, id uuid.UUID) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewValidationError(fmt.Sprintf("%s %s does not exist in this organization", kind, id))
	}
	return err
}

func listFilter(f ListFilter) shared.Filter {
	return shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Search:   f.Search,
	}.Normalize()
}
