package tenancy

import (
	"github.com/google/uuid"
)

// Principal is the authenticated caller. It is passed explicitly into every
// authorization decision.
type Principal struct {
	UserID   uuid.UUID
	OrgID    uuid.UUID
	BranchID uuid.UUID
	Role     Role
}

// IsZero reports whether no caller identity is present
func (p Principal) IsZero() bool {
	return p.UserID == uuid.Nil && p.OrgID == uuid.Nil && p.Role == ""
}

// Valid reports whether the principal can be evaluated at all. Only
// super_admin may lack an organization; everyone else needs org and branch.
func (p Principal) Valid() bool {
	if !p.Role.IsValid() || p.UserID == uuid.Nil {
		return false
	}
	if p.Role == RoleSuperAdmin {
		return true
	}
	return p.OrgID != uuid.Nil && p.BranchID != uuid.Nil
}

// OrgFor returns the organization a request acts on: the explicit one when
// set, otherwise the caller's own. The guard still decides whether the caller
// may act there.
func (p Principal) OrgFor(explicit *uuid.UUID) uuid.UUID {
	if explicit != nil && *explicit != uuid.Nil {
		return *explicit
	}
	return p.OrgID
}
