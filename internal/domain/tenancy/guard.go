// Package tenancy decides which rows a caller may see or mutate. Guard is a
// pure decision function; persistence applies the same rules to list queries
// through ListFilter.
package tenancy

import (
	"github.com/freightcore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DenyReason explains a negative decision. It is for logs and tests only;
// callers outside the service see NOT_FOUND.
type DenyReason string

const (
	ReasonNone             DenyReason = ""
	ReasonInvalidPrincipal DenyReason = "invalid_principal"
	ReasonCrossTenant      DenyReason = "cross_tenant"
	ReasonOutsideBranch    DenyReason = "outside_branch"
	ReasonRoleEscalation   DenyReason = "role_escalation"
	ReasonInsufficientRole DenyReason = "insufficient_role"
)

// Decision is the outcome of an authorization check
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

// Allow is the positive decision
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny returns a negative decision with a reason
func Deny(reason DenyReason) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Err maps the decision to the error surfaced at the service boundary.
// Scope denials look exactly like a missing row. Role denials are about the
// caller, not the row, and surface as FORBIDDEN.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	switch d.Reason {
	case ReasonRoleEscalation, ReasonInsufficientRole:
		return shared.ErrForbidden
	default:
		return shared.ErrNotFound
	}
}

// Guard is the single authorization chokepoint
type Guard struct{}

// NewGuard creates a Guard
func NewGuard() *Guard {
	return &Guard{}
}

// Authorize evaluates the tenancy rules in order:
//  1. super_admin is allowed
//  2. other organizations are denied
//  3. admin and org_admin are allowed in every branch of their org
//  4. operators are allowed in their own branch, and for bookings also when
//     their branch is the origin or destination branch
//
// A write carrying a TargetRole at or above the caller's role is denied no
// matter what the scope rules say.
func (g *Guard) Authorize(p Principal, action Action, scope ResourceScope) Decision {
	if !p.Valid() {
		return Deny(ReasonInvalidPrincipal)
	}

	decision := g.scopeDecision(p, scope)
	if !decision.Allowed {
		return decision
	}

	if action.IsWrite() && scope.TargetRole != nil && scope.TargetRole.AtLeast(p.Role) {
		return Deny(ReasonRoleEscalation)
	}
	return decision
}

func (g *Guard) scopeDecision(p Principal, scope ResourceScope) Decision {
	if p.Role == RoleSuperAdmin {
		return Allow()
	}
	if p.OrgID != scope.OrgID {
		return Deny(ReasonCrossTenant)
	}
	if p.Role.OrgWide() {
		return Allow()
	}
	// operator
	if scope.BranchID == p.BranchID {
		return Allow()
	}
	if scope.Kind == ResourceBooking && (sameID(scope.FromBranchID, p.BranchID) || sameID(scope.ToBranchID, p.BranchID)) {
		return Allow()
	}
	return Deny(ReasonOutsideBranch)
}

// Check is Authorize followed by Decision.Err
func (g *Guard) Check(p Principal, action Action, scope ResourceScope) error {
	return g.Authorize(p, action, scope).Err()
}

// RequireRole denies callers below min. Used by management operations that
// operators may not perform at all.
func (g *Guard) RequireRole(p Principal, min Role) error {
	if !p.Valid() {
		return shared.ErrUnauthorized
	}
	if !p.Role.AtLeast(min) {
		return Deny(ReasonInsufficientRole).Err()
	}
	return nil
}

// ListScope returns the row filter equivalent to Authorize(p, read, row) for
// every row a list query could return
func (g *Guard) ListScope(p Principal) ListFilter {
	if !p.Valid() {
		return ListFilter{DenyAll: true}
	}
	switch {
	case p.Role == RoleSuperAdmin:
		return ListFilter{Unrestricted: true}
	case p.Role.OrgWide():
		return ListFilter{OrgID: p.OrgID}
	default:
		branchID := p.BranchID
		return ListFilter{OrgID: p.OrgID, BranchID: &branchID, IncludeTransit: true}
	}
}

// ListFilter narrows list queries to the caller's tenancy scope
type ListFilter struct {
	// DenyAll matches nothing
	DenyAll bool
	// Unrestricted matches every organization
	Unrestricted bool
	OrgID        uuid.UUID
	// BranchID, when set, restricts to one branch
	BranchID *uuid.UUID
	// IncludeTransit also matches bookings whose origin or destination
	// branch is BranchID
	IncludeTransit bool
}

func sameID(a *uuid.UUID, b uuid.UUID) bool {
	return a != nil && *a == b
}
