package tenancy

import (
	"github.com/google/uuid"
)

// Action is the kind of access being requested
type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// IsWrite reports whether the action mutates state
func (a Action) IsWrite() bool {
	return a != ActionRead
}

// ResourceKind identifies what a ResourceScope describes. Bookings get the
// in-transit branch rule; everything else is matched on BranchID only.
type ResourceKind string

const (
	ResourceBooking  ResourceKind = "booking"
	ResourceContract ResourceKind = "rate_contract"
	ResourceCustomer ResourceKind = "customer"
	ResourceArticle  ResourceKind = "article"
	ResourceBranch   ResourceKind = "branch"
	ResourceUser     ResourceKind = "user"
)

// ResourceScope is the tenancy footprint of a row
type ResourceScope struct {
	Kind         ResourceKind
	OrgID        uuid.UUID
	BranchID     uuid.UUID
	FromBranchID *uuid.UUID
	ToBranchID   *uuid.UUID
	// TargetRole is set when a write would change a user's role field
	TargetRole *Role
}

// OrgScope builds a scope for an org-level resource with no branch
func OrgScope(kind ResourceKind, orgID uuid.UUID) ResourceScope {
	return ResourceScope{Kind: kind, OrgID: orgID}
}

// BranchScope builds a scope for a branch-owned resource
func BranchScope(kind ResourceKind, orgID, branchID uuid.UUID) ResourceScope {
	return ResourceScope{Kind: kind, OrgID: orgID, BranchID: branchID}
}

// BookingScope builds the scope of a booking, including its route branches
func BookingScope(orgID, branchID, fromBranchID, toBranchID uuid.UUID) ResourceScope {
	return ResourceScope{
		Kind:         ResourceBooking,
		OrgID:        orgID,
		BranchID:     branchID,
		FromBranchID: &fromBranchID,
		ToBranchID:   &toBranchID,
	}
}

// WithTargetRole marks the scope as a role-changing write
func (s ResourceScope) WithTargetRole(role Role) ResourceScope {
	s.TargetRole = &role
	return s
}
