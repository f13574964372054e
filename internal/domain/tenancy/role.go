package tenancy

// Role is a user's privilege level. The order of the constants is the
// privilege order used for escalation checks.
type Role string

const (
	RoleOperator   Role = "operator"
	RoleAdmin      Role = "admin"
	RoleOrgAdmin   Role = "org_admin"
	RoleSuperAdmin Role = "super_admin"
)

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// IsValid returns true if the role is known
func (r Role) IsValid() bool {
	return r.Rank() > 0
}

// Rank returns the privilege rank (1 = lowest); 0 for unknown roles
func (r Role) Rank() int {
	switch r {
	case RoleOperator:
		return 1
	case RoleAdmin:
		return 2
	case RoleOrgAdmin:
		return 3
	case RoleSuperAdmin:
		return 4
	default:
		return 0
	}
}

// AtLeast reports whether r is as privileged as other
func (r Role) AtLeast(other Role) bool {
	return r.Rank() >= other.Rank()
}

// OrgWide reports whether the role sees every branch of its organization
func (r Role) OrgWide() bool {
	return r == RoleAdmin || r == RoleOrgAdmin
}

// AllRoles returns all roles in privilege order
func AllRoles() []Role {
	return []Role{RoleOperator, RoleAdmin, RoleOrgAdmin, RoleSuperAdmin}
}
