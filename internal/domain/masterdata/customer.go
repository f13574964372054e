package masterdata

import (
	"regexp"
	"strings"

	"github.com/freightcore/backend/internal/domain/shared"
	"github.com/freightcore/backend/internal/domain/tenancy"
	"github.com/google/uuid"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9\- ]{5,19}$`)

// Customer is a sender or receiver of freight
type Customer struct {
	shared.OrgAggregateRoot
	BranchID *uuid.UUID
	Name     string
	Phone    string
	GSTIN    string
	Address  string
	IsActive bool
}

// NewCustomer creates an active customer, optionally homed in a branch
func NewCustomer(orgID uuid.UUID, branchID *uuid.UUID, name, phone string) (*Customer, error) {
	if orgID == uuid.Nil {
		return nil, shared.NewValidationError("org_id is required")
	}
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 200 {
		return nil, shared.NewValidationError("customer name must be 1 to 200 characters")
	}
	phone = strings.TrimSpace(phone)
	if phone != "" && !phonePattern.MatchString(phone) {
		return nil, shared.NewValidationError("invalid phone number")
	}
	return &Customer{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		BranchID:         branchID,
		Name:             name,
		Phone:            phone,
		IsActive:         true,
	}, nil
}

// Scope returns the tenancy footprint; org-wide customers have no branch
func (c *Customer) Scope() tenancy.ResourceScope {
	if c.BranchID == nil {
		return tenancy.OrgScope(tenancy.ResourceCustomer, c.OrgID)
	}
	return tenancy.BranchScope(tenancy.ResourceCustomer, c.OrgID, *c.BranchID)
}
