package masterdata

import (
	"context"
	"strings"

	"github.com/freightcore/backend/internal/domain/masterdata"
	"github.com/freightcore/backend/internal/domain/shared"
	"github.com/freightcore/backend/internal/domain/tenancy"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CustomerService handles customer operations
type CustomerService struct {
	customers masterdata.CustomerRepository
	branches  masterdata.BranchRepository
	access    access
	logger    *zap.Logger
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customers masterdata.CustomerRepository, branches masterdata.BranchRepository, guard *tenancy.Guard, logger *zap.Logger) *CustomerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerService{customers: customers, branches: branches, access: access{guard: guard}, logger: logger}
}

// Create creates a new customer, org-wide or homed in a branch
func (s *CustomerService) Create(ctx context.Context, p tenancy.Principal, in CreateCustomerInput) (*CustomerResponse, error) {
	orgID, err := s.access.write(p, in.OrgID, tenancy.ResourceCustomer, in.BranchID)
	if err != nil {
		return nil, err
	}
	if in.BranchID != nil {
		if _, err := s.branches.FindByID(ctx, orgID, *in.BranchID); err != nil {
			return nil, referenceError(err, "branch", *in.BranchID)
		}
	}

	customer, err := masterdata.NewCustomer(orgID, in.BranchID, in.Name, in.Phone)
	if err != nil {
		return nil, err
	}
	customer.GSTIN = strings.ToUpper(strings.TrimSpace(in.GSTIN))
	customer.Address = strings.TrimSpace(in.Address)

	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, err
	}
	s.logger.Info("Customer created", zap.String("customer_id", customer.ID.String()))
	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// List returns customers visible to the caller. Operators see their branch's
// customers and the org-wide ones.
func (s *CustomerService) List(ctx context.Context, p tenancy.Principal, f ListFilter) (*shared.Paginated[CustomerResponse], error) {
	orgID, err := s.access.read(p, f.OrgID, tenancy.ResourceCustomer)
	if err != nil {
		return nil, err
	}
	var branchID *uuid.UUID
	if p.Role == tenancy.RoleOperator {
		own := p.BranchID
		branchID = &own
	}
	page, err := s.customers.List(ctx, orgID, branchID, listFilter(f))
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(convertPage(page.Items, ToCustomerResponse), page.Total, page.Page, page.PageSize)
	return &result, nil
}
