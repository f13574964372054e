package masterdata

import (
	"context"

	"github.com/freightcore/backend/internal/domain/masterdata"
	"github.com/freightcore/backend/internal/domain/shared"
	"github.com/freightcore/backend/internal/domain/tenancy"
	"go.uber.org/zap"
)

// BranchService handles branch operations
type BranchService struct {
	branches masterdata.BranchRepository
	access   access
	logger   *zap.Logger
}

// NewBranchService creates a new BranchService
func NewBranchService(branches masterdata.BranchRepository, guard *tenancy.Guard, logger *zap.Logger) *BranchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BranchService{branches: branches, access: access{guard: guard}, logger: logger}
}

// Create creates a new branch
func (s *BranchService) Create(ctx context.Context, p tenancy.Principal, in CreateBranchInput) (*BranchResponse, error) {
	orgID, err := s.access.write(p, in.OrgID, tenancy.ResourceBranch, nil)
	if err != nil {
		return nil, err
	}

	branch, err := masterdata.NewBranch(orgID, in.Name, in.Code, in.City)
	if err != nil {
		return nil, err
	}
	exists, err := s.branches.ExistsByCode(ctx, orgID, branch.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Branch with this code already exists")
	}
	if err := s.branches.Create(ctx, branch); err != nil {
		return nil, err
	}

	s.logger.Info("Branch created", zap.String("branch_id", branch.ID.String()), zap.String("code", branch.Code))
	resp := ToBranchResponse(branch)
	return &resp, nil
}

// List returns the branches of the caller's organization
func (s *BranchService) List(ctx context.Context, p tenancy.Principal, f ListFilter) (*shared.Paginated[BranchResponse], error) {
	orgID, err := s.access.read(p, f.OrgID, tenancy.ResourceBranch)
	if err != nil {
		return nil, err
	}
	page, err := s.branches.List(ctx, orgID, listFilter(f))
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(convertPage(page.Items, ToBranchResponse), page.Total, page.Page, page.PageSize)
	return &result, nil
}
