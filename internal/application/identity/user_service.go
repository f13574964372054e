package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/freightcore/backend/internal/domain/identity"
	"github.com/freightcore/backend/internal/domain/masterdata"
	"github.com/freightcore/backend/internal/domain/shared"
	"github.com/freightcore/backend/internal/domain/tenancy"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserService handles user management. Every write names the role it grants
// so the guard can refuse escalation.
type UserService struct {
	userRepo identity.UserRepository
	branches masterdata.BranchRepository
	guard    *tenancy.Guard
	logger   *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo identity.UserRepository, branches masterdata.BranchRepository, guard *tenancy.Guard, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{userRepo: userRepo, branches: branches, guard: guard, logger: logger}
}

// Create creates a user with a role strictly below the caller's
func (s *UserService) Create(ctx context.Context, p tenancy.Principal, in CreateUserInput) (*UserResponse, error) {
	if err := s.guard.RequireRole(p, tenancy.RoleAdmin); err != nil {
		return nil, err
	}
	if !in.Role.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("unknown role %q", in.Role))
	}
	orgID := p.OrgFor(in.OrgID)
	if orgID == uuid.Nil {
		return nil, shared.NewValidationError("org_id is required")
	}

	scope := tenancy.BranchScope(tenancy.ResourceUser, orgID, in.BranchID).WithTargetRole(in.Role)
	if err := s.guard.Check(p, tenancy.ActionCreate, scope); err != nil {
		return nil, err
	}
	if _, err := s.branches.FindByID(ctx, orgID, in.BranchID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewValidationError(fmt.Sprintf("branch %s does not exist in this organization", in.BranchID))
		}
		return nil, err
	}

	user, err := identity.NewUser(orgID, in.BranchID, in.Username, in.Password, in.Role)
	if err != nil {
		return nil, err
	}
	if err := user.SetDisplayName(in.DisplayName); err != nil {
		return nil, err
	}
	exists, err := s.userRepo.ExistsByUsername(ctx, user.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "User with this username already exists")
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.String("role", user.Role.String()),
		zap.String("created_by", p.UserID.String()))
	resp := ToUserResponse(user)
	return &resp, nil
}

// ChangeRole changes a user's role. The caller must outrank both the
// current and the new role; nobody can raise their own role.
func (s *UserService) ChangeRole(ctx context.Context, p tenancy.Principal, id uuid.UUID, in ChangeRoleInput) (*UserResponse, error) {
	if err := s.guard.RequireRole(p, tenancy.RoleAdmin); err != nil {
		return nil, err
	}
	if !in.Role.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("unknown role %q", in.Role))
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	scope := user.Scope()
	if err := s.guard.Check(p, tenancy.ActionUpdate, scope); err != nil {
		return nil, err
	}
	for _, role := range []tenancy.Role{user.Role, in.Role} {
		if err := s.guard.Check(p, tenancy.ActionUpdate, scope.WithTargetRole(role)); err != nil {
			s.logger.Warn("Role change denied",
				zap.String("user_id", user.ID.String()),
				zap.String("target_role", role.String()),
				zap.String("changed_by", p.UserID.String()))
			return nil, err
		}
	}

	if err := user.ChangeRole(in.Role, p.UserID); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("User role changed",
		zap.String("user_id", user.ID.String()),
		zap.String("role", user.Role.String()),
		zap.String("changed_by", p.UserID.String()))
	resp := ToUserResponse(user)
	return &resp, nil
}

// List returns the users the caller may see
func (s *UserService) List(ctx context.Context, p tenancy.Principal, f UserListFilter) (*shared.Paginated[UserResponse], error) {
	if err := s.guard.RequireRole(p, tenancy.RoleAdmin); err != nil {
		return nil, err
	}
	page, err := s.userRepo.List(ctx, s.guard.ListScope(p), shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Search:   f.Search,
	}.Normalize())
	if err != nil {
		return nil, err
	}
	items := make([]UserResponse, len(page.Items))
	for i := range page.Items {
		items[i] = ToUserResponse(&page.Items[i])
	}
	result := shared.NewPaginated(items, page.Total, page.Page, page.PageSize)
	return &result, nil
}
