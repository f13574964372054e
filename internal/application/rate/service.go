// Package rate manages rate contracts and their slabs. All operations are
// limited to admins of the contract's organization.
package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/freightcore/backend/internal/domain/masterdata"
	"github.com/freightcore/backend/internal/domain/rate"
	"github.com/freightcore/backend/internal/domain/shared"
	"github.com/freightcore/backend/internal/domain/tenancy"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContractService handles rate contract operations
type ContractService struct {
	contracts rate.ContractRepository
	customers masterdata.CustomerRepository
	articles  masterdata.ArticleRepository
	guard     *tenancy.Guard
	logger    *zap.Logger
	now       func() time.Time
}

// NewContractService creates a new ContractService
func NewContractService(
	contracts rate.ContractRepository,
	customers masterdata.CustomerRepository,
	articles masterdata.ArticleRepository,
	guard *tenancy.Guard,
	logger *zap.Logger,
) *ContractService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContractService{
		contracts: contracts,
		customers: customers,
		articles:  articles,
		guard:     guard,
		logger:    logger,
		now:       time.Now,
	}
}

// authorize checks that the caller may manage contracts of the target org
func (s *ContractService) authorize(p tenancy.Principal, action tenancy.Action, explicit *uuid.UUID) (uuid.UUID, error) {
	if err := s.guard.RequireRole(p, tenancy.RoleAdmin); err != nil {
		return uuid.Nil, err
	}
	orgID := p.OrgFor(explicit)
	if orgID == uuid.Nil {
		return uuid.Nil, shared.NewValidationError("org_id is required")
	}
	if err := s.guard.Check(p, action, tenancy.OrgScope(tenancy.ResourceContract, orgID)); err != nil {
		return uuid.Nil, err
	}
	return orgID, nil
}

// Create stores a draft contract with its initial slabs
func (s *ContractService) Create(ctx context.Context, p tenancy.Principal, in CreateContractInput) (*ContractResponse, error) {
	orgID, err := s.authorize(p, tenancy.ActionCreate, in.OrgID)
	if err != nil {
		return nil, err
	}

	if _, err := s.customers.FindByID(ctx, orgID, in.CustomerID); err != nil {
		return nil, referenceError(err, "customer", in.CustomerID)
	}
	exists, err := s.contracts.ExistsByNumber(ctx, orgID, in.ContractNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Contract with this number already exists")
	}

	contract, err := rate.NewRateContract(orgID, p.UserID, rate.ContractInput{
		CustomerID:             in.CustomerID,
		ContractNumber:         in.ContractNumber,
		ValidFrom:              in.ValidFrom,
		ValidUntil:             in.ValidUntil,
		PaymentTerms:           in.PaymentTerms,
		CreditLimit:            in.CreditLimit,
		BaseDiscountPercentage: in.BaseDiscountPercentage,
	})
	if err != nil {
		return nil, err
	}
	for i, slab := range in.Slabs {
		if err := s.checkSlabArticle(ctx, orgID, slab); err != nil {
			return nil, err
		}
		if _, err := contract.AddSlab(slab); err != nil {
			return nil, fmt.Errorf("slab %d: %w", i+1, err)
		}
	}

	if err := s.contracts.Create(ctx, contract); err != nil {
		return nil, err
	}
	s.logger.Info("Rate contract created",
		zap.String("contract_id", contract.ID.String()),
		zap.String("contract_number", contract.ContractNumber),
		zap.Int("slabs", len(contract.Slabs)),
	)
	resp := ToContractResponse(contract)
	return &resp, nil
}

// Get returns a contract with its slabs
func (s *ContractService) Get(ctx context.Context, p tenancy.Principal, orgID *uuid.UUID, id uuid.UUID) (*ContractResponse, error) {
	contract, err := s.load(ctx, p, tenancy.ActionRead, orgID, id)
	if err != nil {
		return nil, err
	}
	resp := ToContractResponse(contract)
	return &resp, nil
}

// List returns a page of contracts
func (s *ContractService) List(ctx context.Context, p tenancy.Principal, f ContractListFilter) (*shared.Paginated[ContractResponse], error) {
	orgID, err := s.authorize(p, tenancy.ActionRead, f.OrgID)
	if err != nil {
		return nil, err
	}
	if f.Status != "" && !f.Status.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("unknown contract status %q", f.Status))
	}

	page, err := s.contracts.List(ctx, orgID, rate.ContractListQuery{
		Filter: shared.Filter{
			Page:     f.Page,
			PageSize: f.PageSize,
			OrderBy:  f.OrderBy,
			OrderDir: f.OrderDir,
			Search:   f.Search,
		}.Normalize(),
		CustomerID: f.CustomerID,
		Status:     f.Status,
	})
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(ToContractResponses(page.Items), page.Total, page.Page, page.PageSize)
	return &result, nil
}

// AddSlab attaches a slab to a draft or active contract
func (s *ContractService) AddSlab(ctx context.Context, p tenancy.Principal, orgID *uuid.UUID, id uuid.UUID, in rate.SlabInput) (*ContractResponse, error) {
	contract, err := s.load(ctx, p, tenancy.ActionUpdate, orgID, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkSlabArticle(ctx, contract.OrgID, in); err != nil {
		return nil, err
	}
	if _, err := contract.AddSlab(in); err != nil {
		return nil, err
	}
	if err := s.contracts.Save(ctx, contract); err != nil {
		return nil, err
	}
	resp := ToContractResponse(contract)
	return &resp, nil
}

// Activate makes a draft contract usable for pricing
func (s *ContractService) Activate(ctx context.Context, p tenancy.Principal, orgID *uuid.UUID, id uuid.UUID) (*ContractResponse, error) {
	return s.mutate(ctx, p, orgID, id, "activated", func(c *rate.RateContract) error {
		if len(c.Slabs) == 0 {
			return shared.NewDomainError(shared.CodeInvalidState, "a contract needs at least one slab before activation")
		}
		return c.Activate()
	})
}

// Terminate closes a draft or active contract
func (s *ContractService) Terminate(ctx context.Context, p tenancy.Principal, orgID *uuid.UUID, id uuid.UUID, reason string) (*ContractResponse, error) {
	return s.mutate(ctx, p, orgID, id, "terminated", func(c *rate.RateContract) error {
		return c.Terminate(reason)
	})
}

// ExpireEnded closes every active contract whose validity window has passed.
// It runs as a background job and is not tied to a caller.
func (s *ContractService) ExpireEnded(ctx context.Context) (int64, error) {
	n, err := s.contracts.ExpireEnded(ctx, rate.DateOf(s.now()))
	if err != nil {
		return 0, fmt.Errorf("expire ended contracts: %w", err)
	}
	if n > 0 {
		s.logger.Info("Expired rate contracts", zap.Int64("count", n))
	}
	return n, nil
}

func (s *ContractService) mutate(ctx context.Context, p tenancy.Principal, orgID *uuid.UUID, id uuid.UUID, verb string, fn func(*rate.RateContract) error) (*ContractResponse, error) {
	contract, err := s.load(ctx, p, tenancy.ActionUpdate, orgID, id)
	if err != nil {
		return nil, err
	}
	if err := fn(contract); err != nil {
		return nil, err
	}
	if err := s.contracts.Save(ctx, contract); err != nil {
		return nil, err
	}
	s.logger.Info("Rate contract "+verb,
		zap.String("contract_id", contract.ID.String()),
		zap.String("status", contract.Status.String()),
	)
	resp := ToContractResponse(contract)
	return &resp, nil
}

func (s *ContractService) load(ctx context.Context, p tenancy.Principal, action tenancy.Action, explicit *uuid.UUID, id uuid.UUID) (*rate.RateContract, error) {
	orgID, err := s.authorize(p, action, explicit)
	if err != nil {
		return nil, err
	}
	return s.contracts.FindByID(ctx, orgID, id)
}

func (s *ContractService) checkSlabArticle(ctx context.Context, orgID uuid.UUID, in rate.SlabInput) error {
	if in.ArticleID == nil {
		return nil
	}
	if _, err := s.articles.FindByID(ctx, orgID, *in.ArticleID); err != nil {
		return referenceError(err, "article", *in.ArticleID)
	}
	return nil
}

func referenceError(err error, kind string, id uuid.UUID) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewValidationError(fmt.Sprintf("%s %s does not exist in this organization", kind, id))
	}
	return err
}
