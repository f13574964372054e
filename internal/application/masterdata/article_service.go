package masterdata

import (
	"context"

	"github.com/freightcore/backend/internal/domain/masterdata"
	"github.com/freightcore/backend/internal/domain/shared"
	"github.com/freightcore/backend/internal/domain/tenancy"
	"go.uber.org/zap"
)

// ArticleService handles article operations
type ArticleService struct {
	articles masterdata.ArticleRepository
	branches masterdata.BranchRepository
	access   access
	logger   *zap.Logger
}

// NewArticleService creates a new ArticleService
func NewArticleService(articles masterdata.ArticleRepository, branches masterdata.BranchRepository, guard *tenancy.Guard, logger *zap.Logger) *ArticleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArticleService{articles: articles, branches: branches, access: access{guard: guard}, logger: logger}
}

// Create creates a new article with its standard rate
func (s *ArticleService) Create(ctx context.Context, p tenancy.Principal, in CreateArticleInput) (*ArticleResponse, error) {
	orgID, err := s.access.write(p, in.OrgID, tenancy.ResourceArticle, in.BranchID)
	if err != nil {
		return nil, err
	}
	if in.BranchID != nil {
		if _, err := s.branches.FindByID(ctx, orgID, *in.BranchID); err != nil {
			return nil, referenceError(err, "branch", *in.BranchID)
		}
	}

	article, err := masterdata.NewArticle(orgID, masterdata.ArticleInput{
		BranchID:                in.BranchID,
		Name:                    in.Name,
		Category:                in.Category,
		ChargeBasis:             in.ChargeBasis,
		BaseRatePerKg:           in.BaseRatePerKg,
		BaseRatePerUnit:         in.BaseRatePerUnit,
		MinimumCharge:           in.MinimumCharge,
		RequiresSpecialHandling: in.RequiresSpecialHandling,
	})
	if err != nil {
		return nil, err
	}
	if err := s.articles.Create(ctx, article); err != nil {
		return nil, err
	}
	s.logger.Info("Article created", zap.String("article_id", article.ID.String()), zap.String("name", article.Name))
	resp := ToArticleResponse(article)
	return &resp, nil
}

// List returns the articles of the caller's organization
func (s *ArticleService) List(ctx context.Context, p tenancy.Principal, f ListFilter) (*shared.Paginated[ArticleResponse], error) {
	orgID, err := s.access.read(p, f.OrgID, tenancy.ResourceArticle)
	if err != nil {
		return nil, err
	}
	page, err := s.articles.List(ctx, orgID, listFilter(f))
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(convertPage(page.Items, ToArticleResponse), page.Total, page.Page, page.PageSize)
	return &result, nil
}
