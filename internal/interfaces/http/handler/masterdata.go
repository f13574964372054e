package handler

import (
	mdapp "github.com/freightcore/backend/internal/application/masterdata"
	"github.com/freightcore/backend/internal/domain/rate"
	"github.com/freightcore/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateBranchRequest is the body of POST /branches
type CreateBranchRequest struct {
	OrgID *uuid.UUID `json:"org_id,omitempty"`
	Name  string     `json:"name" binding:"required,max=100" example:"Mumbai Central"`
	Code  string     `json:"code" binding:"required,max=20" example:"MUM"`
	City  string     `json:"city,omitempty" binding:"max=100" example:"Mumbai"`
}

// CreateCustomerRequest is the body of POST /customers
type CreateCustomerRequest struct {
	OrgID    *uuid.UUID `json:"org_id,omitempty"`
	BranchID *uuid.UUID `json:"branch_id,omitempty"`
	Name     string     `json:"name" binding:"required,max=200" example:"Shree Textiles"`
	Phone    string     `json:"phone,omitempty" binding:"max=20" example:"+91 98200 12345"`
	GSTIN    string     `json:"gstin,omitempty" binding:"omitempty,len=15,alphanum" example:"27AAACS1234F1Z5"`
	Address  string     `json:"address,omitempty" binding:"max=500"`
}

// CreateArticleRequest is the body of POST /articles
type CreateArticleRequest struct {
	OrgID                   *uuid.UUID      `json:"org_id,omitempty"`
	BranchID                *uuid.UUID      `json:"branch_id,omitempty"`
	Name                    string          `json:"name" binding:"required,max=200" example:"Cotton bales"`
	Category                string          `json:"category,omitempty" binding:"max=50" example:"textile"`
	ChargeBasis             string          `json:"charge_basis,omitempty" binding:"omitempty,oneof=weight unit fixed whichever_higher" example:"weight"`
	BaseRatePerKg           decimal.Decimal `json:"base_rate_per_kg" binding:"gte=0" swaggertype:"string" example:"12"`
	BaseRatePerUnit         decimal.Decimal `json:"base_rate_per_unit" binding:"gte=0" swaggertype:"string"`
	MinimumCharge           decimal.Decimal `json:"minimum_charge" binding:"gte=0" swaggertype:"string"`
	RequiresSpecialHandling bool            `json:"requires_special_handling"`
}

// MasterDataHandler handles branches, customers and articles
type MasterDataHandler struct {
	BaseHandler
	branchService   *mdapp.BranchService
	customerService *mdapp.CustomerService
	articleService  *mdapp.ArticleService
}

// NewMasterDataHandler creates a new master data handler
func NewMasterDataHandler(branches *mdapp.BranchService, customers *mdapp.CustomerService, articles *mdapp.ArticleService) *MasterDataHandler {
	return &MasterDataHandler{
		branchService:   branches,
		customerService: customers,
		articleService:  articles,
	}
}

// listFilter binds the shared list query
func (h *MasterDataHandler) listFilter(c *gin.Context) (mdapp.ListFilter, bool) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return mdapp.ListFilter{}, false
	}
	return mdapp.ListFilter{
		OrgID:    optionalUUID(req.OrgID),
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
	}, true
}

// CreateBranch godoc
// @ID           createBranch
// @Summary      Create a branch
// @Tags         master-data
// @Accept       json
// @Produce      json
// @Param        request body CreateBranchRequest true "Branch"
// @Success      201 {object} APIResponse[mdapp.BranchResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /branches [post]
func (h *MasterDataHandler) CreateBranch(c *gin.Context) {
	var req CreateBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	branch, err := h.branchService.Create(c.Request.Context(), principal(c), mdapp.CreateBranchInput{
		OrgID: req.OrgID,
		Name:  req.Name,
		Code:  req.Code,
		City:  req.City,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, branch)
}

// ListBranches godoc
// @ID           listBranches
// @Summary      List branches
// @Tags         master-data
// @Produce      json
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Param        search    query string false "Name or code"
// @Success      200 {object} APIResponse[[]mdapp.BranchResponse]
// @Security     BearerAuth
// @Router       /branches [get]
func (h *MasterDataHandler) ListBranches(c *gin.Context) {
	filter, ok := h.listFilter(c)
	if !ok {
		return
	}
	page, err := h.branchService.List(c.Request.Context(), principal(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(c, page)
}

// CreateCustomer godoc
// @ID           createCustomer
// @Summary      Create a customer
// @Description  A customer without branch_id is visible to every branch of the org
// @Tags         master-data
// @Accept       json
// @Produce      json
// @Param        request body CreateCustomerRequest true "Customer"
// @Success      201 {object} APIResponse[mdapp.CustomerResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers [post]
func (h *MasterDataHandler) CreateCustomer(c *gin.Context) {
	var req CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	customer, err := h.customerService.Create(c.Request.Context(), principal(c), mdapp.CreateCustomerInput{
		OrgID:    req.OrgID,
		BranchID: req.BranchID,
		Name:     req.Name,
		Phone:    req.Phone,
		GSTIN:    req.GSTIN,
		Address:  req.Address,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, customer)
}

// ListCustomers godoc
// @ID           listCustomers
// @Summary      List customers
// @Tags         master-data
// @Produce      json
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Param        search    query string false "Name"
// @Success      200 {object} APIResponse[[]mdapp.CustomerResponse]
// @Security     BearerAuth
// @Router       /customers [get]
func (h *MasterDataHandler) ListCustomers(c *gin.Context) {
	filter, ok := h.listFilter(c)
	if !ok {
		return
	}
	page, err := h.customerService.List(c.Request.Context(), principal(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(c, page)
}

// CreateArticle godoc
// @ID           createArticle
// @Summary      Create an article
// @Description  Articles carry the standard rate used when no contract slab applies
// @Tags         master-data
// @Accept       json
// @Produce      json
// @Param        request body CreateArticleRequest true "Article"
// @Success      201 {object} APIResponse[mdapp.ArticleResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /articles [post]
func (h *MasterDataHandler) CreateArticle(c *gin.Context) {
	var req CreateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	article, err := h.articleService.Create(c.Request.Context(), principal(c), mdapp.CreateArticleInput{
		OrgID:                   req.OrgID,
		BranchID:                req.BranchID,
		Name:                    req.Name,
		Category:                req.Category,
		ChargeBasis:             rate.ChargeBasis(req.ChargeBasis),
		BaseRatePerKg:           req.BaseRatePerKg,
		BaseRatePerUnit:         req.BaseRatePerUnit,
		MinimumCharge:           req.MinimumCharge,
		RequiresSpecialHandling: req.RequiresSpecialHandling,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, article)
}

// ListArticles godoc
// @ID           listArticles
// @Summary      List articles
// @Tags         master-data
// @Produce      json
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Param        search    query string false "Name"
// @Success      200 {object} APIResponse[[]mdapp.ArticleResponse]
// @Security     BearerAuth
// @Router       /articles [get]
func (h *MasterDataHandler) ListArticles(c *gin.Context) {
	filter, ok := h.listFilter(c)
	if !ok {
		return
	}
	page, err := h.articleService.List(c.Request.Context(), principal(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(c, page)
}
