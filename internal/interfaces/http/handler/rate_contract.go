package handler

import (
	rateapp "github.com/freightcore/backend/internal/application/rate"
	"github.com/freightcore/backend/internal/domain/rate"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SlabRequest is one weight band of a rate contract
type SlabRequest struct {
	FromLocation    string          `json:"from_location" binding:"required,max=100" example:"Mumbai"`
	ToLocation      string          `json:"to_location" binding:"required,max=100" example:"Delhi"`
	ArticleID       *uuid.UUID      `json:"article_id,omitempty"`
	ArticleCategory string          `json:"article_category,omitempty" binding:"max=50"`
	WeightFrom      decimal.Decimal `json:"weight_from" binding:"gte=0" swaggertype:"string" example:"0"`
	WeightTo        decimal.Decimal `json:"weight_to" binding:"gte=0" swaggertype:"string" example:"50"`
	ChargeBasis     string          `json:"charge_basis" binding:"required,oneof=weight unit fixed whichever_higher" example:"weight"`
	RatePerKg       decimal.Decimal `json:"rate_per_kg" binding:"gte=0" swaggertype:"string" example:"50"`
	RatePerUnit     decimal.Decimal `json:"rate_per_unit" binding:"gte=0" swaggertype:"string"`
	FixedAmount     decimal.Decimal `json:"fixed_amount" binding:"gte=0" swaggertype:"string"`
	MinimumCharge   decimal.Decimal `json:"minimum_charge" binding:"gte=0" swaggertype:"string"`
}

// CreateContractRequest is the body of POST /rate-contracts
type CreateContractRequest struct {
	OrgID                  *uuid.UUID      `json:"org_id,omitempty"`
	CustomerID             uuid.UUID       `json:"customer_id" binding:"required"`
	ContractNumber         string          `json:"contract_number" binding:"required,max=50" example:"RC-2026-001"`
	ValidFrom              string          `json:"valid_from" binding:"required,datetime=2006-01-02" example:"2026-01-01"`
	ValidUntil             string          `json:"valid_until" binding:"required,datetime=2006-01-02" example:"2026-12-31"`
	PaymentTerms           string          `json:"payment_terms,omitempty" binding:"max=100"`
	CreditLimit            decimal.Decimal `json:"credit_limit" binding:"gte=0" swaggertype:"string"`
	BaseDiscountPercentage decimal.Decimal `json:"base_discount_percentage" binding:"gte=0,lte=100" swaggertype:"string"`
	Slabs                  []SlabRequest   `json:"slabs" binding:"omitempty,dive"`
}

// TerminateContractRequest is the body of POST /rate-contracts/:id/terminate
type TerminateContractRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// ContractListRequest holds the query parameters of GET /rate-contracts
type ContractListRequest struct {
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string `form:"order_by" binding:"omitempty,max=50"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search     string `form:"search" binding:"omitempty,max=100"`
	OrgID      string `form:"org_id" binding:"omitempty,uuid"`
	CustomerID string `form:"customer_id" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=draft active expired terminated"`
}

func (r SlabRequest) toInput() rate.SlabInput {
	return rate.SlabInput{
		FromLocation:    r.FromLocation,
		ToLocation:      r.ToLocation,
		ArticleID:       r.ArticleID,
		ArticleCategory: r.ArticleCategory,
		WeightFrom:      r.WeightFrom,
		WeightTo:        r.WeightTo,
		ChargeBasis:     rate.ChargeBasis(r.ChargeBasis),
		RatePerKg:       r.RatePerKg,
		RatePerUnit:     r.RatePerUnit,
		FixedAmount:     r.FixedAmount,
		MinimumCharge:   r.MinimumCharge,
	}
}

func optionalUUID(value string) *uuid.UUID {
	if value == "" {
		return nil
	}
	id := uuid.MustParse(value)
	return &id
}

// RateContractHandler handles rate contract management
type RateContractHandler struct {
	BaseHandler
	contractService *rateapp.ContractService
}

// NewRateContractHandler creates a new rate contract handler
func NewRateContractHandler(contractService *rateapp.ContractService) *RateContractHandler {
	return &RateContractHandler{contractService: contractService}
}

// Create godoc
// @ID           createRateContract
// @Summary      Create a rate contract
// @Description  Stores a draft contract with its initial slabs. Admins only.
// @Tags         rate-contracts
// @Accept       json
// @Produce      json
// @Param        request body CreateContractRequest true "Contract"
// @Success      201 {object} APIResponse[rateapp.ContractResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /rate-contracts [post]
func (h *RateContractHandler) Create(c *gin.Context) {
	var req CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	slabs := make([]rate.SlabInput, len(req.Slabs))
	for i, s := range req.Slabs {
		slabs[i] = s.toInput()
	}

	contract, err := h.contractService.Create(c.Request.Context(), principal(c), rateapp.CreateContractInput{
		OrgID:                  req.OrgID,
		CustomerID:             req.CustomerID,
		ContractNumber:         req.ContractNumber,
		ValidFrom:              parseDate(req.ValidFrom),
		ValidUntil:             parseDate(req.ValidUntil),
		PaymentTerms:           req.PaymentTerms,
		CreditLimit:            req.CreditLimit,
		BaseDiscountPercentage: req.BaseDiscountPercentage,
		Slabs:                  slabs,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, contract)
}

// List godoc
// @ID           listRateContracts
// @Summary      List rate contracts
// @Tags         rate-contracts
// @Produce      json
// @Param        page        query int    false "Page number" default(1)
// @Param        page_size   query int    false "Page size" default(20)
// @Param        search      query string false "Contract number"
// @Param        customer_id query string false "Customer filter" format(uuid)
// @Param        status      query string false "Status filter" Enums(draft, active, expired, terminated)
// @Param        org_id      query string false "Organization (super admins)" format(uuid)
// @Success      200 {object} APIResponse[[]rateapp.ContractResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /rate-contracts [get]
func (h *RateContractHandler) List(c *gin.Context) {
	var req ContractListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.contractService.List(c.Request.Context(), principal(c), rateapp.ContractListFilter{
		OrgID:      optionalUUID(req.OrgID),
		Page:       req.Page,
		PageSize:   req.PageSize,
		OrderBy:    req.OrderBy,
		OrderDir:   req.OrderDir,
		Search:     req.Search,
		CustomerID: optionalUUID(req.CustomerID),
		Status:     rate.ContractStatus(req.Status),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(c, page)
}

// Get godoc
// @ID           getRateContract
// @Summary      Get a rate contract with its slabs
// @Tags         rate-contracts
// @Produce      json
// @Param        id     path  string true  "Contract ID" format(uuid)
// @Param        org_id query string false "Organization (super admins)" format(uuid)
// @Success      200 {object} APIResponse[rateapp.ContractResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /rate-contracts/{id} [get]
func (h *RateContractHandler) Get(c *gin.Context) {
	id, orgID, ok := h.contractTarget(c)
	if !ok {
		return
	}
	contract, err := h.contractService.Get(c.Request.Context(), principal(c), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, contract)
}

// AddSlab godoc
// @ID           addRateContractSlab
// @Summary      Add a slab to a contract
// @Tags         rate-contracts
// @Accept       json
// @Produce      json
// @Param        id      path  string      true  "Contract ID" format(uuid)
// @Param        org_id  query string      false "Organization (super admins)" format(uuid)
// @Param        request body  SlabRequest true  "Slab"
// @Success      200 {object} APIResponse[rateapp.ContractResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /rate-contracts/{id}/slabs [post]
func (h *RateContractHandler) AddSlab(c *gin.Context) {
	id, orgID, ok := h.contractTarget(c)
	if !ok {
		return
	}
	var req SlabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	contract, err := h.contractService.AddSlab(c.Request.Context(), principal(c), orgID, id, req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, contract)
}

// Activate godoc
// @ID           activateRateContract
// @Summary      Activate a draft contract
// @Tags         rate-contracts
// @Produce      json
// @Param        id     path  string true  "Contract ID" format(uuid)
// @Param        org_id query string false "Organization (super admins)" format(uuid)
// @Success      200 {object} APIResponse[rateapp.ContractResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /rate-contracts/{id}/activate [post]
func (h *RateContractHandler) Activate(c *gin.Context) {
	id, orgID, ok := h.contractTarget(c)
	if !ok {
		return
	}
	contract, err := h.contractService.Activate(c.Request.Context(), principal(c), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, contract)
}

// Terminate godoc
// @ID           terminateRateContract
// @Summary      Terminate a contract
// @Tags         rate-contracts
// @Accept       json
// @Produce      json
// @Param        id      path  string                   true  "Contract ID" format(uuid)
// @Param        org_id  query string                   false "Organization (super admins)" format(uuid)
// @Param        request body  TerminateContractRequest false "Reason"
// @Success      200 {object} APIResponse[rateapp.ContractResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /rate-contracts/{id}/terminate [post]
func (h *RateContractHandler) Terminate(c *gin.Context) {
	id, orgID, ok := h.contractTarget(c)
	if !ok {
		return
	}
	var req TerminateContractRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
	}
	contract, err := h.contractService.Terminate(c.Request.Context(), principal(c), orgID, id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, contract)
}

func (h *RateContractHandler) contractTarget(c *gin.Context) (uuid.UUID, *uuid.UUID, bool) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return uuid.Nil, nil, false
	}
	orgID, ok := h.queryOrgID(c)
	if !ok {
		return uuid.Nil, nil, false
	}
	return id, orgID, true
}
