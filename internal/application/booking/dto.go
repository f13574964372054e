package booking

import (
	"time"

	"github.com/freightcore/backend/internal/domain/booking"
	"github.com/freightcore/backend/internal/domain/rate"
	"github.com/freightcore/backend/internal/domain/tariff"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ManualRate is a caller-supplied rate used when neither a contract slab nor
// the article's standard rate applies
type ManualRate struct {
	Basis         rate.ChargeBasis
	Value         decimal.Decimal
	MinimumCharge decimal.Decimal
}

// Rate converts the manual figure into a rate for its basis
func (m ManualRate) Rate() rate.Rate {
	r := rate.Rate{Basis: m.Basis, MinimumCharge: m.MinimumCharge}
	switch m.Basis {
	case rate.ChargeBasisUnit:
		r.PerUnit = m.Value
	case rate.ChargeBasisFixed:
		r.FixedAmount = m.Value
	case rate.ChargeBasisWhicheverHigher:
		r.PerKg = m.Value
		r.PerUnit = m.Value
	default:
		r.PerKg = m.Value
	}
	return r
}

// LineOptions are the optional per-line charges
type LineOptions struct {
	LoadingRatePerUnit    decimal.Decimal
	UnloadingRatePerUnit  decimal.Decimal
	FuelSurchargePct      decimal.Decimal
	UrgencySurchargePct   decimal.Decimal
	FragilitySurchargePct decimal.Decimal
	SeasonalAdjustmentPct decimal.Decimal
	Adjustment            decimal.Decimal
	// LoyaltyDiscountPct overrides the contract's base discount when set
	LoyaltyDiscountPct *decimal.Decimal
}

// LineInput is one article line of a create or line-add request
type LineInput struct {
	ArticleID     *uuid.UUID
	Name          string
	Quantity      int
	Weight        decimal.Decimal
	Dimensions    *tariff.Dimensions
	DeclaredValue decimal.Decimal
	// ManualRate applies to this line only and wins over the header's
	ManualRate *ManualRate
	Options    LineOptions
}

// CreateBookingInput contains the input for booking creation
type CreateBookingInput struct {
	// OrgID may only be set by super admins; everyone else books in their own org
	OrgID         *uuid.UUID
	BranchID      uuid.UUID
	FromBranchID  uuid.UUID
	ToBranchID    uuid.UUID
	FromLocation  string
	ToLocation    string
	SenderID      uuid.UUID
	ReceiverID    uuid.UUID
	PaymentType   booking.PaymentType
	PickupDate    time.Time
	DeclaredTotal *decimal.Decimal
	ManualRate    *ManualRate
	Articles      []LineInput
}

// UpdateStatusInput contains the input for a status change
type UpdateStatusInput struct {
	Status          booking.Status
	WorkflowContext booking.WorkflowContext
	// ExpectedStatus is the status the caller last observed; it must equal
	// the stored status
	ExpectedStatus booking.Status
}

// AddArticleInput contains the input for adding a line to a booking
type AddArticleInput struct {
	Line LineInput
}

// ListFilter narrows a booking listing
type ListFilter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Status   booking.Status
	FromDate *time.Time
	ToDate   *time.Time
}

// RateLookupInput asks which rate would apply to a line
type RateLookupInput struct {
	OrgID       *uuid.UUID
	CustomerID  uuid.UUID
	From        string
	To          string
	ArticleID   *uuid.UUID
	Weight      decimal.Decimal
	Quantity    int
	BookingDate time.Time
}

// ArticleResponse is a priced booking line
type ArticleResponse struct {
	ID               uuid.UUID        `json:"id"`
	ArticleID        *uuid.UUID       `json:"article_id,omitempty"`
	Description      string           `json:"description"`
	Quantity         int              `json:"quantity"`
	ActualWeight     decimal.Decimal  `json:"actual_weight"`
	ChargedWeight    decimal.Decimal  `json:"charged_weight"`
	RateType         rate.ChargeBasis `json:"rate_type"`
	RateValue        decimal.Decimal  `json:"rate_value"`
	RateSource       string           `json:"rate_source"`
	SlabID           *uuid.UUID       `json:"slab_id,omitempty"`
	FreightAmount    decimal.Decimal  `json:"freight_amount"`
	LoadingCharge    decimal.Decimal  `json:"loading_charge"`
	UnloadingCharge  decimal.Decimal  `json:"unloading_charge"`
	SurchargeAmount  decimal.Decimal  `json:"surcharge_amount"`
	AdjustmentAmount decimal.Decimal  `json:"adjustment_amount"`
	DiscountAmount   decimal.Decimal  `json:"discount_amount"`
	TaxAmount        decimal.Decimal  `json:"tax_amount"`
	DeclaredValue    decimal.Decimal  `json:"declared_value"`
	TotalAmount      decimal.Decimal  `json:"total_amount"`
}

// BookingResponse is a booking with its lines
type BookingResponse struct {
	ID                uuid.UUID         `json:"id"`
	OrgID             uuid.UUID         `json:"org_id"`
	LRNumber          string            `json:"lr_number"`
	BranchID          uuid.UUID         `json:"branch_id"`
	FromBranchID      uuid.UUID         `json:"from_branch_id"`
	ToBranchID        uuid.UUID         `json:"to_branch_id"`
	FromLocation      string            `json:"from_location"`
	ToLocation        string            `json:"to_location"`
	SenderID          uuid.UUID         `json:"sender_id"`
	ReceiverID        uuid.UUID         `json:"receiver_id"`
	BillingCustomerID uuid.UUID         `json:"billing_customer_id"`
	PaymentType       string            `json:"payment_type"`
	PickupDate        string            `json:"pickup_date"`
	Status            string            `json:"status"`
	RateSource        string            `json:"rate_source"`
	ContractID        *uuid.UUID        `json:"contract_id,omitempty"`
	TotalAmount       decimal.Decimal   `json:"total_amount"`
	Articles          []ArticleResponse `json:"articles,omitempty"`
	CreatedBy         *uuid.UUID        `json:"created_by,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
	Version           int               `json:"version"`
}

// StatusChangeResponse is one status history row
type StatusChangeResponse struct {
	FromStatus      string    `json:"from_status"`
	ToStatus        string    `json:"to_status"`
	WorkflowContext string    `json:"workflow_context"`
	ChangedBy       uuid.UUID `json:"changed_by"`
	ChangedAt       time.Time `json:"changed_at"`
}

// ContractSummary identifies the contract a lookup matched
type ContractSummary struct {
	ID                     uuid.UUID       `json:"id"`
	ContractNumber         string          `json:"contract_number"`
	ValidFrom              string          `json:"valid_from"`
	ValidUntil             string          `json:"valid_until"`
	PaymentTerms           string          `json:"payment_terms,omitempty"`
	BaseDiscountPercentage decimal.Decimal `json:"base_discount_percentage"`
}

// RateLookupResult describes the rate a booking line would get. It is for
// display; creation resolves again.
type RateLookupResult struct {
	HasContract  bool                  `json:"has_contract"`
	HasRate      bool                  `json:"has_rate"`
	Kind         string                `json:"kind"`
	Message      string                `json:"message"`
	RateContract *ContractSummary      `json:"rate_contract,omitempty"`
	SlabID       *uuid.UUID            `json:"slab_id,omitempty"`
	Rate         *rate.Rate            `json:"rate,omitempty"`
	StandardRate *rate.Rate            `json:"standard_rate,omitempty"`
	Estimate     *tariff.LineBreakdown `json:"estimate,omitempty"`
}

// ToArticleResponse converts a domain line
func ToArticleResponse(a *booking.Article) ArticleResponse {
	return ArticleResponse{
		ID:               a.ID,
		ArticleID:        a.ArticleID,
		Description:      a.Description,
		Quantity:         a.Quantity,
		ActualWeight:     a.ActualWeight,
		ChargedWeight:    a.ChargedWeight,
		RateType:         a.RateType,
		RateValue:        a.RateValue,
		RateSource:       a.RateSource.String(),
		SlabID:           a.SlabID,
		FreightAmount:    a.FreightAmount,
		LoadingCharge:    a.LoadingCharge,
		UnloadingCharge:  a.UnloadingCharge,
		SurchargeAmount:  a.SurchargeAmount,
		AdjustmentAmount: a.AdjustmentAmount,
		DiscountAmount:   a.DiscountAmount,
		TaxAmount:        a.TaxAmount,
		DeclaredValue:    a.DeclaredValue,
		TotalAmount:      a.TotalAmount,
	}
}

// ToBookingResponse converts a domain booking, lines included
func ToBookingResponse(b *booking.Booking) BookingResponse {
	resp := BookingResponse{
		ID:                b.ID,
		OrgID:             b.OrgID,
		LRNumber:          b.LRNumber,
		BranchID:          b.BranchID,
		FromBranchID:      b.FromBranchID,
		ToBranchID:        b.ToBranchID,
		FromLocation:      b.FromLocation,
		ToLocation:        b.ToLocation,
		SenderID:          b.SenderID,
		ReceiverID:        b.ReceiverID,
		BillingCustomerID: b.BillingCustomerID,
		PaymentType:       b.PaymentType.String(),
		PickupDate:        b.PickupDate.Format(time.DateOnly),
		Status:            b.Status.String(),
		RateSource:        b.RateSource.String(),
		ContractID:        b.ContractID,
		TotalAmount:       b.TotalAmount,
		CreatedBy:         b.CreatedBy,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
		Version:           b.Version,
	}
	if len(b.Articles) > 0 {
		resp.Articles = make([]ArticleResponse, len(b.Articles))
		for i := range b.Articles {
			resp.Articles[i] = ToArticleResponse(&b.Articles[i])
		}
	}
	return resp
}

// ToBookingResponses converts a page of headers
func ToBookingResponses(items []booking.Booking) []BookingResponse {
	out := make([]BookingResponse, len(items))
	for i := range items {
		out[i] = ToBookingResponse(&items[i])
	}
	return out
}

// ToStatusChangeResponses converts history rows
func ToStatusChangeResponses(changes []booking.StatusChange) []StatusChangeResponse {
	out := make([]StatusChangeResponse, len(changes))
	for i, c := range changes {
		out[i] = StatusChangeResponse{
			FromStatus:      c.FromStatus.String(),
			ToStatus:        c.ToStatus.String(),
			WorkflowContext: c.WorkflowContext.String(),
			ChangedBy:       c.ChangedBy,
			ChangedAt:       c.ChangedAt,
		}
	}
	return out
}

func toContractSummary(c *rate.RateContract) *ContractSummary {
	if c == nil {
		return nil
	}
	return &ContractSummary{
		ID:                     c.ID,
		ContractNumber:         c.ContractNumber,
		ValidFrom:              c.ValidFrom.Format(time.DateOnly),
		ValidUntil:             c.ValidUntil.Format(time.DateOnly),
		PaymentTerms:           c.PaymentTerms,
		BaseDiscountPercentage: c.BaseDiscountPercentage,
	}
}
